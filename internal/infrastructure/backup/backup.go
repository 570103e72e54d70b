// Package backup snapshots the sqlite database file and prunes old snapshots
// by count, total size and age.
package backup

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// sqliteMagic is the first 16 bytes of every valid sqlite database file
var sqliteMagic = []byte("SQLite format 3\x00")

const snapshotDateLayout = "2006-01-02"

// Snapshot describes one backup file on disk
type Snapshot struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Result reports what CreateSnapshot did
type Result struct {
	Snapshot            Snapshot `json:"snapshot"`
	AlreadyExistedToday bool     `json:"already_existed_today"`
}

// Manager copies the database file into the backup directory and enforces the
// configured retention limits. One snapshot per calendar day: a second call on
// the same day returns the existing file untouched.
type Manager struct {
	dbPath string
	cfg    config.BackupConfig
	clock  shared.Clock
	logger *zap.Logger
}

// NewManager creates a backup manager for the database at dbPath
func NewManager(dbPath string, cfg config.BackupConfig, clock shared.Clock, logger *zap.Logger) *Manager {
	return &Manager{dbPath: dbPath, cfg: cfg, clock: clock, logger: logger}
}

// CreateSnapshot copies the database into the backup directory, then runs
// retention cleanup. The snapshot for today is reused if it already exists.
func (m *Manager) CreateSnapshot() (*Result, error) {
	if m.dbPath == ":memory:" {
		return nil, fmt.Errorf("cannot snapshot an in-memory database")
	}
	if err := os.MkdirAll(m.cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	now := m.clock.Now()
	name := fmt.Sprintf("atelier-%s.db", now.Format(snapshotDateLayout))
	target := filepath.Join(m.cfg.Dir, name)

	if info, err := os.Stat(target); err == nil {
		return &Result{
			Snapshot:            snapshotFromInfo(target, info),
			AlreadyExistedToday: true,
		}, nil
	}

	if err := copyFile(m.dbPath, target); err != nil {
		return nil, fmt.Errorf("copying database: %w", err)
	}

	if err := m.Cleanup(); err != nil {
		m.logger.Warn("backup cleanup failed", zap.Error(err))
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	m.logger.Info("backup created",
		zap.String("path", target),
		zap.Int64("size_bytes", info.Size()))
	return &Result{Snapshot: snapshotFromInfo(target, info)}, nil
}

// ListSnapshots returns the snapshots on disk, newest first
func (m *Manager) ListSnapshots() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Snapshot{}, nil
		}
		return nil, err
	}

	snapshots := make([]Snapshot, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isSnapshotName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snapshots = append(snapshots, snapshotFromInfo(filepath.Join(m.cfg.Dir, entry.Name()), info))
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Name > snapshots[j].Name
	})
	return snapshots, nil
}

// VerifySnapshot checks the file starts with the sqlite header magic
func (m *Manager) VerifySnapshot(name string) error {
	if !isSnapshotName(name) {
		return fmt.Errorf("invalid snapshot name %q", name)
	}
	f, err := os.Open(filepath.Join(m.cfg.Dir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	header := make([]byte, len(sqliteMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	if !bytes.Equal(header, sqliteMagic) {
		return fmt.Errorf("snapshot %q is not a sqlite database", name)
	}
	return nil
}

// Cleanup removes snapshots beyond the retention limits: oldest first until
// the count, total size and age constraints all hold.
func (m *Manager) Cleanup() error {
	snapshots, err := m.ListSnapshots()
	if err != nil {
		return err
	}

	cutoff := m.clock.Now().AddDate(0, 0, -m.cfg.MaxAgeDays)
	maxBytes := int64(m.cfg.MaxTotalSizeMB) * 1024 * 1024

	var totalBytes int64
	for _, s := range snapshots {
		totalBytes += s.SizeBytes
	}

	// snapshots is newest-first, so walk from the tail
	for i := len(snapshots) - 1; i >= 0; i-- {
		s := snapshots[i]
		keep := len(snapshots[:i+1]) <= m.cfg.MaxCount &&
			totalBytes <= maxBytes &&
			!snapshotDate(s.Name).Before(cutoff)
		if keep {
			break
		}
		if err := os.Remove(s.Path); err != nil {
			return fmt.Errorf("removing %s: %w", s.Path, err)
		}
		totalBytes -= s.SizeBytes
		m.logger.Info("backup pruned", zap.String("name", s.Name))
	}
	return nil
}

func snapshotFromInfo(path string, info os.FileInfo) Snapshot {
	created := snapshotDate(info.Name())
	if created.IsZero() {
		created = info.ModTime()
	}
	return Snapshot{
		Name:      info.Name(),
		Path:      path,
		SizeBytes: info.Size(),
		CreatedAt: created,
	}
}

// isSnapshotName matches files this manager created, e.g. atelier-2025-03-10.db
func isSnapshotName(name string) bool {
	return strings.HasPrefix(name, "atelier-") &&
		strings.HasSuffix(name, ".db") &&
		!strings.ContainsAny(name, "/\\")
}

func snapshotDate(name string) time.Time {
	raw := strings.TrimSuffix(strings.TrimPrefix(name, "atelier-"), ".db")
	t, err := time.Parse(snapshotDateLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
