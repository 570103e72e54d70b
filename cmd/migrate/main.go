package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/backup"
	"github.com/atelier/backend/internal/infrastructure/config"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log := logger.New(config.LogConfig{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	switch command {
	case "up":
		runUp(db, cfg, log)
	case "status":
		runStatus(db, log)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// runUp snapshots the database first, then applies the schema. A bad
// migration on a desktop install must never cost the user their data.
func runUp(db *persistence.Database, cfg *config.Config, log *zap.Logger) {
	if cfg.Database.Path != ":memory:" {
		if _, err := os.Stat(cfg.Database.Path); err == nil {
			manager := backup.NewManager(cfg.Database.Path, cfg.Backup, shared.SystemClock{}, log)
			result, err := manager.CreateSnapshot()
			if err != nil {
				log.Fatal("Pre-migration backup failed", zap.Error(err))
			}
			log.Info("Pre-migration backup",
				zap.String("snapshot", result.Snapshot.Name),
				zap.Bool("reused", result.AlreadyExistedToday))
		}
	}

	if err := db.Migrate(); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	log.Info("Schema is up to date", zap.String("database", cfg.Database.Path))
}

func runStatus(db *persistence.Database, log *zap.Logger) {
	var tables []string
	err := db.DB.Raw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name").
		Scan(&tables).Error
	if err != nil {
		log.Fatal("Failed to read schema", zap.Error(err))
	}

	if len(tables) == 0 {
		fmt.Println("No tables found. Run 'migrate up' to create the schema.")
		return
	}
	fmt.Println("Tables:")
	for _, table := range tables {
		fmt.Printf("  %s\n", table)
	}
}

func printUsage() {
	fmt.Println(`Usage: migrate [flags] <command>

Commands:
  up       Apply the schema to the configured database (backs up first)
  status   List the tables present in the database

Flags:
  -log-level string   Log level (debug, info, warn, error) (default "info")`)
}
