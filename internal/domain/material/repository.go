package material

import (
	"context"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence operations for materials
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Material, error)
	FindAllByIDs(ctx context.Context, ids []uuid.UUID) ([]Material, error)
	FindByNameAndVariation(ctx context.Context, name, variation string) (*Material, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Material, int64, error)
	FindLowStock(ctx context.Context) ([]Material, error)
	// Save persists the aggregate. Updates are guarded by the aggregate
	// version; a stale version surfaces shared.ErrConcurrencyConflict.
	Save(ctx context.Context, m *Material) error
	Delete(ctx context.Context, id uuid.UUID) error
}
