package sale

import (
	"context"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence operations for sales. Multi-row mutations
// (create, replace items) run inside a single transaction: the header and all
// its lines commit together or not at all.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Sale, int64, error)
	FindFinalizedBetween(ctx context.Context, start, end time.Time) ([]Sale, error)
	CreateWithItems(ctx context.Context, s *Sale) error
	ReplaceItems(ctx context.Context, s *Sale) error
	UpdateHeader(ctx context.Context, s *Sale) error
	Delete(ctx context.Context, id uuid.UUID) error
}
