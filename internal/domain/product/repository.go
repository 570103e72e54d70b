package product

import (
	"context"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence operations for products
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindAllByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindByName(ctx context.Context, name string) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, int64, error)
	FindAllActive(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}
