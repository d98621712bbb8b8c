package trophy

import (
	"context"

	"trophyangler/internal/domain"
	"trophyangler/internal/geo"
)

// TrophyStore is the record store the catalog runs on.
type TrophyStore interface {
	Put(ctx context.Context, t *domain.Trophy) error
	Get(ctx context.Context, id string) (*domain.Trophy, error)
	Mutate(ctx context.Context, id string, fn func(t *domain.Trophy) error) (*domain.Trophy, error)
	Delete(ctx context.Context, id string, guard func(t *domain.Trophy) error) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Trophy, error)
	ListPublicByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Trophy, error)
	ListPublic(ctx context.Context, limit, offset int) ([]domain.Trophy, int64, error)
	SearchNearby(ctx context.Context, center geo.Point, radiusKm float64, limit int) ([]domain.Trophy, error)
}
