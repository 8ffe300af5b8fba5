package history

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/funnelcart/pkg/db/models"
)

// Repository manages persistence for cart history events.
type Repository interface {
	Create(ctx context.Context, event *models.CartEvent) error
	ListByCart(ctx context.Context, cartID string) ([]models.CartEvent, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a history repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *models.CartEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListByCart(ctx context.Context, cartID string) ([]models.CartEvent, error) {
	var events []models.CartEvent
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
