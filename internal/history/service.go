package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/funnelcart/pkg/db/models"
	"github.com/angelmondragon/funnelcart/pkg/enums"
)

// Event is one cart history record as emitted by the engine.
type Event struct {
	CartID            string
	Type              enums.CartEventType
	PackageRefID      *int
	ProfileID         *string
	PreviousProfileID *string
	CouponCode        *string
	Quantity          int
	ItemsAffected     int
}

// Recorder is the surface the cart engine records events through.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// Service validates and persists cart history events.
type Service interface {
	Recorder
	ListByCart(ctx context.Context, cartID string) ([]models.CartEvent, error)
}

type service struct {
	repo Repository
}

// NewService wires a history service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("history repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, event Event) error {
	if event.CartID == "" {
		return fmt.Errorf("cart id is required")
	}
	if !event.Type.IsValid() {
		return fmt.Errorf("invalid cart event type %q", event.Type)
	}

	record := &models.CartEvent{
		ID:                uuid.New(),
		CartID:            event.CartID,
		Type:              event.Type,
		PackageRefID:      event.PackageRefID,
		ProfileID:         event.ProfileID,
		PreviousProfileID: event.PreviousProfileID,
		CouponCode:        event.CouponCode,
		Quantity:          event.Quantity,
		ItemsAffected:     event.ItemsAffected,
		CreatedAt:         time.Now().UTC(),
	}
	return s.repo.Create(ctx, record)
}

func (s *service) ListByCart(ctx context.Context, cartID string) ([]models.CartEvent, error) {
	if cartID == "" {
		return nil, fmt.Errorf("cart id is required")
	}
	return s.repo.ListByCart(ctx, cartID)
}
