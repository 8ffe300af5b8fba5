package history

import (
	"context"
	"sync"

	"github.com/angelmondragon/funnelcart/pkg/db/models"
)

// MemoryRepository keeps events in process. Used when no database is
// configured and by engine tests.
type MemoryRepository struct {
	mu     sync.Mutex
	events []models.CartEvent
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Create(_ context.Context, event *models.CartEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *event)
	return nil
}

func (m *MemoryRepository) ListByCart(_ context.Context, cartID string) ([]models.CartEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []models.CartEvent
	for _, event := range m.events {
		if event.CartID == cartID {
			matched = append(matched, event)
		}
	}
	return matched, nil
}
