package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/grocery-service/internal/domain"
)

// MemoryStore implements CartStore with a process-local map. Carts live until the
// process exits.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart // userID -> cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts: make(map[string]*domain.Cart),
	}
}

// Get returns a copy of the user's cart
func (s *MemoryStore) Get(_ context.Context, userID string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, exists := s.carts[userID]
	if !exists {
		return nil, fmt.Errorf("%w: user %q", domain.ErrCartNotFound, userID)
	}
	return cart.Clone(), nil
}

// Save stores a copy of cart, replacing any previous version
func (s *MemoryStore) Save(_ context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[cart.UserID] = cart.Clone()
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
