package service

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/grocery-service/internal/domain"
	"github.com/fjod/go_cart/grocery-service/internal/store"
)

// flakyStore wraps a MemoryStore and injects failures.
type flakyStore struct {
	*store.MemoryStore
	m       sync.RWMutex
	getErr  error
	saveErr error
	saves   int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: store.NewMemoryStore()}
}

func (f *flakyStore) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	f.m.RLock()
	err := f.getErr
	f.m.RUnlock()
	if err != nil {
		return nil, err
	}
	return f.MemoryStore.Get(ctx, userID)
}

func (f *flakyStore) Save(ctx context.Context, cart *domain.Cart) error {
	f.m.Lock()
	err := f.saveErr
	if err == nil {
		f.saves++
	}
	f.m.Unlock()
	if err != nil {
		return err
	}
	return f.MemoryStore.Save(ctx, cart)
}

func (f *flakyStore) setErrors(getErr, saveErr error) {
	f.m.Lock()
	defer f.m.Unlock()
	f.getErr = getErr
	f.saveErr = saveErr
}

func (f *flakyStore) saveCount() int {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.saves
}

// blockingStore holds every Get until release is closed, honouring ctx meanwhile.
type blockingStore struct {
	*store.MemoryStore
	entered     chan struct{}
	enteredOnce sync.Once
	release     chan struct{}
}

func newBlockingStore() *blockingStore {
	return &blockingStore{
		MemoryStore: store.NewMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (b *blockingStore) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	b.enteredOnce.Do(func() { close(b.entered) })
	select {
	case <-b.release:
		return b.MemoryStore.Get(ctx, userID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type mockPublisher struct {
	m      sync.RWMutex
	orders []domain.Order
	err    error
}

func (p *mockPublisher) Publish(_ context.Context, order domain.Order) error {
	p.m.Lock()
	defer p.m.Unlock()
	if p.err != nil {
		return p.err
	}
	p.orders = append(p.orders, order)
	return nil
}

func (p *mockPublisher) published() []domain.Order {
	p.m.RLock()
	defer p.m.RUnlock()
	return append([]domain.Order(nil), p.orders...)
}
