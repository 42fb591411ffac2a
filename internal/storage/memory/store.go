// Package memory provides an in-memory order repository for tests and
// ephemeral runs. Nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"github.com/allforyou/ordertext/internal/domain/order"
)

var _ order.Repository = (*Store)(nil)

// Store is a mutex-guarded map of orders.
type Store struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{orders: make(map[string]order.Order)}
}

func (s *Store) GetAll(_ context.Context) (map[string]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]order.Order, len(s.orders))
	for k, v := range s.orders {
		out[k] = v.Clone()
	}
	return out, nil
}

func (s *Store) Save(_ context.Context, number string, o order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[number] = o.Clone()
	return nil
}

func (s *Store) Get(_ context.Context, number string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[number]
	if !ok {
		return nil, order.ErrNotFound
	}
	c := o.Clone()
	return &c, nil
}

func (s *Store) Exists(_ context.Context, number string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.orders[number]
	return ok, nil
}
