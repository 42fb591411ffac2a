// Package file persists the whole order mapping as a single JSON blob in one
// well-known file, mirroring the storage model of the browser original: one
// fixed key, full overwrite on every save.
//
// The mapping is loaded once at Open and kept in memory; every Save mutates
// the map and flushes the complete blob, so concurrent saves within one
// process cannot lose each other's writes. Two processes over the same file
// still race last-write-wins on the whole blob; accepted limitation.
package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"

	"github.com/allforyou/ordertext/internal/domain/order"
)

var _ order.Repository = (*Store)(nil)

// Store is a file-backed order repository.
type Store struct {
	path string

	mu     sync.RWMutex
	orders map[string]order.Order
}

// Open loads the blob at path. A missing file yields an empty store; a blob
// that fails to parse is surfaced as *order.CorruptStoreError, never treated
// as empty.
func Open(path string) (*Store, error) {
	s := &Store{path: path, orders: make(map[string]order.Order)}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, errors.Wrapf(err, "read order blob %s", path)
	}

	orders, err := decodeOrders(data)
	if err != nil {
		return nil, &order.CorruptStoreError{Path: path, Err: err}
	}
	s.orders = orders
	return s, nil
}

// GetAll returns a deep copy of the full number-to-order mapping.
func (s *Store) GetAll(_ context.Context) (map[string]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]order.Order, len(s.orders))
	for k, v := range s.orders {
		out[k] = v.Clone()
	}
	return out, nil
}

// Save overwrites the record under number and flushes the whole blob.
func (s *Store) Save(_ context.Context, number string, o order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[number] = o.Clone()
	return s.flush()
}

// Get returns the order under number, or order.ErrNotFound.
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

// Exists reports whether an order is stored under number.
func (s *Store) Exists(_ context.Context, number string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.orders[number]
	return ok, nil
}

// Len reports the number of stored orders.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// Path returns the blob file location.
func (s *Store) Path() string { return s.path }

// flush writes the blob to a temp file in the same directory and renames it
// over the target, so readers never observe a half-written blob.
// Callers must hold mu.
func (s *Store) flush() error {
	data := encodeOrders(s.orders)

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create blob directory")
	}

	tmp, err := os.CreateTemp(dir, ".orders-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp blob")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp blob")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp blob")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "replace order blob")
	}
	return nil
}
