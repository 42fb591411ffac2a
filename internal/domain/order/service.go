package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Service validates and persists orders on top of a Repository.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates an order Service over the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Save filters the submitted rows and stores the order under number.
// Re-saving an existing number fully overwrites the record, but DateCreated
// is preserved from the first save; DateModified is always refreshed.
func (s *Service) Save(ctx context.Context, number string, items []Item) (*Order, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, NewValidationError("orderNumber", "Введіть номер замовлення")
	}

	kept := FilterItems(items)
	if len(kept) == 0 {
		return nil, NewValidationError("items", "Додайте хоча б один товар з коректними даними")
	}

	now := s.now()
	o := Order{
		Number:       number,
		Items:        kept,
		DateCreated:  now,
		DateModified: now,
	}

	prev, err := s.repo.Get(ctx, number)
	switch {
	case err == nil:
		o.DateCreated = prev.DateCreated
	case errors.Is(err, ErrNotFound):
	default:
		return nil, errors.Wrap(err, "load existing order")
	}

	if err := s.repo.Save(ctx, number, o); err != nil {
		return nil, errors.Wrapf(err, "save order %q", number)
	}
	return &o, nil
}

// ReplaceItem swaps the item at index for the given one and refreshes
// DateModified. The replacement must itself pass the row constraints.
func (s *Service) ReplaceItem(ctx context.Context, number string, index int, item Item) (*Order, error) {
	item.Name = strings.TrimSpace(item.Name)
	if !item.Valid() {
		return nil, NewValidationError("item", "Некоректні дані. Перевірте назву, ціну та кількість.")
	}

	o, err := s.repo.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(o.Items) {
		return nil, NewValidationError("index", "позицію не знайдено")
	}

	o.Items[index] = item
	o.DateModified = s.now()

	if err := s.repo.Save(ctx, number, *o); err != nil {
		return nil, errors.Wrapf(err, "save order %q", number)
	}
	return o, nil
}

// Get returns the order stored under number, or ErrNotFound.
func (s *Service) Get(ctx context.Context, number string) (*Order, error) {
	return s.repo.Get(ctx, strings.TrimSpace(number))
}

// Exists reports whether an order is stored under number.
func (s *Service) Exists(ctx context.Context, number string) (bool, error) {
	return s.repo.Exists(ctx, strings.TrimSpace(number))
}

// All returns the full number-to-order mapping.
func (s *Service) All(ctx context.Context) (map[string]Order, error) {
	return s.repo.GetAll(ctx)
}
