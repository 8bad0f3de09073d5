package items

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

const defaultQuantity = 1

// Repository is the persistence contract the item store depends on.
type Repository interface {
	Create(ctx context.Context, item models.Item) (models.Item, error)
	List(ctx context.Context) ([]models.Item, error)
	Get(ctx context.Context, id int64) (models.Item, error)
	Update(ctx context.Context, id int64, mutate func(*models.Item) error) (models.Item, error)
	Delete(ctx context.Context, id int64) error
}

// Service validates item input and annotates stored items with their expiry status.
type Service struct {
	repo     Repository
	logger   *zap.Logger
	location *time.Location
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source used to decide what "today" is.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the timezone "today" is evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

// NewService constructs the item store.
func NewService(repo Repository, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:     repo,
		logger:   logger,
		location: time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current calendar date in the configured location.
func (s *Service) Today() time.Time {
	return models.DateOf(s.now().In(s.location))
}

// Create validates the input and stores a new item. Name and expiry date are
// required; quantity defaults to one.
func (s *Service) Create(ctx context.Context, input models.ItemInput) (models.ItemView, error) {
	if input.Name == nil || input.ExpiryDate == nil {
		return models.ItemView{}, models.NewValidationError("Item name and expiry date are required")
	}

	item := models.Item{Quantity: defaultQuantity}
	if err := apply(&item, input); err != nil {
		return models.ItemView{}, err
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return models.ItemView{}, fmt.Errorf("create item: %w", err)
	}

	s.logger.Info("item created", zap.Int64("id", created.ID), zap.String("name", created.Name))
	return created.View(s.Today()), nil
}

// List returns every stored item.
func (s *Service) List(ctx context.Context) ([]models.ItemView, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	today := s.Today()
	views := make([]models.ItemView, 0, len(stored))
	for _, item := range stored {
		views = append(views, item.View(today))
	}
	return views, nil
}

// Get returns a single item.
func (s *Service) Get(ctx context.Context, id int64) (models.ItemView, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.ItemView{}, translate(err, "get item")
	}
	return item.View(s.Today()), nil
}

// Update applies the supplied fields to an existing item. An unknown id is
// reported before the input is validated.
func (s *Service) Update(ctx context.Context, id int64, input models.ItemInput) (models.ItemView, error) {
	updated, err := s.repo.Update(ctx, id, func(item *models.Item) error {
		return apply(item, input)
	})
	if err != nil {
		return models.ItemView{}, translate(err, "update item")
	}

	s.logger.Info("item updated", zap.Int64("id", id))
	return updated.View(s.Today()), nil
}

// Delete removes an item.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err, "delete item")
	}

	s.logger.Info("item deleted", zap.Int64("id", id))
	return nil
}

// apply validates every supplied field before touching item.
func apply(item *models.Item, input models.ItemInput) error {
	next := *item

	if input.Name != nil {
		name, err := NormalizeName(*input.Name)
		if err != nil {
			return err
		}
		next.Name = name
	}

	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return models.NewValidationError("Quantity must be a positive number")
		}
		next.Quantity = *input.Quantity
	}

	if input.ExpiryDate != nil {
		expiry, err := models.ParseDate(strings.TrimSpace(*input.ExpiryDate))
		if err != nil {
			return models.NewValidationError("Invalid data format")
		}
		next.ExpiryDate = expiry
	}

	*item = next
	return nil
}

// NormalizeName trims the name, upper-cases its first letter and lower-cases the rest.
func NormalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", models.NewValidationError("Item name must not be empty")
	}

	first, size := utf8.DecodeRuneInString(trimmed)
	name := string(unicode.ToUpper(first)) + strings.ToLower(trimmed[size:])

	if utf8.RuneCountInString(name) > models.MaxNameLength {
		return "", models.NewValidationError(fmt.Sprintf("Item name must be at most %d characters", models.MaxNameLength))
	}
	return name, nil
}

func translate(err error, op string) error {
	var appErr *models.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, models.ErrNotFound):
		return models.NewNotFoundError("Item not found")
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
