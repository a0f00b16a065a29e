// Package game implements the player economy: the transactional plane and package
// operations and the read-side queries over the shared store.
package game

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/airfreight/internal/catalog"
	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/storage"
)

var tailNumberPattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// ValidTailNumber reports whether s is a six character upper-case alphanumeric tail number.
func ValidTailNumber(s string) bool {
	return tailNumberPattern.MatchString(s)
}

// Service runs every operation in its own store transaction.
type Service struct {
	store   storage.Store
	catalog *catalog.Cache
	rules   Rules
	now     func() time.Time
	log     *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces the wall clock used for departure and account timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a Service over store.
func NewService(store storage.Store, cat *catalog.Cache, rules Rules, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{store: store, catalog: cat, rules: rules, now: time.Now, log: log.Named("game")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns the economy the service enforces.
func (s *Service) Rules() Rules { return s.rules }

func (s *Service) clock() time.Time { return s.now().UTC() }

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fail(ErrNotFound, format, args...)
	}
	return err
}

func (s *Service) user(ctx context.Context, r storage.Reader, id string) (models.User, error) {
	u, err := r.User(ctx, id)
	if err != nil {
		return models.User{}, notFound(err, "user %q not found", id)
	}
	return u, nil
}

func (s *Service) plane(ctx context.Context, r storage.Reader, tailNumber string) (models.Plane, error) {
	p, err := r.Plane(ctx, tailNumber)
	if err != nil {
		return models.Plane{}, notFound(err, "plane %q not found", tailNumber)
	}
	return p, nil
}

func (s *Service) planeModel(ctx context.Context, r storage.Reader, id string) (models.PlaneModel, error) {
	m, err := s.catalog.PlaneModel(ctx, r, id)
	if err != nil {
		return models.PlaneModel{}, notFound(err, "plane model %q not found", id)
	}
	return m, nil
}

func (s *Service) airport(ctx context.Context, r storage.Reader, id string) (models.Airport, error) {
	a, err := s.catalog.Airport(ctx, r, id)
	if err != nil {
		return models.Airport{}, notFound(err, "airport %q not found", id)
	}
	return a, nil
}

// ownedPlane loads the acting user and a plane that user owns.
func (s *Service) ownedPlane(ctx context.Context, tx storage.Tx, tailNumber, userID string) (models.User, models.Plane, error) {
	user, err := s.user(ctx, tx, userID)
	if err != nil {
		return models.User{}, models.Plane{}, err
	}
	plane, err := s.plane(ctx, tx, tailNumber)
	if err != nil {
		return models.User{}, models.Plane{}, err
	}
	if plane.OwnerID != userID {
		return models.User{}, models.Plane{}, fail(ErrForbidden, "plane %s does not belong to you", tailNumber)
	}
	return user, plane, nil
}

// debit charges user amount, checking the balance first so the shortfall is reported
// as a business failure. The store re-checks the balance in the same update.
func debit(ctx context.Context, tx storage.Tx, user models.User, amount float64, what string) error {
	if amount <= 0 {
		return nil
	}
	if user.Funds < amount {
		return fail(ErrInsufficientFunds, "%s costs %.2f but only %.2f is available", what, amount, user.Funds)
	}
	if err := tx.AdjustFunds(ctx, user.ID, -amount); err != nil {
		if errors.Is(err, storage.ErrInsufficientBalance) {
			return fail(ErrInsufficientFunds, "%s costs %.2f which exceeds your balance", what, amount)
		}
		return err
	}
	return nil
}
