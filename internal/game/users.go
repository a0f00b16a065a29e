package game

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/storage"
)

// EnsureUser returns the user with id, creating it with the starting balance on first sight.
func (s *Service) EnsureUser(ctx context.Context, id, name string) (models.User, error) {
	if strings.TrimSpace(id) == "" {
		return models.User{}, fail(ErrInvalidInput, "user id is required")
	}
	var user models.User
	created := false
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		created = false
		u, err := tx.User(ctx, id)
		if err == nil {
			user = u
			return nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		user = models.User{ID: id, Name: strings.TrimSpace(name), Funds: s.rules.StartingFunds, CreatedAt: s.clock()}
		created = true
		return tx.InsertUser(ctx, user)
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		// Lost a race with a concurrent first login.
		return s.User(ctx, id)
	}
	if err != nil {
		return models.User{}, err
	}
	if created {
		s.log.Info("user created", zap.String("user", id))
	}
	return user, nil
}

// User returns the user with id.
func (s *Service) User(ctx context.Context, id string) (models.User, error) {
	return s.user(ctx, s.store, id)
}

// RenameUser changes the display name of a user.
func (s *Service) RenameUser(ctx context.Context, id, name string) (models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.User{}, fail(ErrInvalidInput, "name is required")
	}
	var user models.User
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		u, err := s.user(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := tx.RenameUser(ctx, id, name); err != nil {
			return notFound(err, "user %q not found", id)
		}
		u.Name = name
		user = u
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// DeleteUser removes the account. Planes stay in the world; later payouts to the
// removed owner are dropped.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return notFound(tx.DeleteUser(ctx, id), "user %q not found", id)
	})
	if err != nil {
		return err
	}
	s.log.Info("user deleted", zap.String("user", id))
	return nil
}
