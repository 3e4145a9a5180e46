// internal/membership/implementation.go
package membership

import (
	"context"
	"fmt"

	"biblioteca/internal/apperr"
	"biblioteca/internal/storage"
	"biblioteca/pkg/eventstore"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const aggregateType = "user"

// service implements the Service interface.
type service struct {
	users   Repository
	tx      storage.Transactor
	journal *eventstore.Journal
	tracer  trace.Tracer
}

// NewService creates a new membership service instance.
func NewService(users Repository, tx storage.Transactor, journal *eventstore.Journal) Service {
	return &service{
		users:   users,
		tx:      tx,
		journal: journal,
		tracer:  otel.Tracer("biblioteca/membership"),
	}
}

// RegisterUser creates a new user. Emails are unique.
func (s *service) RegisterUser(ctx context.Context, name, email string) (*User, error) {
	ctx, span := s.tracer.Start(ctx, "membership.register_user")
	defer span.End()

	user, err := NewUser(name, email)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		_, exists, err := s.users.FindByEmail(ctx, user.Email)
		if err != nil {
			return fmt.Errorf("failed to look up email: %w", err)
		}
		if exists {
			return apperr.BusinessRule("email %s is already registered", user.Email)
		}

		if err := s.users.Save(ctx, user); err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("user.id", user.ID.String()),
		attribute.String("user.email_domain", user.Email.Domain()),
	)
	s.journal.Record(ctx, user.ID, aggregateType, "UserRegistered", UserRegisteredEvent{
		ID:    user.ID,
		Email: user.Email.String(),
		Name:  user.Name,
	})

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	user, found, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !found {
		return nil, apperr.NotFound("user %s not found", id)
	}
	return user, nil
}

func (s *service) ListUsers(ctx context.Context) ([]*User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *service) ActivateUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.changeStatus(ctx, id, "membership.activate_user", (*User).Activate)
}

func (s *service) DeactivateUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.changeStatus(ctx, id, "membership.deactivate_user", (*User).Deactivate)
}

func (s *service) changeStatus(ctx context.Context, id uuid.UUID, op string, transition func(*User) error) (*User, error) {
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("user.id", id.String()),
	))
	defer span.End()

	var user *User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if user, err = s.GetUser(ctx, id); err != nil {
			return err
		}
		if err := transition(user); err != nil {
			return err
		}
		if err := s.users.Save(ctx, user); err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.journal.Record(ctx, id, aggregateType, "UserStatusChanged", UserStatusChangedEvent{
		ID:     id,
		Active: user.Active,
	})
	return user, nil
}

func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "membership.delete_user", trace.WithAttributes(
		attribute.String("user.id", id.String()),
	))
	defer span.End()

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.GetUser(ctx, id); err != nil {
			return err
		}
		if err := s.users.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	s.journal.Record(ctx, id, aggregateType, "UserRemoved", UserRemovedEvent{ID: id})
	return nil
}
