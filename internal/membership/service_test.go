// internal/membership/service_test.go
package membership

import (
	"context"
	"testing"

	"biblioteca/internal/apperr"
	"biblioteca/internal/logging"
	"biblioteca/internal/storage"
	"biblioteca/pkg/eventstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *eventstore.MemoryStore) {
	t.Helper()

	events := eventstore.NewMemoryStore()
	svc := NewService(NewMemoryRepository(), storage.NewMemoryTransactor(), eventstore.NewJournal(events, logging.Discard()))
	return svc, events
}

func TestRegisterUser(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, "João Silva", "joao@email.com")
	require.NoError(t, err)
	assert.True(t, user.Active)

	_, err = svc.RegisterUser(ctx, "Outro João", "joao@email.com")
	assert.ErrorIs(t, err, apperr.ErrBusinessRule)

	_, err = svc.RegisterUser(ctx, "Maria", "maria@")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	recorded, err := events.LoadEvents(ctx, user.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, "UserRegistered", recorded[0].EventType)
}

func TestActivateDeactivateUser(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, "João Silva", "joao@email.com")
	require.NoError(t, err)

	_, err = svc.ActivateUser(ctx, user.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	got, err := svc.DeactivateUser(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	stored, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.CanBorrow())

	got, err = svc.ActivateUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)

	_, err = svc.DeactivateUser(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	version, err := events.GetCurrentVersion(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, version)
}

func TestDeleteUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, "João Silva", "joao@email.com")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))
	_, err = svc.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteUser(ctx, user.ID), apperr.ErrNotFound)
}
