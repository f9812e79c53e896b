package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/deathrjj/teedy-moderation-tui/i18n"
	"github.com/deathrjj/teedy-moderation-tui/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistrar struct {
	submitted []models.Registration
	err       error
}

func (f *fakeRegistrar) CreateRegistration(ctx context.Context, reg models.Registration) error {
	f.submitted = append(f.submitted, reg)
	return f.err
}

func TestRegistrationSuccess(t *testing.T) {
	registrar := &fakeRegistrar{}
	dialogs := &fakeDialogs{}
	flow := NewRegistrationFlow(registrar, dialogs, i18n.New("en-US"))

	err := flow.Submit(context.Background(), models.Registration{Username: " carol ", Password: "password1", Email: "carol@example.com"})
	require.NoError(t, err)
	require.Len(t, registrar.submitted, 1)
	assert.Equal(t, "carol", registrar.submitted[0].Username)
	require.Len(t, dialogs.notes, 1)
	assert.Equal(t, "Registration requested", dialogs.notes[0].title)
}

func TestRegistrationInvalidNeverSubmits(t *testing.T) {
	registrar := &fakeRegistrar{}
	dialogs := &fakeDialogs{}
	flow := NewRegistrationFlow(registrar, dialogs, i18n.New("en-US"))

	err := flow.Submit(context.Background(), models.Registration{Username: "carol", Password: "short", Email: "carol@example.com"})
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Empty(t, registrar.submitted)
	require.Len(t, dialogs.notes, 1)
	assert.Contains(t, dialogs.notes[0].message, "password")
}

func TestRegistrationUsernameTaken(t *testing.T) {
	registrar := &fakeRegistrar{err: errors.Join(models.ErrUsernameTaken, &statusErr{status: 400, typ: "AlreadyExistingUsername"})}
	dialogs := &fakeDialogs{}
	flow := NewRegistrationFlow(registrar, dialogs, i18n.New("en-US"))

	err := flow.Submit(context.Background(), models.Registration{Username: "alice", Password: "password1", Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrRemoteRejected)
	assert.ErrorIs(t, err, models.ErrUsernameTaken)
	require.Len(t, dialogs.notes, 1)
	assert.Equal(t, "This username is already used.", dialogs.notes[0].message)
}

func TestRegistrationUnreachable(t *testing.T) {
	registrar := &fakeRegistrar{err: errors.New("connection refused")}
	dialogs := &fakeDialogs{}
	flow := NewRegistrationFlow(registrar, dialogs, i18n.New("en-US"))

	err := flow.Submit(context.Background(), models.Registration{Username: "alice", Password: "password1", Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrRemoteUnreachable)
	require.Len(t, dialogs.notes, 1)
	assert.Contains(t, dialogs.notes[0].message, "connection refused")
}
