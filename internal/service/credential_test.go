package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credenciamento/event-api/internal/domain"
)

func TestCreateCredential(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)

	c, err := env.credentials.CreateCredential(ctx, env.admin, domain.Credential{EventID: event.ID, Name: " Staff "})
	require.NoError(t, err)
	assert.Equal(t, "Staff", c.Name)
	assert.Equal(t, defaultCredentialColor, c.Color)

	_, err = env.credentials.CreateCredential(ctx, env.admin, domain.Credential{EventID: event.ID, Name: "STAFF"})
	assert.ErrorIs(t, err, ErrCredentialNameExists)

	_, err = env.credentials.CreateCredential(ctx, env.admin, domain.Credential{EventID: event.ID, Name: "Imprensa", Color: "blue"})
	assert.ErrorIs(t, err, ErrInvalidColor)

	_, err = env.credentials.CreateCredential(ctx, env.admin, domain.Credential{EventID: event.ID, Name: "Backstage", WorkDays: []string{"2030-01-01"}})
	assert.ErrorIs(t, err, ErrInvalidWorkDays)
}

func TestCredentialToggles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)

	c, err := env.credentials.CreateCredential(ctx, env.admin, domain.Credential{EventID: event.ID, Name: "Staff", Active: true})
	require.NoError(t, err)

	c, err = env.credentials.ToggleActive(ctx, env.admin, event.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, c.Active)

	c, err = env.credentials.ToggleDistributed(ctx, env.admin, event.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, c.Distributed)

	_, err = env.credentials.ToggleActive(ctx, env.admin, event.ID+1, c.ID)
	assert.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestDeleteCredentialInUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)

	c, err := env.credentials.CreateCredential(ctx, env.admin, domain.Credential{EventID: event.ID, Name: "Staff"})
	require.NoError(t, err)

	_, err = env.participants.CreateParticipant(ctx, env.admin, domain.Participant{
		EventID:      event.ID,
		Name:         "Maria",
		CredentialID: &c.ID,
	})
	require.NoError(t, err)

	listed, err := env.credentials.ListCredentials(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.EqualValues(t, 1, listed[0].ParticipantCount)

	err = env.credentials.DeleteCredential(ctx, env.admin, event.ID, c.ID)
	assert.ErrorIs(t, err, ErrCredentialInUse)

	unused, err := env.credentials.CreateCredential(ctx, env.admin, domain.Credential{EventID: event.ID, Name: "Visitante"})
	require.NoError(t, err)
	require.NoError(t, env.credentials.DeleteCredential(ctx, env.admin, event.ID, unused.ID))

	// the name is free again once deleted
	_, err = env.credentials.CreateCredential(ctx, env.admin, domain.Credential{EventID: event.ID, Name: "Visitante"})
	assert.NoError(t, err)
}
