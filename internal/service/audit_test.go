package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credenciamento/event-api/internal/domain"
)

func TestMutationsAreAudited(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)
	p := env.createParticipant(t, event.ID, "Maria", validCPF)

	p.Name = "Maria Souza"
	_, err := env.participants.UpdateParticipant(ctx, env.admin, p)
	require.NoError(t, err)

	page, err := env.audit.List(ctx, domain.AuditFilter{EventID: &event.ID, Entity: "participant"})
	require.NoError(t, err)
	require.EqualValues(t, 2, page.Total)

	latest := page.Items[0]
	assert.Equal(t, "update", latest.Action)
	assert.Equal(t, p.ID, latest.EntityID)
	assert.Equal(t, domain.ActorUser, latest.ActorType)
	assert.Equal(t, "req-1", latest.RequestID)

	var before, after domain.Participant
	require.NoError(t, json.Unmarshal(latest.Before, &before))
	require.NoError(t, json.Unmarshal(latest.After, &after))
	assert.Equal(t, "Maria", before.Name)
	assert.Equal(t, "Maria Souza", after.Name)
}

func TestAuditListPaginates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)
	for i := 0; i < 3; i++ {
		_, err := env.events.UpdateStatus(ctx, env.admin, event.ID, []domain.EventStatus{domain.EventInactive, domain.EventActive, domain.EventFinished}[i])
		require.NoError(t, err)
	}

	page, err := env.audit.List(ctx, domain.AuditFilter{Entity: "event", PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 1, page.Page)
}
