package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignCodeKeepsHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)
	maria := env.createParticipant(t, event.ID, "Maria", validCPF)
	joao := env.createParticipant(t, event.ID, "João", otherValidCPF)

	m, err := env.movements.AssignCode(ctx, env.admin, event.ID, maria.ID, " A-001 ")
	require.NoError(t, err)
	assert.Equal(t, "A-001", m.CurrentCode)
	assert.Empty(t, m.History)

	same, err := env.movements.AssignCode(ctx, env.admin, event.ID, maria.ID, "A-001")
	require.NoError(t, err)
	assert.Equal(t, m.ID, same.ID)
	assert.Empty(t, same.History)

	_, err = env.movements.AssignCode(ctx, env.admin, event.ID, joao.ID, "A-001")
	assert.ErrorIs(t, err, ErrCredentialCodeInUse)

	m, err = env.movements.AssignCode(ctx, env.admin, event.ID, maria.ID, "A-002")
	require.NoError(t, err)
	assert.Equal(t, "A-002", m.CurrentCode)
	require.Len(t, m.History, 1)
	assert.Equal(t, "A-001", m.History[0].Code)
	assert.Equal(t, env.admin.ID, m.History[0].ChangedBy)

	// the released code can be handed to someone else
	_, err = env.movements.AssignCode(ctx, env.admin, event.ID, joao.ID, "A-001")
	require.NoError(t, err)

	holder, movement, err := env.movements.FindHolder(ctx, event.ID, "A-002")
	require.NoError(t, err)
	assert.Equal(t, maria.ID, holder.ID)
	assert.Equal(t, m.ID, movement.ID)

	_, err = env.movements.AssignCode(ctx, env.admin, event.ID, maria.ID, "  ")
	assert.ErrorIs(t, err, ErrEmptyCredentialCode)

	all, err := env.movements.ListMovements(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAssignCodeRejectsForeignParticipant(t *testing.T) {
	env := newTestEnv(t)
	event := env.createEvent(t)
	other := env.createEvent(t)
	p := env.createParticipant(t, other.ID, "Maria", validCPF)

	_, err := env.movements.AssignCode(context.Background(), env.admin, event.ID, p.ID, "A-001")
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}
