package dao

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovementDAO_CodeHeldOncePerEvent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	event := seedEvent(t, db)
	participants := NewParticipantDAO(db)
	d := NewMovementDAO(db)

	ana, err := participants.Insert(ctx, Participant{EventID: event.ID, Name: "Ana"})
	require.NoError(t, err)
	bia, err := participants.Insert(ctx, Participant{EventID: event.ID, Name: "Bia"})
	require.NoError(t, err)

	_, err = d.Save(ctx, MovementCredential{EventID: event.ID, ParticipantID: ana.ID, CurrentCode: "P-001"})
	require.NoError(t, err)

	_, err = d.Save(ctx, MovementCredential{EventID: event.ID, ParticipantID: bia.ID, CurrentCode: "P-001"})
	assert.ErrorIs(t, err, ErrMovementCodeExists)

	m, err := d.Save(ctx, MovementCredential{EventID: event.ID, ParticipantID: bia.ID, CurrentCode: "P-002"})
	require.NoError(t, err)

	found, err := d.FindByCode(ctx, event.ID, "P-002")
	require.NoError(t, err)
	assert.Equal(t, m.ID, found.ID)
}
