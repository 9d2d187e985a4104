package dao

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credenciamento/event-api/internal/domain"
)

func TestOperatorDAO(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	d := NewOperatorDAO(db)

	created, err := d.Insert(ctx, Operator{Name: "Op", CPF: "52998224725", Password: "hash", EventIDs: []uint{1, 2}})
	require.NoError(t, err)

	_, err = d.Insert(ctx, Operator{Name: "Other", CPF: "52998224725", Password: "hash"})
	assert.ErrorIs(t, err, ErrOperatorCPFExists)

	clientTime := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	created.Actions = []domain.OperatorAction{{ID: "a1", Type: "check_in", EventID: 1, At: clientTime}}
	created.UpdatedAt = clientTime
	_, err = d.Update(ctx, created)
	require.NoError(t, err)

	found, err := d.FindByCPF(ctx, "52998224725")
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, found.EventIDs)
	require.Len(t, found.Actions, 1)
	assert.True(t, found.UpdatedAt.Equal(clientTime))

	listed, err := d.Find(ctx, "op")
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	require.NoError(t, d.Delete(ctx, created.ID))
	_, err = d.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrOperatorNotFound)
}
