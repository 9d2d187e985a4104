package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/realtime"
)

func newOperator(t *testing.T, env *testEnv, eventIDs ...uint) domain.Operator {
	t.Helper()

	op, err := env.operators.CreateOperator(context.Background(), env.admin, domain.Operator{
		Name:     "Carlos",
		CPF:      "111.444.777-35",
		Password: "secret123",
		EventIDs: eventIDs,
	})
	require.NoError(t, err)
	return op
}

func TestCreateOperatorPublishesChange(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := env.broker.Subscribe(ctx)
	require.NoError(t, err)

	op := newOperator(t, env, 3, 3, 4)
	assert.Equal(t, otherValidCPF, op.CPF)
	assert.Equal(t, []uint{3, 4}, op.EventIDs)
	assert.NotEqual(t, "secret123", op.Password)

	select {
	case change := <-changes:
		assert.Equal(t, OperatorsTable, change.Table)
		assert.Equal(t, realtime.ChangeInsert, change.Type)
		var record map[string]any
		require.NoError(t, json.Unmarshal(change.Record, &record))
		assert.Equal(t, "Carlos", record["name"])
		assert.NotContains(t, record, "password")
	case <-time.After(time.Second):
		t.Fatal("no change published")
	}

	_, err = env.operators.CreateOperator(ctx, env.admin, domain.Operator{Name: "Dup", CPF: otherValidCPF, Password: "secret123"})
	assert.ErrorIs(t, err, ErrOperatorCPFExists)
}

func TestUpdateOperatorKeepsPasswordWhenEmpty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	op := newOperator(t, env, 1)

	_, err := env.operators.UpdateOperator(ctx, env.admin, domain.Operator{ID: op.ID, Name: "Carlos Lima", EventIDs: []uint{1, 2}})
	require.NoError(t, err)

	logged, err := env.auth.LoginOperator(ctx, "111.444.777-35", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "Carlos Lima", logged.Name)
	assert.Equal(t, []uint{1, 2}, logged.EventIDs)
}

func TestSyncOperatorLastWriteWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	op := newOperator(t, env, 1)

	base := op.UpdatedAt
	stale := domain.Operator{
		ID:        op.ID,
		Name:      "Nome antigo",
		EventIDs:  []uint{9},
		UpdatedAt: base.Add(-time.Hour),
		Actions: []domain.OperatorAction{
			{ID: "offline-1", Type: ActionCheckIn, EventID: 1, At: base.Add(-2 * time.Hour)},
		},
	}

	merged, err := env.operators.SyncOperator(ctx, env.admin, stale)
	require.NoError(t, err)
	assert.Equal(t, "Carlos", merged.Name)
	assert.Equal(t, []uint{1}, merged.EventIDs)
	require.Len(t, merged.Actions, 1)
	assert.Equal(t, "offline-1", merged.Actions[0].ID)

	fresh := domain.Operator{
		ID:        op.ID,
		Name:      "Carlos Novo",
		EventIDs:  []uint{1, 2},
		UpdatedAt: base.Add(time.Hour),
		Actions: []domain.OperatorAction{
			{ID: "offline-1", Type: ActionCheckIn, EventID: 1, At: base.Add(-2 * time.Hour)},
			{Type: ActionCheckOut, EventID: 1, At: base.Add(-time.Hour)},
		},
	}

	freezeNow(t, base.Add(2*time.Hour))
	merged, err = env.operators.SyncOperator(ctx, env.admin, fresh)
	require.NoError(t, err)
	assert.Equal(t, "Carlos Novo", merged.Name)
	assert.Equal(t, []uint{1, 2}, merged.EventIDs)
	require.Len(t, merged.Actions, 2)
	assert.NotEmpty(t, merged.Actions[1].ID)

	stored, err := env.operators.GetOperator(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, "Carlos Novo", stored.Name)
	assert.True(t, stored.UpdatedAt.Equal(base.Add(time.Hour)))
}

func TestSyncOperatorKeepsAssignmentsForOperators(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	op := newOperator(t, env, 1)
	self := domain.Actor{ID: op.ID, Type: domain.ActorOperator}

	at := op.UpdatedAt.Add(time.Minute)
	freezeNow(t, at)

	merged, err := env.operators.SyncOperator(ctx, self, domain.Operator{
		ID:        op.ID,
		Name:      "Carlos Portaria",
		EventIDs:  []uint{1, 2},
		UpdatedAt: at.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "Carlos Portaria", merged.Name)
	assert.Equal(t, []uint{1}, merged.EventIDs)

	stored, err := env.operators.GetOperator(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, stored.EventIDs)
	assert.True(t, stored.UpdatedAt.Equal(at), stored.UpdatedAt)

	// a later dashboard edit is not shadowed by the client clock
	freezeNow(t, at.Add(time.Hour))
	_, err = env.operators.SyncOperator(ctx, env.admin, domain.Operator{
		ID:        op.ID,
		Name:      "Carlos",
		EventIDs:  []uint{1, 3},
		UpdatedAt: at.Add(time.Second),
	})
	require.NoError(t, err)
	stored, err = env.operators.GetOperator(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 3}, stored.EventIDs)
}

func TestDeleteOperator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	op := newOperator(t, env)

	require.NoError(t, env.operators.DeleteOperator(ctx, env.admin, op.ID))

	_, err := env.operators.GetOperator(ctx, op.ID)
	assert.ErrorIs(t, err, ErrOperatorNotFound)

	// the CPF can be registered again
	newOperator(t, env)
}
