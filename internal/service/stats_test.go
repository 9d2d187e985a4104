package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credenciamento/event-api/internal/domain"
)

func TestEventStatsIsCachedUntilWrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)

	credential, err := env.credentials.CreateCredential(ctx, env.admin, domain.Credential{EventID: event.ID, Name: "Staff"})
	require.NoError(t, err)
	maria := env.createParticipant(t, event.ID, "Maria", validCPF)
	_, err = env.participants.CreateParticipant(ctx, env.admin, domain.Participant{
		EventID:      event.ID,
		Name:         "João",
		Company:      "Luz",
		CredentialID: &credential.ID,
	})
	require.NoError(t, err)

	at := time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC)
	_, err = env.attendance.CheckIn(ctx, env.admin, event.ID, maria.ID, &at, "")
	require.NoError(t, err)
	_, err = env.radios.CreateLoan(ctx, env.admin, domain.RadioLoan{EventID: event.ID, BorrowerName: "Maria", Radios: []string{"R1", "R2"}})
	require.NoError(t, err)

	stats, err := env.stats.EventStats(ctx, event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalParticipants)
	assert.EqualValues(t, 1, stats.CheckedIn)
	assert.EqualValues(t, 1, stats.Absent)
	assert.EqualValues(t, 2, stats.RadiosOut)
	assert.Contains(t, stats.ByCredential, domain.CountByLabel{Label: "Staff", Count: 1})
	assert.Contains(t, stats.ByCompany, domain.CountByLabel{Label: "Som & Luz", Count: 1})

	_, err = env.stats.EventStats(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CacheRequests.WithLabelValues("stats", "hit")))

	out := time.Date(2024, 7, 10, 18, 0, 0, 0, time.UTC)
	_, err = env.attendance.CheckOut(ctx, env.admin, event.ID, maria.ID, &out)
	require.NoError(t, err)

	stats, err = env.stats.EventStats(ctx, event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.CheckedIn)
	assert.EqualValues(t, 1, stats.CheckedOut)
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.CacheRequests.WithLabelValues("stats", "miss")))
}

func TestEventStatsUnknownEvent(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.stats.EventStats(context.Background(), 42)
	assert.ErrorIs(t, err, ErrEventNotFound)
}
