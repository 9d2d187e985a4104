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

func TestCheckInAndOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)
	p := env.createParticipant(t, event.ID, "Maria", validCPF)

	morning := time.Date(2024, 7, 10, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 7, 10, 18, 30, 0, 0, time.UTC)

	record, err := env.attendance.CheckIn(ctx, env.admin, event.ID, p.ID, &morning, " portão 2 ")
	require.NoError(t, err)
	assert.Equal(t, "2024-07-10", record.Day)
	assert.Equal(t, "portão 2", record.Notes)
	assert.Nil(t, record.OperatorID)

	_, err = env.attendance.CheckIn(ctx, env.admin, event.ID, p.ID, &evening, "")
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	early := morning.Add(-time.Hour)
	_, err = env.attendance.CheckOut(ctx, env.admin, event.ID, p.ID, &early)
	assert.ErrorIs(t, err, ErrCheckOutBeforeCheckIn)

	record, err = env.attendance.CheckOut(ctx, env.admin, event.ID, p.ID, &evening)
	require.NoError(t, err)
	require.NotNil(t, record.CheckOut)
	assert.True(t, record.CheckOut.Equal(evening))

	_, err = env.attendance.CheckOut(ctx, env.admin, event.ID, p.ID, &evening)
	assert.ErrorIs(t, err, ErrNotCheckedIn)

	stored, err := env.participants.GetParticipant(ctx, event.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCheckedOut, stored.CurrentStatus())

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CheckInsTotal.WithLabelValues(ActionCheckIn)))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CheckInsTotal.WithLabelValues(ActionCheckOut)))
}

func TestBackdatedAttendanceKeepsCurrentStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)
	p := env.createParticipant(t, event.ID, "Maria", validCPF)

	today := time.Date(2024, 7, 11, 8, 0, 0, 0, time.UTC)
	_, err := env.attendance.CheckIn(ctx, env.admin, event.ID, p.ID, &today, "")
	require.NoError(t, err)

	yesterdayIn := time.Date(2024, 7, 10, 8, 0, 0, 0, time.UTC)
	yesterdayOut := time.Date(2024, 7, 10, 17, 0, 0, 0, time.UTC)
	_, err = env.attendance.CheckIn(ctx, env.admin, event.ID, p.ID, &yesterdayIn, "")
	require.NoError(t, err)
	_, err = env.attendance.CheckOut(ctx, env.admin, event.ID, p.ID, &yesterdayOut)
	require.NoError(t, err)

	stored, err := env.participants.GetParticipant(ctx, event.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPresent, stored.CurrentStatus())

	page, err := env.participants.ListParticipants(ctx, event.ID, domain.ParticipantFilter{Status: domain.StatusPresent})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}

func TestCheckInHonoursWorkDays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)

	p, err := env.participants.CreateParticipant(ctx, env.admin, domain.Participant{
		EventID:  event.ID,
		Name:     "Maria",
		WorkDays: []string{"2024-07-11"},
	})
	require.NoError(t, err)

	firstDay := time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC)
	_, err = env.attendance.CheckIn(ctx, env.admin, event.ID, p.ID, &firstDay, "")
	assert.ErrorIs(t, err, ErrNotAWorkDay)

	secondDay := time.Date(2024, 7, 11, 9, 0, 0, 0, time.UTC)
	_, err = env.attendance.CheckIn(ctx, env.admin, event.ID, p.ID, &secondDay, "")
	assert.NoError(t, err)
}

func TestAttendanceAcrossDays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)
	p := env.createParticipant(t, event.ID, "Maria", validCPF)

	day1 := time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 7, 11, 9, 0, 0, 0, time.UTC)

	_, err := env.attendance.CheckIn(ctx, env.admin, event.ID, p.ID, &day1, "")
	require.NoError(t, err)
	// an open record of a previous day does not block the next day
	second, err := env.attendance.CheckIn(ctx, env.admin, event.ID, p.ID, &day2, "")
	require.NoError(t, err)

	records, days, err := env.attendance.History(ctx, event.ID, p.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-07-10", days[0].Day)
	assert.Equal(t, domain.StatusPresent, days[1].Status)

	report, err := env.attendance.DayReport(ctx, event.ID, "2024-07-11")
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, domain.StatusPresent, report[0].Status)

	require.NoError(t, env.attendance.Undo(ctx, env.admin, event.ID, second.ID))

	stored, err := env.participants.GetParticipant(ctx, event.ID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CheckIn)
	assert.True(t, stored.CheckIn.Equal(day1))

	report, err = env.attendance.DayReport(ctx, event.ID, "2024-07-11")
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, domain.StatusAbsent, report[0].Status)

	_, err = env.attendance.DayReport(ctx, event.ID, "11/07/2024")
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestOperatorCheckInIsLogged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)
	p := env.createParticipant(t, event.ID, "Maria", validCPF)

	op, err := env.operators.CreateOperator(ctx, env.admin, domain.Operator{
		Name:     "Operador",
		CPF:      otherValidCPF,
		Password: "secret123",
		EventIDs: []uint{event.ID},
	})
	require.NoError(t, err)

	actor := domain.Actor{ID: op.ID, Type: domain.ActorOperator}
	at := time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC)
	record, err := env.attendance.CheckIn(ctx, actor, event.ID, p.ID, &at, "")
	require.NoError(t, err)
	require.NotNil(t, record.OperatorID)
	assert.Equal(t, op.ID, *record.OperatorID)

	stored, err := env.operators.GetOperator(ctx, op.ID)
	require.NoError(t, err)
	require.Len(t, stored.Actions, 1)
	assert.Equal(t, ActionCheckIn, stored.Actions[0].Type)
	assert.Equal(t, p.ID, stored.Actions[0].ParticipantID)
	assert.NotEmpty(t, stored.Actions[0].ID)
}
