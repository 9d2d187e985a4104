package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credenciamento/event-api/internal/domain"
)

func TestCreateEventDerivesDaysFromRanges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	setupStart := time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC)
	setupEnd := time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC)
	event, err := env.events.CreateEvent(ctx, env.admin, domain.Event{
		Name:           "  Festival  ",
		StartDate:      time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 7, 11, 0, 0, 0, 0, time.UTC),
		SetupStartDate: &setupStart,
		SetupEndDate:   &setupEnd,
	})
	require.NoError(t, err)

	assert.Equal(t, "Festival", event.Name)
	assert.Equal(t, domain.EventActive, event.Status)
	assert.Equal(t, domain.VisibilityPrivate, event.Visibility)
	assert.Equal(t, []domain.EventDay{
		{Date: "2024-07-08", Phase: domain.PhaseSetup},
		{Date: "2024-07-09", Phase: domain.PhaseSetup},
		{Date: "2024-07-10", Phase: domain.PhaseEvent},
		{Date: "2024-07-11", Phase: domain.PhaseEvent},
	}, event.Days)
	require.Len(t, event.History, 1)
	assert.Equal(t, EventActionCreated, event.History[0].Action)

	stored, err := env.events.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.Days, stored.Days)
}

func TestCreateEventValidatesSchedule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.events.CreateEvent(ctx, env.admin, domain.Event{
		Name:      "Invertido",
		StartDate: time.Date(2024, 7, 12, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrInvalidEventDates)

	_, err = env.events.CreateEvent(ctx, env.admin, domain.Event{
		Name: "Dia ruim",
		Days: []domain.EventDay{{Date: "10/07/2024", Phase: domain.PhaseEvent}},
	})
	assert.ErrorIs(t, err, ErrInvalidEventDay)

	_, err = env.events.CreateEvent(ctx, env.admin, domain.Event{
		Name: "Fase ruim",
		Days: []domain.EventDay{{Date: "2024-07-10", Phase: "show"}},
	})
	assert.ErrorIs(t, err, ErrInvalidEventDay)
}

func TestUpdateStatusRecordsHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)

	updated, err := env.events.UpdateStatus(ctx, env.admin, event.ID, domain.EventFinished)
	require.NoError(t, err)
	assert.Equal(t, domain.EventFinished, updated.Status)
	require.Len(t, updated.History, 2)
	assert.Equal(t, EventActionStatusChanged, updated.History[1].Action)
	assert.Equal(t, "active -> finished", updated.History[1].Details)

	same, err := env.events.UpdateStatus(ctx, env.admin, event.ID, domain.EventFinished)
	require.NoError(t, err)
	assert.Len(t, same.History, 2)

	_, err = env.events.UpdateStatus(ctx, env.admin, event.ID, "archived")
	assert.ErrorIs(t, err, ErrInvalidEventStatus)
}

func TestUpdateStaffDropsBlankMembers(t *testing.T) {
	env := newTestEnv(t)
	event := env.createEvent(t)

	updated, err := env.events.UpdateStaff(context.Background(), env.admin, event.ID,
		[]domain.StaffMember{{Name: " Ana ", Email: "ANA@Example.com"}, {Name: " "}},
		[]domain.StaffMember{{Name: "Bruno"}},
	)
	require.NoError(t, err)
	assert.Equal(t, []domain.StaffMember{{Name: "Ana", Email: "ana@example.com"}}, updated.Managers)
	assert.Len(t, updated.Staff, 1)
}

func TestListEventsHonoursAllowedIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.createEvent(t)
	env.createEvent(t)

	all, err := env.events.ListEvents(ctx, domain.EventFilter{}, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := env.events.ListEvents(ctx, domain.EventFilter{}, []uint{})
	require.NoError(t, err)
	assert.Empty(t, none)

	scoped, err := env.events.ListEvents(ctx, domain.EventFilter{}, []uint{first.ID})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, first.ID, scoped[0].ID)
}

func TestDeleteEventHidesIt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.createEvent(t)

	require.NoError(t, env.events.DeleteEvent(ctx, env.admin, event.ID))

	_, err := env.events.GetEvent(ctx, event.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)

	entries, err := env.audit.List(ctx, domain.AuditFilter{EventID: &event.ID, Entity: "event"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, entries.Total)
}
