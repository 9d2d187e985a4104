package dao

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceDAO_CheckInOutUndo(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	event := seedEvent(t, db)
	participants := NewParticipantDAO(db)
	d := NewAttendanceDAO(db)

	p, err := participants.Insert(ctx, Participant{EventID: event.ID, Name: "Ana"})
	require.NoError(t, err)

	day1 := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	first, err := d.CheckIn(ctx, AttendanceRecord{EventID: event.ID, ParticipantID: p.ID, Day: "2024-05-10", CheckIn: day1})
	require.NoError(t, err)

	open, err := d.FindOpen(ctx, p.ID, "2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, first.ID, open.ID)

	open.CheckOut = ptr(day1.Add(8 * time.Hour))
	_, err = d.CheckOut(ctx, open)
	require.NoError(t, err)

	_, err = d.FindOpen(ctx, p.ID, "2024-05-10")
	assert.ErrorIs(t, err, ErrAttendanceNotFound)

	reloaded, err := participants.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.CheckOut)
	assert.True(t, reloaded.CheckOut.Equal(day1.Add(8*time.Hour)))

	day2 := day1.AddDate(0, 0, 1)
	second, err := d.CheckIn(ctx, AttendanceRecord{EventID: event.ID, ParticipantID: p.ID, Day: "2024-05-11", CheckIn: day2})
	require.NoError(t, err)

	reloaded, err = participants.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.CheckIn)
	assert.True(t, reloaded.CheckIn.Equal(day2))
	assert.Nil(t, reloaded.CheckOut)

	// Undoing the second day restores the first one.
	require.NoError(t, d.Delete(ctx, second))
	reloaded, err = participants.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.CheckIn)
	assert.True(t, reloaded.CheckIn.Equal(day1))
	require.NotNil(t, reloaded.CheckOut)

	require.NoError(t, d.Delete(ctx, first))
	reloaded, err = participants.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CheckIn)
	assert.Nil(t, reloaded.CheckOut)

	assert.ErrorIs(t, d.Delete(ctx, first), ErrAttendanceNotFound)
}

func TestAttendanceDAO_BaseFieldsFollowLatestRecord(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	event := seedEvent(t, db)
	participants := NewParticipantDAO(db)
	d := NewAttendanceDAO(db)

	p, err := participants.Insert(ctx, Participant{EventID: event.ID, Name: "Bruno"})
	require.NoError(t, err)

	today := time.Date(2024, 5, 11, 8, 0, 0, 0, time.UTC)
	_, err = d.CheckIn(ctx, AttendanceRecord{EventID: event.ID, ParticipantID: p.ID, Day: "2024-05-11", CheckIn: today})
	require.NoError(t, err)

	// a late entry for the previous day must not override today
	yesterday := today.AddDate(0, 0, -1)
	backdated, err := d.CheckIn(ctx, AttendanceRecord{EventID: event.ID, ParticipantID: p.ID, Day: "2024-05-10", CheckIn: yesterday})
	require.NoError(t, err)

	reloaded, err := participants.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.CheckIn)
	assert.True(t, reloaded.CheckIn.Equal(today))
	assert.Nil(t, reloaded.CheckOut)

	backdated.CheckOut = ptr(yesterday.Add(9 * time.Hour))
	_, err = d.CheckOut(ctx, backdated)
	require.NoError(t, err)

	reloaded, err = participants.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.CheckIn)
	assert.True(t, reloaded.CheckIn.Equal(today))
	assert.Nil(t, reloaded.CheckOut)
}

func TestAttendanceDAO_SingleOpenRecordPerDay(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	event := seedEvent(t, db)
	participants := NewParticipantDAO(db)
	d := NewAttendanceDAO(db)

	p, err := participants.Insert(ctx, Participant{EventID: event.ID, Name: "Carla"})
	require.NoError(t, err)

	at := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	first, err := d.CheckIn(ctx, AttendanceRecord{EventID: event.ID, ParticipantID: p.ID, Day: "2024-05-10", CheckIn: at})
	require.NoError(t, err)

	_, err = d.CheckIn(ctx, AttendanceRecord{EventID: event.ID, ParticipantID: p.ID, Day: "2024-05-10", CheckIn: at.Add(time.Minute)})
	assert.ErrorIs(t, err, ErrAttendanceOpenExists)

	first.CheckOut = ptr(at.Add(time.Hour))
	_, err = d.CheckOut(ctx, first)
	require.NoError(t, err)

	// closed records do not block a new entry on the same day
	_, err = d.CheckIn(ctx, AttendanceRecord{EventID: event.ID, ParticipantID: p.ID, Day: "2024-05-10", CheckIn: at.Add(2 * time.Hour)})
	require.NoError(t, err)
}
