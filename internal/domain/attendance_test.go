package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
}

func TestReconcileAttendance(t *testing.T) {
	out1 := at(1, 12)
	records := []AttendanceRecord{
		{ParticipantID: 1, Day: "2024-03-01", CheckIn: at(1, 14)},
		{ParticipantID: 1, Day: "2024-03-01", CheckIn: at(1, 8), CheckOut: &out1},
		{ParticipantID: 2, Day: "2024-03-01", CheckIn: at(1, 9)},
	}
	p := Participant{ID: 1, WorkDays: []string{"2024-03-01", "2024-03-02"}}

	days := ReconcileAttendance(p, records, time.UTC)
	require.Len(t, days, 2)

	assert.Equal(t, "2024-03-01", days[0].Day)
	assert.Equal(t, StatusPresent, days[0].Status)
	assert.True(t, days[0].CheckIn.Equal(at(1, 8)))
	assert.Nil(t, days[0].CheckOut)

	assert.Equal(t, "2024-03-02", days[1].Day)
	assert.Equal(t, StatusAbsent, days[1].Status)
}

func TestReconcileAttendanceLegacyFields(t *testing.T) {
	checkIn, checkOut := at(3, 9), at(3, 17)
	p := Participant{ID: 1, CheckIn: &checkIn, CheckOut: &checkOut}

	days := ReconcileAttendance(p, nil, time.UTC)
	require.Len(t, days, 1)
	assert.True(t, days[0].Legacy)
	assert.Equal(t, StatusCheckedOut, days[0].Status)
	assert.Equal(t, StatusCheckedOut, StatusOn(days, "2024-03-03"))
	assert.Equal(t, StatusAbsent, StatusOn(days, "2024-03-04"))
}

func TestReconcileAttendanceUsesLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	// 01:00 UTC on the 4th is still the 3rd in BRT
	checkIn := time.Date(2024, 3, 4, 1, 0, 0, 0, time.UTC)
	p := Participant{ID: 1, CheckIn: &checkIn}

	days := ReconcileAttendance(p, nil, loc)
	require.Len(t, days, 1)
	assert.Equal(t, "2024-03-03", days[0].Day)
}

func TestParticipantCurrentStatus(t *testing.T) {
	in, out := at(1, 8), at(1, 18)
	assert.Equal(t, StatusAbsent, Participant{}.CurrentStatus())
	assert.Equal(t, StatusPresent, Participant{CheckIn: &in}.CurrentStatus())
	assert.Equal(t, StatusCheckedOut, Participant{CheckIn: &in, CheckOut: &out}.CurrentStatus())

	// a check-out older than the check-in belongs to a previous visit
	assert.Equal(t, StatusPresent, Participant{CheckIn: &out, CheckOut: &in}.CurrentStatus())
}
