package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ist(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return loc
}

func statusOf(t *testing.T, schedule []SlotInfo, label string) Status {
	t.Helper()
	for _, s := range schedule {
		if s.Time == label {
			return s.Status
		}
	}
	t.Fatalf("slot %q not in schedule", label)
	return ""
}

func TestSlots_LabelsAndOrder(t *testing.T) {
	labels := Slots()
	require.Len(t, labels, SlotsPerDay)
	assert.Equal(t, "12:00 AM", labels[0])
	assert.Equal(t, "01:00 AM", labels[1])
	assert.Equal(t, "12:00 PM", labels[12])
	assert.Equal(t, "01:00 PM", labels[13])
	assert.Equal(t, "11:00 PM", labels[23])
}

func TestParseSlot(t *testing.T) {
	testCases := []struct {
		label   string
		hour    int
		wantErr bool
	}{
		{label: "12:00 AM", hour: 0},
		{label: "01:00 AM", hour: 1},
		{label: "12:00 PM", hour: 12},
		{label: "11:00 PM", hour: 23},
		{label: " 10:00 am ", hour: 10},
		{label: "10:00  PM", hour: 22},
		{label: "10:30 AM", wantErr: true},
		{label: "13:00 PM", wantErr: true},
		{label: "10:00", wantErr: true},
		{label: "", wantErr: true},
		{label: "10:00 XX", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.label, func(t *testing.T) {
			hour, err := ParseSlot(tc.label)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.hour, hour)
		})
	}
}

func TestNormalizeSlot(t *testing.T) {
	got, err := NormalizeSlot("  10:00 am")
	assert.NoError(t, err)
	assert.Equal(t, "10:00 AM", got)

	_, err = NormalizeSlot("25:00 AM")
	assert.Error(t, err)
}

func TestClassify_PastOnlyForToday(t *testing.T) {
	loc := ist(t)
	// 2025-06-01 14:05 IST
	now := time.Date(2025, 6, 1, 14, 5, 0, 0, loc)

	today, err := Classify("2025-06-01", now, loc, nil, nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, StatusPast, statusOf(t, today, "02:00 PM"))
	assert.Equal(t, StatusPast, statusOf(t, today, "12:00 AM"))
	assert.Equal(t, StatusAvailable, statusOf(t, today, "03:00 PM"))

	tomorrow, err := Classify("2025-06-02", now, loc, nil, nil, nil, false)
	require.NoError(t, err)
	for _, s := range tomorrow {
		assert.Equal(t, StatusAvailable, s.Status, "slot %s", s.Time)
	}
}

func TestClassify_NeverPastForFutureDates_EvenLateInDay(t *testing.T) {
	loc := ist(t)
	now := time.Date(2025, 6, 1, 23, 59, 0, 0, loc)

	schedule, err := Classify("2025-06-02", now, loc, nil, nil, nil, false)
	require.NoError(t, err)
	for _, s := range schedule {
		assert.NotEqual(t, StatusPast, s.Status, "slot %s", s.Time)
	}
}

func TestClassify_BookedBeatsPast(t *testing.T) {
	loc := ist(t)
	now := time.Date(2025, 6, 1, 14, 5, 0, 0, loc)
	booked := map[string]bool{"10:00 AM": true}

	schedule, err := Classify("2025-06-01", now, loc, booked, nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, StatusBooked, statusOf(t, schedule, "10:00 AM"))
}

func TestClassify_LockedSlotReadsBooked(t *testing.T) {
	loc := ist(t)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, loc)
	locked := map[string]bool{"05:00 PM": true}

	schedule, err := Classify("2025-06-01", now, loc, nil, locked, nil, false)
	require.NoError(t, err)
	assert.Equal(t, StatusBooked, statusOf(t, schedule, "05:00 PM"))
}

func TestClassify_Unavailable(t *testing.T) {
	loc := ist(t)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, loc)

	schedule, err := Classify("2025-06-05", now, loc, nil, nil, map[string]bool{"04:00 PM": true}, false)
	require.NoError(t, err)
	assert.Equal(t, StatusUnavailable, statusOf(t, schedule, "04:00 PM"))
	assert.Equal(t, StatusAvailable, statusOf(t, schedule, "05:00 PM"))

	dayOff, err := Classify("2025-06-05", now, loc, nil, nil, nil, true)
	require.NoError(t, err)
	for _, s := range dayOff {
		assert.Equal(t, StatusUnavailable, s.Status, "slot %s", s.Time)
	}
}

func TestClassify_BookedBeatsUnavailable(t *testing.T) {
	loc := ist(t)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, loc)
	booked := map[string]bool{"10:00 AM": true}

	schedule, err := Classify("2025-06-05", now, loc, booked, nil, nil, true)
	require.NoError(t, err)
	assert.Equal(t, StatusBooked, statusOf(t, schedule, "10:00 AM"))
}

func TestClassify_Deterministic(t *testing.T) {
	loc := ist(t)
	now := time.Date(2025, 6, 1, 14, 5, 0, 0, loc)
	booked := map[string]bool{"10:00 AM": true}
	locked := map[string]bool{"11:00 AM": true}

	first, err := Classify("2025-06-01", now, loc, booked, locked, nil, false)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Classify("2025-06-01", now, loc, booked, locked, nil, false)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestClassify_InvalidDate(t *testing.T) {
	loc := ist(t)
	_, err := Classify("06-01-2025", time.Now(), loc, nil, nil, nil, false)
	assert.Error(t, err)
}
