package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) TimeOfDay {
	t.Helper()
	tod, err := ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "09:00", want: "09:00"},
		{input: "00:00", want: "00:00"},
		{input: "23:59", want: "23:59"},
		{input: "24:00", wantErr: true},
		{input: "12:60", wantErr: true},
		{input: "9:00", wantErr: true},
		{input: "09:0", wantErr: true},
		{input: "0900", wantErr: true},
		{input: "ab:cd", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestGenerateSlots_FullDay(t *testing.T) {
	slots, err := GenerateSlots(mustTime(t, "09:00"), mustTime(t, "17:00"), 30)
	require.NoError(t, err)

	require.Len(t, slots, 16)
	assert.Equal(t, "09:00", slots[0].String())
	assert.Equal(t, "09:30", slots[1].String())
	assert.Equal(t, "16:30", slots[15].String())
}

func TestGenerateSlots_Deterministic(t *testing.T) {
	first, err := GenerateSlots(mustTime(t, "09:00"), mustTime(t, "17:00"), 30)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := GenerateSlots(mustTime(t, "09:00"), mustTime(t, "17:00"), 30)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestGenerateSlots_LastSlotMayOverrun(t *testing.T) {
	// 09:00-09:50 on a 30-minute grid yields 09:00 and 09:30 even though the
	// 09:30 slot ends at 10:00, past the window. Generation is strictly
	// while current < end.
	slots, err := GenerateSlots(mustTime(t, "09:00"), mustTime(t, "09:50"), 30)
	require.NoError(t, err)

	require.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].String())
	assert.Equal(t, "09:30", slots[1].String())
}

func TestGenerateSlots_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		increment int
	}{
		{name: "start equals end", start: "09:00", end: "09:00", increment: 30},
		{name: "start after end", start: "10:00", end: "09:00", increment: 30},
		{name: "zero increment", start: "09:00", end: "17:00", increment: 0},
		{name: "negative increment", start: "09:00", end: "17:00", increment: -30},
		{name: "increment exceeds window", start: "09:00", end: "09:20", increment: 30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := GenerateSlots(mustTime(t, tc.start), mustTime(t, tc.end), tc.increment)
			assert.Error(t, err)
		})
	}
}

func TestSlotsForDay_UnionsAndDedupes(t *testing.T) {
	windows := []AvailabilityWindow{
		{DayOfWeek: Monday, StartTime: mustTime(t, "09:00"), EndTime: mustTime(t, "11:00"), Active: true},
		{DayOfWeek: Monday, StartTime: mustTime(t, "10:00"), EndTime: mustTime(t, "12:00"), Active: true},
		{DayOfWeek: Tuesday, StartTime: mustTime(t, "14:00"), EndTime: mustTime(t, "16:00"), Active: true},
	}

	slots := SlotsForDay(windows, Monday, 30)

	want := []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}
	got := make([]string, len(slots))
	for i, s := range slots {
		got[i] = s.String()
	}
	assert.Equal(t, want, got)
}

func TestSlotsForDay_SkipsInactiveWindows(t *testing.T) {
	windows := []AvailabilityWindow{
		{DayOfWeek: Monday, StartTime: mustTime(t, "09:00"), EndTime: mustTime(t, "10:00"), Active: true},
		{DayOfWeek: Monday, StartTime: mustTime(t, "14:00"), EndTime: mustTime(t, "15:00"), Active: false},
	}

	slots := SlotsForDay(windows, Monday, 30)

	require.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].String())
	assert.Equal(t, "09:30", slots[1].String())
}

func TestSlotsForDay_NoWindows(t *testing.T) {
	assert.Empty(t, SlotsForDay(nil, Monday, 30))
	assert.Empty(t, SlotsForDay([]AvailabilityWindow{
		{DayOfWeek: Friday, StartTime: mustTime(t, "09:00"), EndTime: mustTime(t, "10:00"), Active: true},
	}, Monday, 30))
}
