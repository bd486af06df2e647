package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSlotValidateNormalises(t *testing.T) {
	slot := TimeSlot{Day: Monday, StartTime: "9:00", EndTime: "10:00"}
	require.NoError(t, slot.Validate())
	assert.Equal(t, "09:00", slot.StartTime)
	assert.Equal(t, 60, slot.Duration)
	assert.Equal(t, SlotTypeLecture, slot.SlotType)
	assert.Equal(t, "Monday 09:00-10:00", slot.Label())
}

func TestTimeSlotValidateRejects(t *testing.T) {
	cases := map[string]TimeSlot{
		"end before start":  {Day: Monday, StartTime: "10:00", EndTime: "09:00"},
		"too short":         {Day: Monday, StartTime: "09:00", EndTime: "09:15"},
		"too long":          {Day: Monday, StartTime: "08:00", EndTime: "12:00"},
		"duration mismatch": {Day: Monday, StartTime: "09:00", EndTime: "10:00", Duration: 45},
		"bad day":           {Day: "Funday", StartTime: "09:00", EndTime: "10:00"},
		"bad clock":         {Day: Monday, StartTime: "9am", EndTime: "10:00"},
		"bad slot type":     {Day: Monday, StartTime: "09:00", EndTime: "10:00", SlotType: "Seminar"},
	}
	for name, slot := range cases {
		slot := slot
		t.Run(name, func(t *testing.T) {
			assert.Error(t, slot.Validate())
		})
	}
}

func TestWeekdayOrdinalAndParse(t *testing.T) {
	assert.Equal(t, 1, Monday.Ordinal())
	assert.Equal(t, 7, Sunday.Ordinal())
	assert.Equal(t, 0, Weekday("x").Ordinal())

	day, err := ParseWeekday(" wed ")
	require.NoError(t, err)
	assert.Equal(t, Wednesday, day)

	day, err = ParseWeekday("FRIDAY")
	require.NoError(t, err)
	assert.Equal(t, Friday, day)

	_, err = ParseWeekday("fr")
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("13:05")
	require.NoError(t, err)
	assert.Equal(t, 785, m)
	assert.Equal(t, "13:05", FormatClock(m))

	for _, raw := range []string{"", "24:00", "12:60", "1205", "12:5"} {
		_, err := ParseClock(raw)
		assert.Error(t, err, raw)
	}
}

func TestSubjectIsLibrary(t *testing.T) {
	assert.True(t, Subject{Name: "Library"}.IsLibrary())
	assert.True(t, Subject{Name: " LIBRARY "}.IsLibrary())
	assert.False(t, Subject{Name: "Library Science"}.IsLibrary())
}
