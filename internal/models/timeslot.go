package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Weekday names a teaching day.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

var weekdayOrdinals = map[Weekday]int{
	Monday:    1,
	Tuesday:   2,
	Wednesday: 3,
	Thursday:  4,
	Friday:    5,
	Saturday:  6,
	Sunday:    7,
}

// Ordinal returns 1 for Monday through 7 for Sunday, 0 for unknown values.
func (d Weekday) Ordinal() int {
	return weekdayOrdinals[d]
}

// Valid reports whether d is one of the seven weekday names.
func (d Weekday) Valid() bool {
	return d.Ordinal() > 0
}

// ParseWeekday matches a day name case-insensitively, accepting three letter prefixes.
func ParseWeekday(raw string) (Weekday, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if len(value) >= 3 {
		for day := range weekdayOrdinals {
			name := strings.ToLower(string(day))
			if value == name || (len(value) == 3 && strings.HasPrefix(name, value)) {
				return day, nil
			}
		}
	}
	return "", fmt.Errorf("unknown weekday %q", raw)
}

// SlotType categorises a time slot.
type SlotType string

const (
	SlotTypeLecture  SlotType = "Lecture"
	SlotTypeLab      SlotType = "Lab"
	SlotTypeTutorial SlotType = "Tutorial"
	SlotTypeBreak    SlotType = "Break"
)

// Valid reports whether t is a known slot type.
func (t SlotType) Valid() bool {
	switch t {
	case SlotTypeLecture, SlotTypeLab, SlotTypeTutorial, SlotTypeBreak:
		return true
	}
	return false
}

const (
	MinSlotDuration = 30
	MaxSlotDuration = 180
)

// TimeSlot is a bookable (day, start, end) window.
type TimeSlot struct {
	ID        string    `db:"id" json:"id" csv:"-"`
	Day       Weekday   `db:"day" json:"day" csv:"day"`
	StartTime string    `db:"start_time" json:"start_time" csv:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time" csv:"end_time"`
	Duration  int       `db:"duration" json:"duration" csv:"duration"`
	SlotType  SlotType  `db:"slot_type" json:"slot_type" csv:"slot_type"`
	IsActive  bool      `db:"is_active" json:"is_active" csv:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at" csv:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at" csv:"-"`
}

// Validate normalises the clock strings and checks the window is coherent.
func (s *TimeSlot) Validate() error {
	if !s.Day.Valid() {
		return fmt.Errorf("invalid day %q", s.Day)
	}
	if s.SlotType == "" {
		s.SlotType = SlotTypeLecture
	}
	if !s.SlotType.Valid() {
		return fmt.Errorf("invalid slot type %q", s.SlotType)
	}
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	if end <= start {
		return fmt.Errorf("end time must be after start time")
	}
	if s.Duration == 0 {
		s.Duration = end - start
	}
	if s.Duration < MinSlotDuration || s.Duration > MaxSlotDuration {
		return fmt.Errorf("duration must be between %d and %d minutes", MinSlotDuration, MaxSlotDuration)
	}
	if s.Duration != end-start {
		return fmt.Errorf("duration %d does not match %s-%s", s.Duration, s.StartTime, s.EndTime)
	}
	s.StartTime = FormatClock(start)
	s.EndTime = FormatClock(end)
	return nil
}

// StartMinutes returns the start time as minutes after midnight, or -1 when unparsable.
func (s TimeSlot) StartMinutes() int {
	m, err := ParseClock(s.StartTime)
	if err != nil {
		return -1
	}
	return m
}

// Label renders "Monday 09:00-10:00".
func (s TimeSlot) Label() string {
	return fmt.Sprintf("%s %s-%s", s.Day, s.StartTime, s.EndTime)
}

// ParseClock converts "HH:MM" or "H:MM" into minutes after midnight.
func ParseClock(raw string) (int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 || len(parts[1]) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 {
		return 0, fmt.Errorf("invalid clock %q", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid clock %q", raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid clock %q", raw)
	}
	return hours*60 + minutes, nil
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
