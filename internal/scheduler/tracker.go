package scheduler

import "github.com/noah-isme/timetable-scheduler-api/internal/models"

type usageKey struct {
	Owner string
	Slot  string
}

type dayKey struct {
	Section string
	Day     models.Weekday
}

// TrackingState records every commitment made during one generation run.
// Entries are only ever added.
type TrackingState struct {
	sectionSlots map[usageKey]bool
	teacherSlots map[usageKey]bool
	roomSlots    map[usageKey]bool
	labSlots     map[usageKey]bool
	dayLoad      map[dayKey]int
	libraryDays  map[dayKey]bool
}

// NewTrackingState returns an empty state.
func NewTrackingState() *TrackingState {
	return &TrackingState{
		sectionSlots: make(map[usageKey]bool),
		teacherSlots: make(map[usageKey]bool),
		roomSlots:    make(map[usageKey]bool),
		labSlots:     make(map[usageKey]bool),
		dayLoad:      make(map[dayKey]int),
		libraryDays:  make(map[dayKey]bool),
	}
}

// SectionBusy reports whether the section already holds a session at the slot.
func (t *TrackingState) SectionBusy(sectionID, slotID string) bool {
	return t.sectionSlots[usageKey{Owner: sectionID, Slot: slotID}]
}

// TeacherBusy reports whether the teacher already teaches at the slot.
func (t *TrackingState) TeacherBusy(teacherID, slotID string) bool {
	return t.teacherSlots[usageKey{Owner: teacherID, Slot: slotID}]
}

// RoomBusy reports whether the room is taken at the slot.
func (t *TrackingState) RoomBusy(roomID, slotID string) bool {
	return t.roomSlots[usageKey{Owner: roomID, Slot: slotID}]
}

// LabBusy reports whether the lab is taken at the slot.
func (t *TrackingState) LabBusy(labID, slotID string) bool {
	return t.labSlots[usageKey{Owner: labID, Slot: slotID}]
}

// DayLoad returns how many sessions the section has on day so far.
func (t *TrackingState) DayLoad(sectionID string, day models.Weekday) int {
	return t.dayLoad[dayKey{Section: sectionID, Day: day}]
}

// LibraryUsed reports whether the section already has its library period on day.
func (t *TrackingState) LibraryUsed(sectionID string, day models.Weekday) bool {
	return t.libraryDays[dayKey{Section: sectionID, Day: day}]
}

type commitment struct {
	SectionID string
	TeacherID string
	Slot      models.TimeSlot
	RoomID    *string
	LabID     *string
	Library   bool
}

// commit marks the section, teacher and any room or lab as used at the slot.
func (t *TrackingState) commit(c commitment) {
	t.sectionSlots[usageKey{Owner: c.SectionID, Slot: c.Slot.ID}] = true
	t.teacherSlots[usageKey{Owner: c.TeacherID, Slot: c.Slot.ID}] = true
	if c.RoomID != nil {
		t.roomSlots[usageKey{Owner: *c.RoomID, Slot: c.Slot.ID}] = true
	}
	if c.LabID != nil {
		t.labSlots[usageKey{Owner: *c.LabID, Slot: c.Slot.ID}] = true
	}
	day := dayKey{Section: c.SectionID, Day: c.Slot.Day}
	t.dayLoad[day]++
	if c.Library {
		t.libraryDays[day] = true
	}
}
