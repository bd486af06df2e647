package scheduler

import (
	"errors"

	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

// ErrEmptyCatalogue is returned when there is demand to place but no time slots.
var ErrEmptyCatalogue = errors.New("no time slots available to place registrations")

// Stats summarises one run.
type Stats struct {
	Registrations     int `json:"registrations"`
	SessionsRequested int `json:"sessions_requested"`
	SessionsPlaced    int `json:"sessions_placed"`
	GapFilled         int `json:"gap_filled"`
	Abandoned         int `json:"abandoned"`
}

// Result is the outcome of Generate. Schedule entries and conflicts carry
// their output position but no IDs; persistence assigns those.
type Result struct {
	Schedule  []models.ScheduleEntry
	Conflicts []models.ConflictRecord
	Stats     Stats
}

// ConflictCounts tallies conflicts by type.
func (r *Result) ConflictCounts() map[models.ConflictType]int {
	counts := make(map[models.ConflictType]int)
	for _, c := range r.Conflicts {
		counts[c.Type]++
	}
	return counts
}

// Generate places the demand of registrations onto the catalogue. The inputs
// are expected to be Approved registrations and active catalogue entries;
// slots are sorted here so the caller's order does not matter.
func Generate(registrations []models.Registration, timeSlots []models.TimeSlot, rooms []models.Room, labs []models.Lab) (*Result, error) {
	if len(registrations) > 0 && len(timeSlots) == 0 {
		return nil, ErrEmptyCatalogue
	}

	r := &run{
		state: NewTrackingState(),
		cat:   newCatalogue(timeSlots, rooms, labs),
		log:   &conflictLog{},
	}

	ordered := processingOrder(registrations)
	for _, reg := range ordered {
		r.placeRegistration(reg)
	}
	r.fillGaps(ordered)

	r.stats.Registrations = len(registrations)
	return &Result{Schedule: r.schedule, Conflicts: r.log.records, Stats: r.stats}, nil
}

type run struct {
	state    *TrackingState
	cat      *catalogue
	log      *conflictLog
	schedule []models.ScheduleEntry
	stats    Stats
}

func (r *run) placeRegistration(reg models.Registration) {
	needed := SessionsNeeded(reg.Subject)
	r.stats.SessionsRequested += needed
	for placed := 0; placed < needed; placed++ {
		if !r.placeSession(reg) {
			r.stats.Abandoned += needed - placed
			return
		}
		r.stats.SessionsPlaced++
	}
}

// placeSession tries a clean placement, then a degraded one, and reports
// false when the registration has to give up its remaining sessions.
func (r *run) placeSession(reg models.Registration) bool {
	candidates := selectSlots(r.state, r.cat, reg)
	if len(candidates) == 0 {
		slot, ok := fallbackSlot(r.state, r.cat, reg)
		if !ok {
			r.log.record(models.ConflictNoAvailability, noSlotsDescription(reg), reg)
			return false
		}
		candidates = []models.TimeSlot{slot}
	}

	var p placement
	if reg.Subject.IsLab {
		p = assignLab(r.state, r.cat, reg, candidates)
	} else {
		p = assignRoom(r.state, r.cat, reg, candidates[0])
	}
	if p.Conflict != nil {
		r.log.record(p.Conflict.Type, p.Conflict.Description, reg)
	}
	r.commit(reg, p)
	return true
}

func (r *run) commit(reg models.Registration, p placement) {
	r.state.commit(commitment{
		SectionID: reg.SectionID,
		TeacherID: reg.TeacherID,
		Slot:      p.Slot,
		RoomID:    p.RoomID,
		LabID:     p.LabID,
		Library:   reg.Subject.IsLibrary(),
	})
	r.schedule = append(r.schedule, models.ScheduleEntry{
		Position:   len(r.schedule),
		Day:        p.Slot.Day,
		TimeSlotID: p.Slot.ID,
		SectionID:  reg.SectionID,
		Subject:    reg.Subject,
		TeacherID:  reg.TeacherID,
		RoomID:     p.RoomID,
		LabID:      p.LabID,
	})
}
