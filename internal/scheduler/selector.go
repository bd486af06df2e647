package scheduler

import (
	"sort"

	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

// allowed reports whether reg may take slot: the section and teacher are both
// free and a library subject is not repeated on the same day.
func allowed(state *TrackingState, reg models.Registration, slot models.TimeSlot) bool {
	if state.SectionBusy(reg.SectionID, slot.ID) {
		return false
	}
	if state.TeacherBusy(reg.TeacherID, slot.ID) {
		return false
	}
	if reg.Subject.IsLibrary() && state.LibraryUsed(reg.SectionID, slot.Day) {
		return false
	}
	return true
}

// selectSlots filters the registration's candidates and ranks the survivors
// by the section's load on that day, then start time.
func selectSlots(state *TrackingState, cat *catalogue, reg models.Registration) []models.TimeSlot {
	candidates := cat.candidates(reg)
	ranked := candidates[:0]
	for _, slot := range candidates {
		if allowed(state, reg, slot) {
			ranked = append(ranked, slot)
		}
	}
	rankSlots(state, reg.SectionID, ranked)
	return ranked
}

func rankSlots(state *TrackingState, sectionID string, slots []models.TimeSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		loadI := state.DayLoad(sectionID, slots[i].Day)
		loadJ := state.DayLoad(sectionID, slots[j].Day)
		if loadI != loadJ {
			return loadI < loadJ
		}
		return slots[i].StartMinutes() < slots[j].StartMinutes()
	})
}

// fallbackSlot widens the search to the whole catalogue and returns the
// earliest slot the registration is still allowed to take.
func fallbackSlot(state *TrackingState, cat *catalogue, reg models.Registration) (models.TimeSlot, bool) {
	for _, slot := range cat.slots {
		if allowed(state, reg, slot) {
			return slot, true
		}
	}
	return models.TimeSlot{}, false
}
