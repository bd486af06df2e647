package scheduler

import (
	"sort"

	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

// SortTimeSlots orders slots Monday first, then by start time. The sort is stable.
func SortTimeSlots(slots []models.TimeSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.Day.Ordinal() != b.Day.Ordinal() {
			return a.Day.Ordinal() < b.Day.Ordinal()
		}
		return a.StartMinutes() < b.StartMinutes()
	})
}

type catalogue struct {
	slots []models.TimeSlot
	byID  map[string]models.TimeSlot
	rooms []models.Room
	labs  []models.Lab
}

func newCatalogue(slots []models.TimeSlot, rooms []models.Room, labs []models.Lab) *catalogue {
	sorted := make([]models.TimeSlot, len(slots))
	copy(sorted, slots)
	SortTimeSlots(sorted)

	byID := make(map[string]models.TimeSlot, len(sorted))
	for _, slot := range sorted {
		byID[slot.ID] = slot
	}
	return &catalogue{slots: sorted, byID: byID, rooms: rooms, labs: labs}
}

// candidates resolves the registration's requested slots. Unknown IDs are
// skipped and an empty request means every catalogue slot.
func (c *catalogue) candidates(reg models.Registration) []models.TimeSlot {
	if len(reg.TimeSlotIDs) == 0 {
		out := make([]models.TimeSlot, len(c.slots))
		copy(out, c.slots)
		return out
	}
	out := make([]models.TimeSlot, 0, len(reg.TimeSlotIDs))
	seen := make(map[string]bool, len(reg.TimeSlotIDs))
	for _, id := range reg.TimeSlotIDs {
		slot, ok := c.byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, slot)
	}
	return out
}

func (c *catalogue) lectureSlots() []models.TimeSlot {
	var out []models.TimeSlot
	for _, slot := range c.slots {
		if slot.SlotType == models.SlotTypeLecture {
			out = append(out, slot)
		}
	}
	return out
}
