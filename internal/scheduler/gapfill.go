package scheduler

import "github.com/noah-isme/timetable-scheduler-api/internal/models"

// fillGaps walks every section's empty lecture slots and repeats the
// section's lecture registrations round-robin. A slot is left empty when no
// registration's teacher is free there or the library rule would be broken.
func (r *run) fillGaps(ordered []models.Registration) {
	var sections []string
	bySection := make(map[string][]models.Registration)
	for _, reg := range ordered {
		if reg.Subject.IsLab {
			continue
		}
		if _, ok := bySection[reg.SectionID]; !ok {
			sections = append(sections, reg.SectionID)
		}
		bySection[reg.SectionID] = append(bySection[reg.SectionID], reg)
	}

	lectures := r.cat.lectureSlots()
	for _, sectionID := range sections {
		regs := bySection[sectionID]
		next := 0
		for _, slot := range lectures {
			if r.state.SectionBusy(sectionID, slot.ID) {
				continue
			}
			idx, ok := r.nextGapRegistration(regs, next, slot)
			if !ok {
				continue
			}
			next = idx + 1
			r.placeGap(regs[idx], slot)
		}
	}
}

// nextGapRegistration returns the first registration at or after start, in
// round-robin order, that may take slot.
func (r *run) nextGapRegistration(regs []models.Registration, start int, slot models.TimeSlot) (int, bool) {
	for i := 0; i < len(regs); i++ {
		idx := (start + i) % len(regs)
		if allowed(r.state, regs[idx], slot) {
			return idx, true
		}
	}
	return 0, false
}

func (r *run) placeGap(reg models.Registration, slot models.TimeSlot) {
	p := placement{Slot: slot}
	if room := freeRoom(r.state, r.cat.rooms, slot.ID); room != nil {
		p.RoomID = stringPtr(room.ID)
	} else {
		r.log.record(models.ConflictRoom, gapNoRoomDescription(reg, slot), reg)
	}
	r.commit(reg, p)
	r.stats.GapFilled++
}
