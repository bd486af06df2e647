package scheduler

import (
	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

type placement struct {
	Slot     models.TimeSlot
	RoomID   *string
	LabID    *string
	Conflict *pendingConflict
}

type pendingConflict struct {
	Type        models.ConflictType
	Description string
}

// assignLab takes the first ranked slot with a free lab. Without one the
// session is forced onto the first candidate with the first catalogue lab.
func assignLab(state *TrackingState, cat *catalogue, reg models.Registration, candidates []models.TimeSlot) placement {
	for _, slot := range candidates {
		if lab := freeLab(state, cat.labs, slot.ID); lab != nil {
			return placement{Slot: slot, LabID: stringPtr(lab.ID)}
		}
	}

	slot := candidates[0]
	if len(cat.labs) == 0 {
		return placement{
			Slot:     slot,
			Conflict: &pendingConflict{Type: models.ConflictLab, Description: noLabsDescription(reg, slot)},
		}
	}
	return placement{
		Slot:     slot,
		LabID:    stringPtr(cat.labs[0].ID),
		Conflict: &pendingConflict{Type: models.ConflictLab, Description: forcedLabDescription(reg)},
	}
}

// assignRoom places a lecture on slot, with a free room when one exists.
func assignRoom(state *TrackingState, cat *catalogue, reg models.Registration, slot models.TimeSlot) placement {
	if room := freeRoom(state, cat.rooms, slot.ID); room != nil {
		return placement{Slot: slot, RoomID: stringPtr(room.ID)}
	}
	return placement{
		Slot:     slot,
		Conflict: &pendingConflict{Type: models.ConflictRoom, Description: noRoomDescription(reg, slot)},
	}
}

// Capacity is carried on rooms and labs but not compared with section strength.
func freeRoom(state *TrackingState, rooms []models.Room, slotID string) *models.Room {
	for i := range rooms {
		if !state.RoomBusy(rooms[i].ID, slotID) {
			return &rooms[i]
		}
	}
	return nil
}

func freeLab(state *TrackingState, labs []models.Lab, slotID string) *models.Lab {
	for i := range labs {
		if !state.LabBusy(labs[i].ID, slotID) {
			return &labs[i]
		}
	}
	return nil
}

func stringPtr(v string) *string {
	return &v
}
