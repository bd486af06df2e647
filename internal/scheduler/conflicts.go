package scheduler

import (
	"fmt"

	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

// conflictLog is append only; records keep their discovery order.
type conflictLog struct {
	records []models.ConflictRecord
}

func (l *conflictLog) record(kind models.ConflictType, description string, regs ...models.Registration) {
	affected := make([]string, 0, len(regs))
	for _, reg := range regs {
		affected = append(affected, reg.ID)
	}
	l.records = append(l.records, models.ConflictRecord{
		Position:      len(l.records),
		Type:          kind,
		Description:   description,
		AffectedItems: affected,
	})
}

func sectionLabel(reg models.Registration) string {
	if reg.SectionName != "" {
		return reg.SectionName
	}
	return reg.SectionID
}

func noSlotsDescription(reg models.Registration) string {
	return fmt.Sprintf("No available time slots (even after fallback) for %s - %s", reg.Subject.Name, sectionLabel(reg))
}

func forcedLabDescription(reg models.Registration) string {
	return fmt.Sprintf("Forced placement with potentially overlapping lab for %s - %s", reg.Subject.Name, sectionLabel(reg))
}

func noLabsDescription(reg models.Registration, slot models.TimeSlot) string {
	return fmt.Sprintf("No labs defined; placed %s - %s without lab in %s", reg.Subject.Name, sectionLabel(reg), slot.Label())
}

func noRoomDescription(reg models.Registration, slot models.TimeSlot) string {
	return fmt.Sprintf("No free room; placed %s - %s without room in %s", reg.Subject.Name, sectionLabel(reg), slot.Label())
}

func gapNoRoomDescription(reg models.Registration, slot models.TimeSlot) string {
	return fmt.Sprintf("Forced placement without free room for %s - %s in %s", reg.Subject.Name, sectionLabel(reg), slot.Label())
}
