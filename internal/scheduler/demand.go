package scheduler

import (
	"sort"

	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

// SessionLength returns the number of hours one session of subject covers.
func SessionLength(subject models.Subject) int {
	if subject.IsLab {
		return 2
	}
	return 1
}

// SessionsNeeded returns how many weekly sessions a subject demands. It is
// never below one, so a zero hour registration still gets a session.
func SessionsNeeded(subject models.Subject) int {
	length := SessionLength(subject)
	sessions := (subject.HoursPerWeek + length - 1) / length
	if sessions < 1 {
		return 1
	}
	return sessions
}

// processingOrder returns a copy of regs sorted by priority, highest first.
// Equal priorities keep their input order.
func processingOrder(regs []models.Registration) []models.Registration {
	ordered := make([]models.Registration, len(regs))
	copy(ordered, regs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})
	return ordered
}
