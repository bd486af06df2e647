package models

import "strings"

// Subject is the value copied into registrations and schedule entries.
type Subject struct {
	Name         string `db:"subject_name" json:"name"`
	Code         string `db:"subject_code" json:"code"`
	Credits      int    `db:"credits" json:"credits"`
	HoursPerWeek int    `db:"hours_per_week" json:"hours_per_week"`
	IsLab        bool   `db:"is_lab" json:"is_lab"`
}

// IsLibrary reports whether the subject is the library period. Only the exact
// name matches, ignoring case and surrounding space.
func (s Subject) IsLibrary() bool {
	return strings.EqualFold(strings.TrimSpace(s.Name), "library")
}
