// Package scheduler assigns weekly class sessions to time slots, rooms and labs.
//
// Generate is a greedy, single pass placement over registrations ordered by
// descending priority, followed by a gap filling pass over lecture slots.
// It never fails for contention: every compromise is returned as a
// ConflictRecord next to the schedule. All bookkeeping lives in a
// TrackingState owned by a single call, so concurrent calls are independent.
package scheduler
