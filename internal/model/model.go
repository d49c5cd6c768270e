package model

import "time"

// Occurrence represents a single concrete meeting of a scheduled activity,
// produced by anchoring the weekly pattern to real dates.
type Occurrence struct {
	Kind  string // "course" or "event"
	Title string

	// Course identity; empty for events.
	Name    string
	Section string

	Details string

	// InstanceKey uniquely identifies the occurrence, derived from the
	// activity identity and the local start time.
	InstanceKey string

	// Start / End are in the configured display timezone.
	Start time.Time
	End   time.Time
}
