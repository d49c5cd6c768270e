package activity

import "errors"

// Validation errors. Constructors and setters return these (possibly wrapped);
// match with errors.Is.
var (
	ErrInvalidTitle        = errors.New("invalid title")
	ErrInvalidMeeting      = errors.New("invalid meeting days and times")
	ErrInvalidCourseName   = errors.New("invalid course name")
	ErrInvalidSection      = errors.New("invalid section")
	ErrInvalidCredits      = errors.New("invalid credits")
	ErrInvalidInstructorID = errors.New("invalid instructor id")
)

// ErrConflict is returned by CheckConflict when two activities meet on a
// shared day with overlapping times.
var ErrConflict = errors.New("schedule conflict")
