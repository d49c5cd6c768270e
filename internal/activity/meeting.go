package activity

import (
	"fmt"
	"strconv"
	"strings"
)

// Day codes used in meeting patterns.
const (
	Monday    = 'M'
	Tuesday   = 'T'
	Wednesday = 'W'
	Thursday  = 'H'
	Friday    = 'F'
	Saturday  = 'S'
	Sunday    = 'U'
)

// Arranged is the day pattern meaning "no fixed day or time". It is only
// valid with Start == End == 0.
const Arranged = "A"

// Day alphabets accepted by each variant.
const (
	CourseDays = "MTWHF"
	EventDays  = "MTWHFSU"
)

// allDays fixes the bit position of every day code.
const allDays = "MTWHFSU"

const (
	hoursPerDay    = 24
	minutesPerHour = 60
	militaryDiv    = 100
	noon           = 12
)

// Meeting is a weekly day pattern plus a start/end time of day in military
// format (hour*100 + minute).
type Meeting struct {
	Days  string
	Start int
	End   int
}

// IsArranged reports whether the meeting has no fixed day or time.
func (m Meeting) IsArranged() bool {
	return m.Days == Arranged
}

// String returns the human-readable form, e.g. "MW 1:30PM-2:45PM".
func (m Meeting) String() string {
	return FormatMeeting(m.Days, m.Start, m.End)
}

// ValidateMeeting checks a day pattern and time pair against the given day
// alphabet. When allowArranged is set the Arranged sentinel is accepted on
// its own with zero times.
func ValidateMeeting(days string, start, end int, alphabet string, allowArranged bool) error {
	if end < start {
		return fmt.Errorf("%w: end %d before start %d", ErrInvalidMeeting, end, start)
	}
	if !validMilitary(start) || !validMilitary(end) {
		return fmt.Errorf("%w: time out of range %d-%d", ErrInvalidMeeting, start, end)
	}
	if days == "" {
		return fmt.Errorf("%w: empty days", ErrInvalidMeeting)
	}

	if days == Arranged {
		if !allowArranged {
			return fmt.Errorf("%w: arranged not allowed", ErrInvalidMeeting)
		}
		if start != 0 || end != 0 {
			return fmt.Errorf("%w: arranged with times %d-%d", ErrInvalidMeeting, start, end)
		}
		return nil
	}

	var seen uint8
	for _, r := range days {
		idx := strings.IndexRune(alphabet, r)
		if idx < 0 {
			return fmt.Errorf("%w: day %q not allowed", ErrInvalidMeeting, r)
		}
		bit := dayBit(r)
		if seen&bit != 0 {
			return fmt.Errorf("%w: day %q repeated", ErrInvalidMeeting, r)
		}
		seen |= bit
	}
	return nil
}

// FormatMeeting renders a meeting in 12-hour wall-clock form.
// Arranged meetings render as "Arranged".
func FormatMeeting(days string, start, end int) string {
	if days == Arranged {
		return "Arranged"
	}
	return days + " " + formatClock(start) + "-" + formatClock(end)
}

// parseDayToken returns the day codes at the front of a formatted meeting
// string. "Arranged" yields "".
func parseDayToken(formatted string) string {
	token, _, _ := strings.Cut(formatted, " ")
	var b strings.Builder
	for _, r := range token {
		if dayBit(r) != 0 {
			b.WriteRune(r)
		}
	}
	if b.Len() != len(token) {
		return ""
	}
	return b.String()
}

func formatClock(t int) string {
	hour := t / militaryDiv
	minute := t % militaryDiv

	suffix := "AM"
	switch {
	case hour == 0:
		hour = noon
	case hour == noon:
		suffix = "PM"
	case hour > noon:
		hour -= noon
		suffix = "PM"
	}

	mm := strconv.Itoa(minute)
	if minute < 10 {
		mm = "0" + mm
	}
	return strconv.Itoa(hour) + ":" + mm + suffix
}

func validMilitary(t int) bool {
	hour := t / militaryDiv
	minute := t % militaryDiv
	return hour >= 0 && hour < hoursPerDay && minute >= 0 && minute < minutesPerHour
}

func dayBit(r rune) uint8 {
	idx := strings.IndexRune(allDays, r)
	if idx < 0 {
		return 0
	}
	return 1 << idx
}

// dayMask returns the set of days the meeting occupies. Arranged meetings
// occupy none.
func (m Meeting) dayMask() uint8 {
	if m.IsArranged() {
		return 0
	}
	var mask uint8
	for _, r := range m.Days {
		mask |= dayBit(r)
	}
	return mask
}

// SharesDay reports whether both meetings fall on at least one common day.
func (m Meeting) SharesDay(o Meeting) bool {
	return m.dayMask()&o.dayMask() != 0
}

// Overlaps reports whether the meetings share a day and their time
// intervals touch or intersect. Boundaries are inclusive.
func (m Meeting) Overlaps(o Meeting) bool {
	if !m.SharesDay(o) {
		return false
	}
	if m.Start <= o.Start && m.End >= o.Start {
		return true
	}
	return m.Start >= o.Start && m.Start <= o.End
}
