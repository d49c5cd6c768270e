package ics

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"schedcal/internal/activity"
)

// weekdayCodes maps rrule weekday indexes (0 = Monday) to day codes.
const weekdayCodes = "MTWHFSU"

var ruleWeekdays = []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

// uidNamespace seeds deterministic UIDs so re-exports keep the same VEVENT
// identity.
var uidNamespace = uuid.MustParse("6f1c1c84-7a4e-4c61-9d55-1f7a3f0a8c21")

var errArranged = errors.New("arranged activity has no weekly pattern")

// weekdays converts day codes to rrule weekdays.
func weekdays(days string) []rrule.Weekday {
	out := make([]rrule.Weekday, 0, len(days))
	for _, r := range days {
		if i := strings.IndexRune(weekdayCodes, r); i >= 0 {
			out = append(out, ruleWeekdays[i])
		}
	}
	return out
}

// dayCodes converts rrule weekdays back to day codes in Monday-first order.
func dayCodes(wds []rrule.Weekday) string {
	var seen [7]bool
	for _, wd := range wds {
		if d := wd.Day(); d >= 0 && d < len(seen) {
			seen[d] = true
		}
	}
	var b strings.Builder
	for i, ok := range seen {
		if ok {
			b.WriteByte(weekdayCodes[i])
		}
	}
	return b.String()
}

// goWeekdayCode maps a time.Weekday to its day code.
func goWeekdayCode(wd time.Weekday) string {
	return string(weekdayCodes[(int(wd)+6)%7])
}

// clockOn returns the military time t placed on date's calendar day.
func clockOn(date time.Time, military int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), military/100, military%100, 0, 0, date.Location())
}

// weeklyRule builds the recurrence of an activity's meeting starting at
// anchor (a date; time of day is taken from the meeting).
func weeklyRule(m activity.Meeting, anchor, until time.Time) (*rrule.RRule, error) {
	if m.IsArranged() {
		return nil, errArranged
	}
	return rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: weekdays(m.Days),
		Dtstart:   clockOn(anchor, m.Start),
		Until:     until,
	})
}

// meetingDuration is the length of one meeting.
func meetingDuration(m activity.Meeting) time.Duration {
	minutes := func(t int) int { return t/100*60 + t%100 }
	return time.Duration(minutes(m.End)-minutes(m.Start)) * time.Minute
}

// identity returns a stable key for an activity: name+section for courses,
// title for events.
func identity(a activity.Activity) string {
	if c, ok := a.(*activity.Course); ok {
		return "course:" + c.Name() + ":" + c.Section()
	}
	return "event:" + a.Title()
}

func uidFor(a activity.Activity) string {
	return uuid.NewSHA1(uidNamespace, []byte(identity(a))).String()
}
