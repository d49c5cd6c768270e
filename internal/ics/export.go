package ics

import (
	"fmt"
	"io"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"schedcal/internal/activity"
	appLog "schedcal/internal/log"
)

// Term anchors the weekly schedule to real dates for export.
type Term struct {
	// Start is the first day of the term; only its date is used.
	Start time.Time
	// Weeks is how long recurrences run.
	Weeks int
}

// End returns the last instant recurrences may start at.
func (t Term) End() time.Time {
	weeks := t.Weeks
	if weeks <= 0 {
		weeks = 1
	}
	start := clockOn(t.Start, 0)
	return start.AddDate(0, 0, 7*weeks).Add(-time.Second)
}

// WriteCalendar serializes activities as an iCalendar feed. Each activity
// with a fixed meeting becomes one weekly recurring VEVENT; arranged courses
// are skipped.
//
//   - DTSTART/DTEND fall on the first meeting day on or after term start and
//     carry the term's zone, so BYDAY matches the local meeting days.
//   - RRULE is FREQ=WEEKLY with BYDAY from the day codes and UNTIL term end.
//   - UID is derived from the activity identity, stable across exports.
func WriteCalendar(w io.Writer, title string, activities []activity.Activity, term Term, now time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//schedcal//weekly schedule//EN")
	cal.SetXWRCalName(title)

	until := term.End()
	skipped := 0

	for _, a := range activities {
		m := a.Meeting()
		if m.IsArranged() {
			skipped++
			continue
		}

		r, err := weeklyRule(m, term.Start, until)
		if err != nil {
			return fmt.Errorf("ics export %q: %w", a.Title(), err)
		}
		first := r.After(clockOn(term.Start, m.Start), true)
		if first.IsZero() {
			skipped++
			continue
		}

		ev := cal.AddEvent(uidFor(a))
		ev.SetDtStampTime(now)
		setMeetingTime(ev, ical.ComponentPropertyDtStart, first)
		setMeetingTime(ev, ical.ComponentPropertyDtEnd, first.Add(meetingDuration(m)))
		ev.SetSummary(summaryFor(a))
		if desc := descriptionFor(a); desc != "" {
			ev.SetDescription(desc)
		}

		// Dtstart is left out so String() yields only the RRULE value.
		recur := rrule.ROption{
			Freq:      rrule.WEEKLY,
			Byweekday: weekdays(m.Days),
			Until:     until,
		}
		ev.SetProperty(ical.ComponentPropertyRrule, recur.String())
	}

	appLog.Debug("ics export built", "activities", len(activities), "skipped", skipped)
	return cal.SerializeTo(w)
}

const (
	icalUTCLayout   = "20060102T150405Z"
	icalLocalLayout = "20060102T150405"
)

// setMeetingTime writes t in its own zone: UTC as a Z time, time.Local as a
// floating time, and any other zone with a TZID parameter.
func setMeetingTime(ev *ical.VEvent, prop ical.ComponentProperty, t time.Time) {
	loc := t.Location()
	switch {
	case loc == time.UTC || loc.String() == "UTC":
		ev.SetProperty(prop, t.UTC().Format(icalUTCLayout))
	case loc == time.Local:
		ev.SetProperty(prop, t.Format(icalLocalLayout))
	default:
		ev.SetProperty(prop, t.Format(icalLocalLayout), ical.WithTZID(loc.String()))
	}
}

func summaryFor(a activity.Activity) string {
	if c, ok := a.(*activity.Course); ok {
		return c.Name() + "-" + c.Section() + " " + c.Title()
	}
	return a.Title()
}

func descriptionFor(a activity.Activity) string {
	switch v := a.(type) {
	case *activity.Course:
		return "Instructor: " + v.InstructorID() + ", credits: " + strconv.Itoa(v.Credits())
	case *activity.Event:
		return v.Details()
	}
	return ""
}
