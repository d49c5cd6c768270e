package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	appLog "schedcal/internal/log"
)

// ParsedEvent is a VEVENT reduced to the weekly pattern an event needs.
type ParsedEvent struct {
	UID     string
	Title   string
	Details string
	Days    string
	Start   int // military time
	End     int // military time
}

// ParseICS parses an iCalendar payload into weekly events.
//
//   - DTSTART/DTEND are converted into loc and reduced to time of day.
//   - Days come from the RRULE BYDAY list, or from the DTSTART weekday when
//     the event does not recur or the rule has no BYDAY.
//   - A VEVENT that cannot be reduced is logged and skipped; the returned
//     error slice lists why.
func ParseICS(body []byte, loc *time.Location) ([]ParsedEvent, []error) {
	if len(body) == 0 {
		return nil, []error{errors.New("empty ICS body")}
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, []error{err}
	}

	events := make([]ParsedEvent, 0)
	errs := make([]error, 0)

	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(comp, loc)
		if perr != nil {
			appLog.Error("ics vevent skipped", perr, "uid", ev.UID)
			errs = append(errs, perr)
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "event_count", len(events), "skipped", len(errs))
	return events, errs
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (ParsedEvent, error) {
	var out ParsedEvent

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.UID = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = strings.TrimSpace(p.Value)
	}
	if out.Title == "" {
		return out, errors.New("missing SUMMARY")
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Details = p.Value
	}

	if dt := ve.GetProperty(ical.ComponentPropertyDtStart); dt != nil && !strings.Contains(dt.Value, "T") {
		return out, fmt.Errorf("%s: all-day events have no meeting time", out.Title)
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("%s: DTSTART: %w", out.Title, err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return out, fmt.Errorf("%s: DTEND: %w", out.Title, err)
	}
	start = start.In(loc)
	end = end.In(loc)

	out.Start = start.Hour()*100 + start.Minute()
	out.End = end.Hour()*100 + end.Minute()

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil && p.Value != "" {
		opt, rerr := rrule.StrToROption(p.Value)
		if rerr != nil {
			return out, fmt.Errorf("%s: RRULE: %w", out.Title, rerr)
		}
		if opt.Freq != rrule.WEEKLY {
			return out, fmt.Errorf("%s: only weekly recurrences are supported", out.Title)
		}
		out.Days = dayCodes(opt.Byweekday)
	}
	if out.Days == "" {
		out.Days = goWeekdayCode(start.Weekday())
	}

	return out, nil
}
