package ics

import (
	"fmt"
	"time"

	appLog "schedcal/internal/log"
)

// EventAdder is the part of the scheduler an import needs.
type EventAdder interface {
	AddEvent(title, days string, start, end int, details string) error
}

// ImportResult reports what an import did.
type ImportResult struct {
	Added  []string
	Failed []ImportFailure
}

// ImportFailure describes one VEVENT that could not be added.
type ImportFailure struct {
	Title string
	Err   error
}

// Import parses body and adds each event through dst. Individual failures
// (unparsable VEVENTs, validation errors, duplicates, conflicts) are
// collected; they do not stop the import.
func Import(dst EventAdder, body []byte, loc *time.Location) ImportResult {
	var res ImportResult

	events, parseErrs := ParseICS(body, loc)
	for _, err := range parseErrs {
		res.Failed = append(res.Failed, ImportFailure{Err: err})
	}

	for _, ev := range events {
		if err := dst.AddEvent(ev.Title, ev.Days, ev.Start, ev.End, ev.Details); err != nil {
			res.Failed = append(res.Failed, ImportFailure{Title: ev.Title, Err: fmt.Errorf("%s: %w", ev.Title, err)})
			continue
		}
		res.Added = append(res.Added, ev.Title)
	}

	appLog.Info("ics import finished", "added", len(res.Added), "failed", len(res.Failed))
	return res
}
