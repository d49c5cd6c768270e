package ics

import (
	"errors"
	"sort"
	"time"

	"schedcal/internal/activity"
	appLog "schedcal/internal/log"
	"schedcal/internal/model"
)

const (
	defaultMaxOccurrencesPerActivity = 500
)

// ExpandConfig controls how the weekly schedule is expanded into dated
// occurrences.
type ExpandConfig struct {
	// DisplayLocation is the timezone occurrences are placed in. If nil,
	// time.Local is used.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd define the inclusive time window for occurrences.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerActivity is a safety cap. If zero,
	// defaultMaxOccurrencesPerActivity is used.
	MaxOccurrencesPerActivity int
}

// ExpandResult wraps the expanded occurrences and any truncation.
type ExpandResult struct {
	Occurrences []model.Occurrence
	// Truncated lists activity titles that hit MaxOccurrencesPerActivity.
	Truncated []string
}

// ExpandOccurrences places every scheduled activity's weekly meetings within
// [RangeStart, RangeEnd]. Arranged activities produce nothing. Occurrences
// are sorted by start time, ties keeping schedule order.
func ExpandOccurrences(activities []activity.Activity, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerActivity <= 0 {
		cfg.MaxOccurrencesPerActivity = defaultMaxOccurrencesPerActivity
	}

	rangeStart := cfg.RangeStart.In(cfg.DisplayLocation)
	rangeEnd := cfg.RangeEnd.In(cfg.DisplayLocation)

	all := make([]model.Occurrence, 0)
	for _, a := range activities {
		m := a.Meeting()
		if m.IsArranged() {
			continue
		}

		r, err := weeklyRule(m, rangeStart, rangeEnd)
		if err != nil {
			appLog.Error("expand: failed to build weekly rule", err, "title", a.Title())
			continue
		}

		starts := r.Between(rangeStart, rangeEnd, true)
		if len(starts) > cfg.MaxOccurrencesPerActivity {
			starts = starts[:cfg.MaxOccurrencesPerActivity]
			result.Truncated = append(result.Truncated, a.Title())
		}

		dur := meetingDuration(m)
		for _, st := range starts {
			all = append(all, makeOccurrence(a, st, st.Add(dur)))
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Start.Before(all[j].Start) })

	if len(result.Truncated) > 0 {
		appLog.Error("expand: truncated occurrences due to cap",
			errors.New("max occurrences reached"),
			"titles", result.Truncated,
			"cap", cfg.MaxOccurrencesPerActivity,
		)
	}

	result.Occurrences = all
	return result, nil
}

func makeOccurrence(a activity.Activity, start, end time.Time) model.Occurrence {
	occ := model.Occurrence{
		Kind:  a.Kind().String(),
		Title: a.Title(),
		Start: start,
		End:   end,
	}
	switch v := a.(type) {
	case *activity.Course:
		occ.Name = v.Name()
		occ.Section = v.Section()
	case *activity.Event:
		occ.Details = v.Details()
	}
	occ.InstanceKey = identity(a) + "@" + start.Format(time.RFC3339)
	return occ
}
