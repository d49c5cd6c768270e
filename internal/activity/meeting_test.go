package activity_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"schedcal/internal/activity"
)

func TestValidateMeeting(t *testing.T) {
	tests := []struct {
		name          string
		days          string
		start, end    int
		alphabet      string
		allowArranged bool
		wantErr       bool
	}{
		{name: "course weekdays", days: "MW", start: 1330, end: 1445, alphabet: activity.CourseDays},
		{name: "all weekdays", days: "MTWHF", start: 800, end: 850, alphabet: activity.CourseDays},
		{name: "midnight to last minute", days: "U", start: 0, end: 2359, alphabet: activity.EventDays},
		{name: "equal start and end", days: "M", start: 900, end: 900, alphabet: activity.CourseDays},
		{name: "arranged", days: "A", start: 0, end: 0, alphabet: activity.CourseDays, allowArranged: true},
		{name: "end before start", days: "MW", start: 1445, end: 1330, alphabet: activity.CourseDays, wantErr: true},
		{name: "hour 24", days: "M", start: 1000, end: 2400, alphabet: activity.CourseDays, wantErr: true},
		{name: "minute 60", days: "M", start: 960, end: 1000, alphabet: activity.CourseDays, wantErr: true},
		{name: "negative start", days: "M", start: -1, end: 1000, alphabet: activity.CourseDays, wantErr: true},
		{name: "empty days", days: "", start: 900, end: 1000, alphabet: activity.CourseDays, wantErr: true},
		{name: "weekend on course", days: "MS", start: 900, end: 1000, alphabet: activity.CourseDays, wantErr: true},
		{name: "lowercase day", days: "m", start: 900, end: 1000, alphabet: activity.EventDays, wantErr: true},
		{name: "repeated day", days: "MWM", start: 900, end: 1000, alphabet: activity.CourseDays, wantErr: true},
		{name: "arranged with times", days: "A", start: 900, end: 1000, alphabet: activity.CourseDays, allowArranged: true, wantErr: true},
		{name: "arranged combined", days: "MA", start: 0, end: 0, alphabet: activity.CourseDays, allowArranged: true, wantErr: true},
		{name: "arranged not allowed", days: "A", start: 0, end: 0, alphabet: activity.EventDays, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := activity.ValidateMeeting(tt.days, tt.start, tt.end, tt.alphabet, tt.allowArranged)
			if tt.wantErr {
				assert.ErrorIs(t, err, activity.ErrInvalidMeeting)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFormatMeeting(t *testing.T) {
	tests := []struct {
		days       string
		start, end int
		want       string
	}{
		{"MW", 1330, 1445, "MW 1:30PM-2:45PM"},
		{"TH", 800, 915, "TH 8:00AM-9:15AM"},
		{"F", 0, 5, "F 12:00AM-12:05AM"},
		{"S", 1200, 1259, "S 12:00PM-12:59PM"},
		{"U", 1105, 2359, "U 11:05AM-11:59PM"},
		{"M", 0, 1200, "M 12:00AM-12:00PM"},
		{"A", 0, 0, "Arranged"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, activity.FormatMeeting(tt.days, tt.start, tt.end))
		})
	}
}

func TestMeetingOverlaps(t *testing.T) {
	mw := activity.Meeting{Days: "MW", Start: 1330, End: 1445}

	tests := []struct {
		name  string
		other activity.Meeting
		want  bool
	}{
		{name: "touching boundary", other: activity.Meeting{Days: "M", Start: 1445, End: 1500}, want: true},
		{name: "starts inside", other: activity.Meeting{Days: "M", Start: 1400, End: 1500}, want: true},
		{name: "same interval", other: activity.Meeting{Days: "W", Start: 1330, End: 1445}, want: true},
		{name: "contains", other: activity.Meeting{Days: "W", Start: 1200, End: 1600}, want: true},
		{name: "ends at start", other: activity.Meeting{Days: "W", Start: 1200, End: 1330}, want: true},
		{name: "after same day", other: activity.Meeting{Days: "M", Start: 1500, End: 1600}, want: false},
		{name: "before same day", other: activity.Meeting{Days: "M", Start: 1200, End: 1329}, want: false},
		{name: "disjoint days", other: activity.Meeting{Days: "TH", Start: 1330, End: 1445}, want: false},
		{name: "arranged", other: activity.Meeting{Days: "A"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mw.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(mw), "overlap must be symmetric")
		})
	}
}

func TestMeetingOverlapsSymmetricExhaustive(t *testing.T) {
	starts := []int{800, 900, 930, 1000, 1100}
	var meetings []activity.Meeting
	for _, days := range []string{"M", "MW", "TH", "A"} {
		for _, s := range starts {
			for _, e := range starts {
				if e < s {
					continue
				}
				if days == "A" {
					meetings = append(meetings, activity.Meeting{Days: days})
					continue
				}
				meetings = append(meetings, activity.Meeting{Days: days, Start: s, End: e})
			}
		}
	}

	for _, a := range meetings {
		for _, b := range meetings {
			if a.Overlaps(b) != b.Overlaps(a) {
				t.Fatalf("asymmetric overlap: %s vs %s", a, b)
			}
			if strings.Contains(a.Days, "A") && a.Overlaps(b) {
				t.Fatalf("arranged meeting overlapped %s", b)
			}
		}
	}
}
