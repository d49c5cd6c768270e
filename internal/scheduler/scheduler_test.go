package scheduler_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedcal/internal/activity"
	"schedcal/internal/catalog"
	"schedcal/internal/scheduler"
)

const testCatalog = `CSC 116,Intro to Programming - Java,001,3,jdyoung2,MW,910,1100
CSC 116,Intro to Programming - Java,002,3,spbalik,MW,1120,1310
CSC 216,Software Development Fundamentals,001,3,sesmith5,MW,1330,1445
CSC 216,Software Development Fundamentals,002,3,ixdoming,TH,1330,1445
CSC 226,Discrete Mathematics for Computer Scientists,001,3,tmbarnes,MWF,935,1025
CSC 230,C and Software Tools,601,3,dbsturgi,A
`

func newScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()
	courses, err := catalog.Read(strings.NewReader(testCatalog))
	require.NoError(t, err)
	return scheduler.New(courses)
}

func TestNewDefaults(t *testing.T) {
	s := newScheduler(t)
	assert.Equal(t, scheduler.DefaultTitle, s.Title())
	assert.Equal(t, 0, s.Len())
	assert.Len(t, s.Catalog(), 6)
	assert.Equal(t, []string{"CSC 230", "601", "C and Software Tools", "Arranged"}, s.Catalog()[5])
}

func TestCourseFromCatalog(t *testing.T) {
	s := newScheduler(t)

	c, ok := s.CourseFromCatalog("CSC 216", "002")
	require.True(t, ok)
	assert.Equal(t, "ixdoming", c.InstructorID())

	_, ok = s.CourseFromCatalog("CSC 216", "003")
	assert.False(t, ok)

	// The returned course is a copy; changing it leaves the catalog alone.
	require.NoError(t, c.SetMeeting("F", 800, 900))
	again, _ := s.CourseFromCatalog("CSC 216", "002")
	assert.Equal(t, "TH", again.Meeting().Days)
}

func TestAddCourse(t *testing.T) {
	s := newScheduler(t)

	ok, err := s.AddCourse("CSC 216", "001")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, s.Len())

	ok, err = s.AddCourse("CSC 999", "001")
	assert.NoError(t, err)
	assert.False(t, ok, "unknown course")

	ok, err = s.AddCourse("CSC 216", "001")
	assert.ErrorIs(t, err, scheduler.ErrAlreadyEnrolled)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())

	_, err = s.AddCourse("CSC 216", "002")
	assert.ErrorIs(t, err, scheduler.ErrAlreadyEnrolled, "section does not matter")

	ok, err = s.AddCourse("CSC 116", "002")
	require.NoError(t, err, "MW 11:20-13:10 ends before 13:30")
	assert.True(t, ok)
	assert.Equal(t, 2, s.Len())
}

func TestAddCourseConflict(t *testing.T) {
	s := newScheduler(t)

	_, err := s.AddCourse("CSC 116", "001")
	require.NoError(t, err)

	ok, err := s.AddCourse("CSC 226", "001")
	assert.ErrorIs(t, err, scheduler.ErrScheduleConflict)
	assert.NotErrorIs(t, err, activity.ErrConflict, "engine conflict is translated")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())

	ok, err = s.AddCourse("CSC 230", "601")
	require.NoError(t, err)
	assert.True(t, ok, "arranged never conflicts")
}

func TestAddEvent(t *testing.T) {
	s := newScheduler(t)
	_, err := s.AddCourse("CSC 216", "001")
	require.NoError(t, err)

	require.NoError(t, s.AddEvent("Lunch", "M", 1200, 1300, "with friends"))
	assert.Equal(t, 2, s.Len())

	err = s.AddEvent("Study", "M", 1400, 1500, "")
	assert.ErrorIs(t, err, scheduler.ErrScheduleConflict)

	err = s.AddEvent("Lunch", "S", 1200, 1300, "")
	assert.ErrorIs(t, err, scheduler.ErrDuplicateEvent)

	err = s.AddEvent("Nap", "A", 0, 0, "")
	assert.ErrorIs(t, err, activity.ErrInvalidMeeting)

	err = s.AddEvent("", "M", 800, 900, "")
	assert.ErrorIs(t, err, activity.ErrInvalidTitle)

	require.NoError(t, s.AddEvent("CSC 216", "U", 1000, 1100, ""), "event titled like a course is not a duplicate")
	assert.Equal(t, 3, s.Len())
}

func TestAddEventDuplicateBeatsConflictPerEntry(t *testing.T) {
	s := newScheduler(t)
	require.NoError(t, s.AddEvent("Gym", "M", 700, 800, ""))
	require.NoError(t, s.AddEvent("Run", "T", 700, 800, ""))

	// Same title as the first entry and overlapping it: duplicate is reported.
	err := s.AddEvent("Gym", "M", 730, 830, "")
	assert.ErrorIs(t, err, scheduler.ErrDuplicateEvent)

	// Conflicts with the first entry, duplicates the second: the first entry
	// in schedule order decides.
	err = s.AddEvent("Run", "M", 730, 830, "")
	assert.ErrorIs(t, err, scheduler.ErrScheduleConflict)
}

func TestRemoveActivity(t *testing.T) {
	s := newScheduler(t)
	_, err := s.AddCourse("CSC 216", "001")
	require.NoError(t, err)
	require.NoError(t, s.AddEvent("Lunch", "M", 1200, 1300, ""))
	require.NoError(t, s.AddEvent("Gym", "F", 1700, 1800, ""))

	assert.False(t, s.RemoveActivity(3))
	assert.False(t, s.RemoveActivity(-1))
	assert.Equal(t, 3, s.Len())

	assert.True(t, s.RemoveActivity(0))
	rows := s.Scheduled()
	require.Len(t, rows, 2)
	assert.Equal(t, "Lunch", rows[0][2])
	assert.Equal(t, "Gym", rows[1][2])

	// Removed course can be re-added.
	ok, err := s.AddCourse("CSC 216", "002")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResetKeepsCatalogAndTitle(t *testing.T) {
	s := newScheduler(t)
	s.SetTitle("Fall")
	_, err := s.AddCourse("CSC 216", "001")
	require.NoError(t, err)

	s.Reset()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "Fall", s.Title())
	assert.Len(t, s.Catalog(), 6)
}

func TestScheduleViews(t *testing.T) {
	s := newScheduler(t)
	_, err := s.AddCourse("CSC 216", "001")
	require.NoError(t, err)
	require.NoError(t, s.AddEvent("Lunch", "M", 1200, 1300, "with friends"))

	assert.Equal(t, [][]string{
		{"CSC 216", "001", "Software Development Fundamentals", "MW 1:30PM-2:45PM"},
		{"", "", "Lunch", "M 12:00PM-1:00PM"},
	}, s.Scheduled())

	assert.Equal(t, [][]string{
		{"CSC 216", "001", "Software Development Fundamentals", "3", "sesmith5", "MW 1:30PM-2:45PM", ""},
		{"", "", "Lunch", "", "", "M 12:00PM-1:00PM", "with friends"},
	}, s.FullScheduled())
}

func TestScheduledCourseDoesNotAliasCatalog(t *testing.T) {
	s := newScheduler(t)
	_, err := s.AddCourse("CSC 216", "001")
	require.NoError(t, err)

	acts := s.Activities()
	require.NoError(t, acts[0].SetMeeting("F", 800, 900))

	assert.Equal(t, "MW 1:30PM-2:45PM", s.Scheduled()[0][3])
	c, _ := s.CourseFromCatalog("CSC 216", "001")
	assert.Equal(t, "MW", c.Meeting().Days)
}

func TestExport(t *testing.T) {
	s := newScheduler(t)
	_, err := s.AddCourse("CSC 216", "001")
	require.NoError(t, err)
	_, err = s.AddCourse("CSC 230", "601")
	require.NoError(t, err)
	require.NoError(t, s.AddEvent("Lunch", "M", 1200, 1300, "with friends"))

	path := filepath.Join(t.TempDir(), "out", "schedule.txt")
	require.NoError(t, s.Export(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "CSC 216,Software Development Fundamentals,001,3,sesmith5,MW,1330,1445\n"+
		"CSC 230,C and Software Tools,601,3,dbsturgi,A\n"+
		"Lunch,M,1200,1300,with friends\n", string(data))
	assert.Equal(t, 3, s.Len())

	var buf bytes.Buffer
	require.NoError(t, s.WriteRecords(&buf))
	assert.Equal(t, string(data), buf.String())
}

func TestExportFailure(t *testing.T) {
	s := newScheduler(t)

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	err := s.Export(filepath.Join(blocker, "schedule.txt"))
	assert.ErrorIs(t, err, scheduler.ErrExport)

	assert.ErrorIs(t, s.Export(""), scheduler.ErrExport)
}
