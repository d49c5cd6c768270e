package scheduler

import (
	"errors"
	"fmt"
	"sync"

	"schedcal/internal/activity"
	appLog "schedcal/internal/log"
)

// DefaultTitle is the schedule title until SetTitle is called.
const DefaultTitle = "My Schedule"

// Schedule-level errors returned by the add operations.
var (
	ErrAlreadyEnrolled  = errors.New("already enrolled")
	ErrDuplicateEvent   = errors.New("event already exists")
	ErrScheduleConflict = errors.New("cannot be added due to a conflict")
)

// Scheduler owns a read-only course catalog and a user's schedule. Every
// mutation keeps the schedule free of duplicates and time conflicts.
//
// A Scheduler is safe for concurrent use; each add runs its duplicate scan,
// conflict scan and append under one lock.
type Scheduler struct {
	mu       sync.RWMutex
	catalog  []*activity.Course
	schedule []activity.Activity
	title    string
}

// New builds a Scheduler around an already-loaded catalog. The catalog slice
// is copied and never modified afterwards.
func New(catalog []*activity.Course) *Scheduler {
	cat := make([]*activity.Course, 0, len(catalog))
	for _, c := range catalog {
		if c == nil {
			continue
		}
		cat = append(cat, c.Clone().(*activity.Course))
	}
	return &Scheduler{
		catalog:  cat,
		schedule: make([]activity.Activity, 0),
		title:    DefaultTitle,
	}
}

// CourseFromCatalog returns a copy of the first catalog course matching name
// and section.
func (s *Scheduler) CourseFromCatalog(name, section string) (*activity.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.findCourse(name, section)
	if c == nil {
		return nil, false
	}
	return c.Clone().(*activity.Course), true
}

func (s *Scheduler) findCourse(name, section string) *activity.Course {
	for _, c := range s.catalog {
		if c.Name() == name && c.Section() == section {
			return c
		}
	}
	return nil
}

// AddCourse adds the catalog course (name, section) to the schedule. It
// returns false with a nil error when the course is not in the catalog.
func (s *Scheduler) AddCourse(name, section string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findCourse(name, section)
	if c == nil {
		return false, nil
	}

	for _, a := range s.schedule {
		if a.IsDuplicate(c) {
			return false, fmt.Errorf("%w in %s", ErrAlreadyEnrolled, name)
		}
	}
	for _, a := range s.schedule {
		if err := a.CheckConflict(c); err != nil {
			appLog.Debug("course rejected", "name", name, "section", section, "conflict_with", a.Title())
			return false, fmt.Errorf("course %w: %v", ErrScheduleConflict, err)
		}
	}

	s.schedule = append(s.schedule, c.Clone())
	appLog.Info("course added", "name", name, "section", section, "schedule_size", len(s.schedule))
	return true, nil
}

// AddEvent validates a new event and adds it to the schedule. Entries are
// checked in schedule order; for each one a duplicate title wins over a time
// conflict.
func (s *Scheduler) AddEvent(title, days string, start, end int, details string) error {
	e, err := activity.NewEvent(title, days, start, end, details)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.schedule {
		if e.IsDuplicate(a) {
			return fmt.Errorf("%w: %s", ErrDuplicateEvent, title)
		}
		if err := a.CheckConflict(e); err != nil {
			appLog.Debug("event rejected", "title", title, "conflict_with", a.Title())
			return fmt.Errorf("event %w: %v", ErrScheduleConflict, err)
		}
	}

	s.schedule = append(s.schedule, e)
	appLog.Info("event added", "title", title, "schedule_size", len(s.schedule))
	return nil
}

// RemoveActivity removes the entry at index, keeping the order of the rest.
// It reports false when index is outside [0, size).
func (s *Scheduler) RemoveActivity(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.schedule) {
		return false
	}
	s.schedule = append(s.schedule[:index:index], s.schedule[index+1:]...)
	return true
}

// Reset empties the schedule. The catalog and title are kept.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule = make([]activity.Activity, 0)
}

func (s *Scheduler) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

func (s *Scheduler) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

// Len returns the number of scheduled activities.
func (s *Scheduler) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.schedule)
}

// Catalog lists every catalog course as a short row.
func (s *Scheduler) Catalog() [][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([][]string, 0, len(s.catalog))
	for _, c := range s.catalog {
		rows = append(rows, c.ShortFields())
	}
	return rows
}

// Scheduled lists the schedule as short rows.
func (s *Scheduler) Scheduled() [][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([][]string, 0, len(s.schedule))
	for _, a := range s.schedule {
		rows = append(rows, a.ShortFields())
	}
	return rows
}

// FullScheduled lists the schedule as long rows.
func (s *Scheduler) FullScheduled() [][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([][]string, 0, len(s.schedule))
	for _, a := range s.schedule {
		rows = append(rows, a.LongFields())
	}
	return rows
}

// Activities returns copies of the scheduled activities in order.
func (s *Scheduler) Activities() []activity.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]activity.Activity, 0, len(s.schedule))
	for _, a := range s.schedule {
		out = append(out, a.Clone())
	}
	return out
}
