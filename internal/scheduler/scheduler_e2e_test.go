package scheduler_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedcal/internal/catalog"
	"schedcal/internal/scheduler"
)

func TestEndToEndFromCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.txt")
	require.NoError(t, os.WriteFile(path,
		[]byte("CSC 216,Software Development Fundamentals,001,3,sesmith5,MW,1330,1445\n"), 0o600))

	courses, err := catalog.ReadFile(path)
	require.NoError(t, err)
	s := scheduler.New(courses)

	ok, err := s.AddCourse("CSC 216", "001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.AddEvent("Lunch", "M", 1200, 1300, "with friends"))

	err = s.AddEvent("Study", "M", 1400, 1500, "")
	assert.ErrorIs(t, err, scheduler.ErrScheduleConflict)
	assert.Equal(t, 2, s.Len())
}

func TestConcurrentAddsKeepInvariant(t *testing.T) {
	s := scheduler.New(nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.AddEvent("Standup", "MTWHF", 900, 915, "")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, s.Len(), "only one of the racing adds may win")
}
