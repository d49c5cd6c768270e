package autosave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "schedcal/internal/log"
)

// Exporter writes the current schedule somewhere durable.
type Exporter interface {
	Export(path string) error
}

// Saver periodically exports a schedule on a cron schedule.
type Saver struct {
	exporter Exporter
	path     string
	spec     string
	cron     *cron.Cron
}

// New validates spec and prepares a Saver. Jobs are evaluated in loc (nil
// means time.Local).
func New(exporter Exporter, path, spec string, loc *time.Location) (*Saver, error) {
	if exporter == nil {
		return nil, errors.New("autosave: exporter is nil")
	}
	if path == "" {
		return nil, errors.New("autosave: export path is empty")
	}
	if loc == nil {
		loc = time.Local
	}

	s := &Saver{
		exporter: exporter,
		path:     path,
		spec:     spec,
		cron:     cron.New(cron.WithLocation(loc)),
	}
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return nil, fmt.Errorf("autosave: invalid cron spec %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running exports in the background.
func (s *Saver) Start() {
	appLog.Info("autosave started", "spec", s.spec, "path", s.path)
	s.cron.Start()
}

// Stop stops the schedule and waits for a running export to finish or ctx to
// expire.
func (s *Saver) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		appLog.Error("autosave stop timed out", ctx.Err())
	}
	appLog.Info("autosave stopped")
}

// RunOnce performs one export. Failures are logged; the next tick retries.
func (s *Saver) RunOnce() {
	if err := s.exporter.Export(s.path); err != nil {
		appLog.Error("autosave export failed", err, "path", s.path)
	}
}
