package scheduler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	appLog "schedcal/internal/log"
)

// ErrExport is returned when the schedule cannot be written.
var ErrExport = errors.New("the file cannot be saved")

// WriteRecords writes one record line per scheduled activity, in order.
func (s *Scheduler) WriteRecords(w io.Writer) error {
	activities := s.Activities()

	bw := bufio.NewWriter(w)
	for _, a := range activities {
		if _, err := bw.WriteString(a.Record() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Export writes the schedule records to path.
//
// Implementation details:
//   - Ensures the parent directory exists.
//   - Writes atomically via a temp file + rename, so a failed export never
//     leaves a truncated file behind.
//   - The in-memory schedule is never modified.
func (s *Scheduler) Export(path string) error {
	if path == "" {
		return fmt.Errorf("%w: path is empty", ErrExport)
	}
	if err := s.export(path); err != nil {
		appLog.Error("schedule export failed", err, "path", path)
		return fmt.Errorf("%w: %v", ErrExport, err)
	}
	appLog.Info("schedule exported", "path", path, "activity_count", s.Len())
	return nil
}

func (s *Scheduler) export(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".schedcal-export-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := s.WriteRecords(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
