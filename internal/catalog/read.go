package catalog

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"schedcal/internal/activity"
	appLog "schedcal/internal/log"
)

// ErrCatalogLoad is returned when the catalog source cannot be opened.
var ErrCatalogLoad = errors.New("cannot load course catalog")

var errMalformed = errors.New("malformed course record")

// Field counts of a course record with and without meeting times.
const (
	arrangedFieldCount = 6
	timedFieldCount    = 8
)

// Load reads a catalog from a filesystem path or an http(s) URL. Remote
// sources go through fetcher; a nil fetcher uses NewFetcher("").
func Load(ctx context.Context, source string, fetcher *Fetcher) ([]*activity.Course, error) {
	if isRemote(source) {
		if fetcher == nil {
			fetcher = NewFetcher("")
		}
		res, err := fetcher.Fetch(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCatalogLoad, err)
		}
		return Read(bytes.NewReader(res.Body))
	}
	return ReadFile(source)
}

// ReadFile reads course records from a local file.
func ReadFile(path string) ([]*activity.Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogLoad, err)
	}
	defer f.Close()

	courses, err := Read(f)
	if err != nil {
		return nil, err
	}
	appLog.Info("catalog loaded", "path", path, "course_count", len(courses))
	return courses, nil
}

// Read parses one course per line. Lines that fail to parse or validate are
// skipped, and a (name, section) pair already read keeps its first record.
func Read(r io.Reader) ([]*activity.Course, error) {
	courses := make([]*activity.Course, 0)
	seen := make(map[activity.CourseKey]struct{})

	br := bufio.NewReader(r)
	lineNo := 0
	for {
		raw, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("%w: %v", ErrCatalogLoad, readErr)
		}
		if raw == "" && readErr != nil {
			break
		}
		lineNo++

		line := strings.TrimRight(raw, "\r\n")
		if strings.TrimSpace(line) != "" {
			c, err := ParseCourse(line)
			switch {
			case err != nil:
				appLog.Debug("catalog line skipped", "line", lineNo, "reason", err.Error())
			case hasKey(seen, c.Key()):
				appLog.Debug("catalog line skipped", "line", lineNo, "reason", "duplicate name and section")
			default:
				seen[c.Key()] = struct{}{}
				courses = append(courses, c)
			}
		}

		if readErr != nil {
			break
		}
	}
	return courses, nil
}

func hasKey(seen map[activity.CourseKey]struct{}, k activity.CourseKey) bool {
	_, ok := seen[k]
	return ok
}

// ParseCourse parses name,title,section,credits,instructorId,days[,start,end].
// The time fields must be present exactly when days is not Arranged.
func ParseCourse(line string) (*activity.Course, error) {
	fields := strings.Split(line, ",")
	if len(fields) < arrangedFieldCount {
		return nil, fmt.Errorf("%w: %d fields", errMalformed, len(fields))
	}

	name, title, section, instructorID, days := fields[0], fields[1], fields[2], fields[4], fields[5]
	credits, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, fmt.Errorf("%w: credits %q", errMalformed, fields[3])
	}

	if days == activity.Arranged {
		if len(fields) != arrangedFieldCount {
			return nil, fmt.Errorf("%w: arranged course with %d fields", errMalformed, len(fields))
		}
		return activity.NewArrangedCourse(name, title, section, credits, instructorID)
	}

	if len(fields) != timedFieldCount {
		return nil, fmt.Errorf("%w: %d fields", errMalformed, len(fields))
	}
	start, err := strconv.Atoi(fields[6])
	if err != nil {
		return nil, fmt.Errorf("%w: start %q", errMalformed, fields[6])
	}
	end, err := strconv.Atoi(fields[7])
	if err != nil {
		return nil, fmt.Errorf("%w: end %q", errMalformed, fields[7])
	}
	return activity.NewCourse(name, title, section, credits, instructorID, days, start, end)
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
