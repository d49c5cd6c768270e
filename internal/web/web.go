package web

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"schedcal/internal/activity"
	"schedcal/internal/config"
	"schedcal/internal/ics"
	appLog "schedcal/internal/log"
	"schedcal/internal/scheduler"
)

// maxBodyBytes bounds JSON and ICS request bodies.
const maxBodyBytes = 1 << 20

// Server exposes the scheduler over HTTP.
type Server struct {
	cfg      *config.Config
	sched    *scheduler.Scheduler
	router   *chi.Mux
	validate *validator.Validate

	// now is replaceable in tests.
	now func() time.Time
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, sched *scheduler.Scheduler) *Server {
	s := &Server{
		cfg:      cfg,
		sched:    sched,
		router:   chi.NewRouter(),
		validate: validator.New(),
		now:      time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the root http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.router)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password leaves auth disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="schedcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/catalog/{name}/{section}", s.handleCatalogCourse)

		r.Get("/schedule", s.handleSchedule)
		r.Post("/schedule/courses", s.handleAddCourse)
		r.Post("/schedule/events", s.handleAddEvent)
		r.Delete("/schedule/{index}", s.handleRemove)
		r.Post("/schedule/reset", s.handleReset)
		r.Get("/schedule/title", s.handleGetTitle)
		r.Put("/schedule/title", s.handleSetTitle)
		r.Post("/schedule/export", s.handleExport)
		r.Post("/schedule/import", s.handleImport)
		r.Get("/schedule.ics", s.handleICS)

		r.Get("/occurrences", s.handleOccurrences)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// rowsResponse is the JSON shape of the catalog and schedule views.
type rowsResponse struct {
	Title   string     `json:"title,omitempty"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

var (
	shortColumns = []string{"name", "section", "title", "meeting"}
	longColumns  = []string{"name", "section", "title", "credits", "instructor", "meeting", "details"}
)

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rowsResponse{Columns: shortColumns, Rows: s.sched.Catalog()})
}

// courseDTO is a JSON view of one catalog course.
type courseDTO struct {
	Name         string `json:"name"`
	Section      string `json:"section"`
	Title        string `json:"title"`
	Credits      int    `json:"credits"`
	InstructorID string `json:"instructor_id"`
	Days         string `json:"days"`
	Start        int    `json:"start"`
	End          int    `json:"end"`
	Meeting      string `json:"meeting"`
}

func (s *Server) handleCatalogCourse(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	section := pathParam(r, "section")

	c, ok := s.sched.CourseFromCatalog(name, section)
	if !ok {
		writeError(w, http.StatusNotFound, "course not found in catalog")
		return
	}
	m := c.Meeting()
	writeJSON(w, http.StatusOK, courseDTO{
		Name:         c.Name(),
		Section:      c.Section(),
		Title:        c.Title(),
		Credits:      c.Credits(),
		InstructorID: c.InstructorID(),
		Days:         m.Days,
		Start:        m.Start,
		End:          m.End,
		Meeting:      c.MeetingString(),
	})
}

// handleSchedule returns the schedule rows.
//
// GET /api/schedule?view=short|full (default short)
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	resp := rowsResponse{Title: s.sched.Title()}
	switch r.URL.Query().Get("view") {
	case "", "short":
		resp.Columns, resp.Rows = shortColumns, s.sched.Scheduled()
	case "full":
		resp.Columns, resp.Rows = longColumns, s.sched.FullScheduled()
	default:
		writeError(w, http.StatusBadRequest, "view must be short or full")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type addCourseRequest struct {
	Name    string `json:"name" validate:"required"`
	Section string `json:"section" validate:"required"`
}

func (s *Server) handleAddCourse(w http.ResponseWriter, r *http.Request) {
	var req addCourseRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	ok, err := s.sched.AddCourse(req.Name, req.Section)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "course not found in catalog")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"added": true, "schedule_size": s.sched.Len()})
}

type addEventRequest struct {
	Title   string `json:"title" validate:"required"`
	Days    string `json:"days" validate:"required"`
	Start   int    `json:"start" validate:"min=0,max=2359"`
	End     int    `json:"end" validate:"min=0,max=2359"`
	Details string `json:"details"`
}

func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	var req addEventRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.sched.AddEvent(req.Title, req.Days, req.Start, req.End, req.Details); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"added": true, "schedule_size": s.sched.Len()})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	if !s.sched.RemoveActivity(idx) {
		writeError(w, http.StatusNotFound, "no activity at index")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.sched.Reset()
	w.WriteHeader(http.StatusNoContent)
}

type titleRequest struct {
	Title string `json:"title" validate:"required"`
}

func (s *Server) handleGetTitle(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, titleRequest{Title: s.sched.Title()})
}

func (s *Server) handleSetTitle(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	s.sched.SetTitle(req.Title)
	writeJSON(w, http.StatusOK, titleRequest{Title: s.sched.Title()})
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	if err := s.sched.Export(s.cfg.ExportPath); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": s.cfg.ExportPath, "activity_count": s.sched.Len()})
}

// handleICS serves the schedule as a weekly recurring iCalendar feed
// anchored at the configured term.
func (s *Server) handleICS(w http.ResponseWriter, _ *http.Request) {
	loc := s.cfg.Location()
	now := s.now().In(loc)
	term := ics.Term{Start: s.cfg.TermStartDate(now, loc), Weeks: s.cfg.TermWeeks}

	var buf bytes.Buffer
	if err := ics.WriteCalendar(&buf, s.sched.Title(), s.sched.Activities(), term, now); err != nil {
		appLog.Error("ics export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to build calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type importFailureDTO struct {
	Title string `json:"title,omitempty"`
	Error string `json:"error"`
}

type importResponse struct {
	Added  []string           `json:"added"`
	Failed []importFailureDTO `json:"failed"`
}

// handleImport adds the VEVENTs of an uploaded iCalendar body as events.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	res := ics.Import(s.sched, body, s.cfg.Location())

	resp := importResponse{Added: res.Added, Failed: make([]importFailureDTO, 0, len(res.Failed))}
	if resp.Added == nil {
		resp.Added = []string{}
	}
	for _, f := range res.Failed {
		resp.Failed = append(resp.Failed, importFailureDTO{Title: f.Title, Error: f.Err.Error()})
	}
	writeJSON(w, http.StatusOK, resp)
}

// occurrencesResponse is the JSON response shape for /api/occurrences.
type occurrencesResponse struct {
	Occurrences     []occurrenceDTO `json:"occurrences"`
	Truncated       []string        `json:"truncated,omitempty"`
	RangeStart      time.Time       `json:"range_start"`
	RangeEnd        time.Time       `json:"range_end"`
	DisplayTimeZone string          `json:"display_timezone"`
}

// occurrenceDTO is a JSON-friendly view of occurrences.
type occurrenceDTO struct {
	Kind        string    `json:"kind"`
	InstanceKey string    `json:"instance_key"`
	Title       string    `json:"title"`
	Name        string    `json:"name,omitempty"`
	Section     string    `json:"section,omitempty"`
	Details     string    `json:"details,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// handleOccurrences places the weekly schedule on real dates.
//
// GET /api/occurrences?days=7&backfill=0
//   - days:     how many days ahead to list (default 7)
//   - backfill: how many past days to include (default 0)
func (s *Server) handleOccurrences(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days := parseIntDefault(q.Get("days"), 7)
	if days <= 0 {
		days = 7
	}
	backfill := parseIntDefault(q.Get("backfill"), 0)
	if backfill < 0 {
		backfill = 0
	}

	loc := s.cfg.Location()
	now := s.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	rangeStart := today.AddDate(0, 0, -backfill)
	rangeEnd := today.AddDate(0, 0, days).Add(-time.Second)

	res, err := ics.ExpandOccurrences(s.sched.Activities(), ics.ExpandConfig{
		DisplayLocation: loc,
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
	})
	if err != nil {
		appLog.Error("api occurrences: expand failed", err)
		writeError(w, http.StatusInternalServerError, "failed to expand schedule")
		return
	}

	dtos := make([]occurrenceDTO, 0, len(res.Occurrences))
	for _, occ := range res.Occurrences {
		dtos = append(dtos, occurrenceDTO{
			Kind:        occ.Kind,
			InstanceKey: occ.InstanceKey,
			Title:       occ.Title,
			Name:        occ.Name,
			Section:     occ.Section,
			Details:     occ.Details,
			Start:       occ.Start,
			End:         occ.End,
		})
	}

	writeJSON(w, http.StatusOK, occurrencesResponse{
		Occurrences:     dtos,
		Truncated:       res.Truncated,
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
		DisplayTimeZone: loc.String(),
	})
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// On failure it writes a 400 and returns false.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage lists the failing fields of a validator error.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field())+" ("+fe.Tag()+")")
	}
	return "invalid fields: " + strings.Join(fields, ", ")
}

// statusFor maps scheduler and validation errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, scheduler.ErrAlreadyEnrolled),
		errors.Is(err, scheduler.ErrDuplicateEvent),
		errors.Is(err, scheduler.ErrScheduleConflict):
		return http.StatusConflict
	case errors.Is(err, activity.ErrInvalidTitle),
		errors.Is(err, activity.ErrInvalidMeeting),
		errors.Is(err, activity.ErrInvalidCourseName),
		errors.Is(err, activity.ErrInvalidSection),
		errors.Is(err, activity.ErrInvalidCredits),
		errors.Is(err, activity.ErrInvalidInstructorID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
