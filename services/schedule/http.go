package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"schedule-backend/lib/scrapers/skola24"
	"schedule-backend/lib/serviceutil"
	"schedule-backend/lib/timezone"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

var errBadRequest = errors.New("bad request")

type HandlerOptions struct {
	AllowedOrigins []string
	// RequestTimeout bounds a single request including every upstream call
	// it makes, 0 means no limit.
	RequestTimeout time.Duration
}

type handler struct {
	service Service
}

// NewHandler exposes the service over http.
func NewHandler(service Service, opts HandlerOptions) http.Handler {
	h := handler{service: service}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))
	r.Use(serviceutil.CORS(opts.AllowedOrigins))
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/auth", h.auth)
	r.Get("/lessons", h.lessons)
	r.Get("/lessons.ics", h.lessonsIcs)
	r.Get("/timetables", h.timetables)

	return r
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.InfoContext(
			r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusFromError maps an error to the status code and message exposed to
// clients, anything unexpected is reported without details.
func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, skola24.ErrInvalidRange):
		return http.StatusBadRequest, "invalid week range"
	case errors.Is(err, skola24.ErrInvalidUsernamePassword):
		return http.StatusBadRequest, "invalid username or password"
	case errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized, "invalid token"
	case errors.Is(err, skola24.ErrUnauthorized):
		return http.StatusUnauthorized, "upstream session expired"
	case errors.Is(err, ErrTimetableNotFound):
		return http.StatusNotFound, "timetable not found"
	}
	return http.StatusInternalServerError, "internal error"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFromError(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	} else {
		slog.DebugContext(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: missing bearer token", ErrInvalidToken)
	}
	return strings.TrimSpace(token), nil
}

type authRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Timetable string `json:"timetable"`
}

type authResponse struct {
	Token string `json:"token"`
}

func (h handler) auth(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: malformed body", errBadRequest))
		return
	}

	token, err := h.service.Authenticate(r.Context(), req.Username, req.Password, req.Timetable)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token})
}

func parseWeekParam(r *http.Request, name string) (timezone.IsoWeek, error) {
	week, err := timezone.ParseIsoWeek(r.URL.Query().Get(name))
	if err != nil {
		return timezone.IsoWeek{}, fmt.Errorf("%w: %s must look like 2024-W05", errBadRequest, name)
	}
	return week, nil
}

// weekRange reads `from` and `to`, both default to the current week.
func weekRange(r *http.Request) (timezone.IsoWeek, timezone.IsoWeek, error) {
	current := timezone.IsoWeekOf(timezone.Now())
	from, to := current, current

	query := r.URL.Query()
	var err error
	if query.Has("from") {
		from, err = parseWeekParam(r, "from")
		if err != nil {
			return from, to, err
		}
		to = from
	}
	if query.Has("to") {
		to, err = parseWeekParam(r, "to")
		if err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}

func (h handler) lessons(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	query := r.URL.Query()
	var lessons []skola24.Lesson
	if query.Has("from") || query.Has("to") {
		from, to, err := weekRange(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		lessons, err = h.service.GetLessonsRange(r.Context(), token, from, to)
		if err != nil {
			writeError(w, r, err)
			return
		}
	} else {
		week := timezone.IsoWeekOf(timezone.Now())
		if query.Has("year") || query.Has("week") {
			week.Year, err = strconv.Atoi(query.Get("year"))
			if err != nil {
				writeError(w, r, fmt.Errorf("%w: year must be a number", errBadRequest))
				return
			}
			week.Week, err = strconv.Atoi(query.Get("week"))
			if err != nil {
				writeError(w, r, fmt.Errorf("%w: week must be a number", errBadRequest))
				return
			}
		}
		lessons, err = h.service.GetLessons(r.Context(), token, week.Year, week.Week)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	if lessons == nil {
		lessons = []skola24.Lesson{}
	}
	writeJSON(w, http.StatusOK, lessons)
}

func (h handler) lessonsIcs(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	from, to, err := weekRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cal, err := h.service.Calendar(r.Context(), token, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="lessons.ics"`)
	err = cal.SerializeTo(w)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to write calendar", "err", err)
	}
}

func (h handler) timetables(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	timetables, err := h.service.Timetables(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, timetables)
}
