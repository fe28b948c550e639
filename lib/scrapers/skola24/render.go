package skola24

import (
	"context"
	"fmt"
	"log/slog"
	"schedule-backend/lib/timezone"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// the render endpoint lays lessons out on a canvas, the lesson records do
// not depend on its size but the endpoint requires one.
const (
	renderWidth  = 732
	renderHeight = 550
	// selects a timetable by the person guid of a student
	selectionTypeStudent = 5
)

// MaxWeeksInRange bounds GetLessonsBetween, a little over a year.
const MaxWeeksInRange = 53

type renderKeyResponse struct {
	Key string `json:"key"`
}

// GetRenderKey fetches a single use key required by the render endpoint.
func (c *Client) GetRenderKey(ctx context.Context, creds Credentials) (string, error) {
	ctx, span := tracer.Start(ctx, "GetRenderKey")
	defer span.End()

	res, err := apiPost[renderKeyResponse](ctx, c, "render key", c.endpoints.RenderKey, creds, "")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch render key")
		return "", err
	}
	if res.Key == "" {
		span.SetStatus(codes.Error, "empty render key")
		return "", protocolError("render key", "empty render key")
	}
	return res.Key, nil
}

type renderTimetableRequest struct {
	RenderKey     string `json:"renderKey"`
	Host          string `json:"host"`
	UnitGuid      string `json:"unitGuid"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	SelectionType int    `json:"selectionType"`
	Selection     string `json:"selection"`
	Week          int    `json:"week"`
	Year          int    `json:"year"`
}

type renderTimetableResponse struct {
	LessonInfo []ExternalLesson `json:"lessonInfo"`
}

// GetLessonsForWeek returns the lessons of a timetable in an iso week.
func (c *Client) GetLessonsForWeek(ctx context.Context, creds Credentials, timetable Timetable, week timezone.IsoWeek) ([]Lesson, error) {
	ctx, span := tracer.Start(ctx, "GetLessonsForWeek")
	defer span.End()
	span.SetAttributes(attribute.String("custom.week", week.String()))

	if !week.Valid() {
		span.SetStatus(codes.Error, "invalid week")
		return nil, fmt.Errorf("%w: %s", ErrInvalidRange, week)
	}

	key, err := c.GetRenderKey(ctx, creds)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch render key")
		return nil, err
	}

	res, err := apiPost[renderTimetableResponse](ctx, c, "render timetable", c.endpoints.RenderTimetable, creds, renderTimetableRequest{
		RenderKey:     key,
		Host:          c.endpoints.Host,
		UnitGuid:      timetable.UnitGuid,
		Width:         renderWidth,
		Height:        renderHeight,
		SelectionType: selectionTypeStudent,
		Selection:     timetable.PersonGuid,
		Week:          week.Week,
		Year:          week.Year,
	})
	if err != nil {
		span.SetStatus(codes.Error, "failed to render timetable")
		return nil, err
	}

	lessons := make([]Lesson, 0, len(res.LessonInfo))
	for _, external := range res.LessonInfo {
		lesson, ok, err := external.Normalize(week)
		if err != nil {
			span.SetStatus(codes.Error, "failed to normalize lesson")
			return nil, fmt.Errorf("render timetable %s: %w", week, err)
		}
		if !ok {
			slog.DebugContext(
				ctx, "dropping lesson outside of week",
				"guid", external.GuidID,
				"dayOfWeekNumber", external.DayOfWeekNumber,
			)
			continue
		}
		lessons = append(lessons, lesson)
	}

	span.SetAttributes(attribute.Int("lessons", len(lessons)))
	return lessons, nil
}

// GetLessonsBetween returns the lessons of every week in the inclusive range
// [from, to], one week after the other.
func (c *Client) GetLessonsBetween(ctx context.Context, creds Credentials, timetable Timetable, from, to timezone.IsoWeek) ([]Lesson, error) {
	ctx, span := tracer.Start(ctx, "GetLessonsBetween")
	defer span.End()
	span.SetAttributes(
		attribute.String("custom.from", from.String()),
		attribute.String("custom.to", to.String()),
	)

	if err := ValidateRange(from, to); err != nil {
		span.SetStatus(codes.Error, "invalid range")
		return nil, err
	}

	var lessons []Lesson
	for week := from; week.Compare(to) <= 0; week = week.Next() {
		weekLessons, err := c.GetLessonsForWeek(ctx, creds, timetable, week)
		if err != nil {
			span.SetStatus(codes.Error, "failed to fetch week")
			return nil, err
		}
		lessons = append(lessons, weekLessons...)
	}
	if lessons == nil {
		lessons = []Lesson{}
	}
	return lessons, nil
}

// ValidateRange checks that [from, to] is a valid week range that
// GetLessonsBetween accepts.
func ValidateRange(from, to timezone.IsoWeek) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("%w: %s to %s", ErrInvalidRange, from, to)
	}
	if from.Compare(to) > 0 {
		return fmt.Errorf("%w: %s is after %s", ErrInvalidRange, from, to)
	}
	if n := timezone.WeeksBetween(from, to); n > MaxWeeksInRange {
		return fmt.Errorf("%w: %d weeks exceeds %d", ErrInvalidRange, n, MaxWeeksInRange)
	}
	return nil
}
