package schedule

import (
	"context"
	"fmt"
	"schedule-backend/lib/scrapers/skola24"
	"schedule-backend/lib/timezone"
	"time"

	ics "github.com/arran4/golang-ical"
)

const calendarProductId = "-//schedule-backend//skola24//SV"

// NewCalendar converts lessons into an ics calendar, every lesson becomes a
// single event with times in UTC.
func NewCalendar(lessons []skola24.Lesson, stamp time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductId)

	for i, lesson := range lessons {
		event := cal.AddEvent(fmt.Sprintf("%s-%d@schedule-backend", lesson.Start.UTC().Format("20060102T150405Z"), i))
		event.SetDtStampTime(stamp)
		event.SetStartAt(lesson.Start)
		event.SetEndAt(lesson.End)
		event.SetSummary(lesson.Course)
		if lesson.Location != nil {
			event.SetLocation(*lesson.Location)
		}
		if lesson.Teacher != nil {
			event.SetDescription(*lesson.Teacher)
		}
	}

	return cal
}

// Calendar returns the lessons of [from, to] as an ics calendar.
func (s Service) Calendar(ctx context.Context, token string, from, to timezone.IsoWeek) (*ics.Calendar, error) {
	lessons, err := s.GetLessonsRange(ctx, token, from, to)
	if err != nil {
		return nil, err
	}
	return NewCalendar(lessons, time.Now()), nil
}
