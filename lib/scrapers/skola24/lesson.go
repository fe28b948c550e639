package skola24

import (
	"fmt"
	"schedule-backend/lib/timezone"
	"strings"
	"time"
)

const clockLayout = "15:04:05"

// ExternalLesson is a lesson as the render endpoint reports it.
type ExternalLesson struct {
	GuidID string `json:"guidId"`
	// Texts holds the course, then optionally the teacher, then optionally
	// the location.
	Texts           []string `json:"texts"`
	TimeStart       string   `json:"timeStart"`
	TimeEnd         string   `json:"timeEnd"`
	DayOfWeekNumber int      `json:"dayOfWeekNumber"`
	BlockName       string   `json:"blockName"`
}

// Weekday maps DayOfWeekNumber (1 is monday, 7 is sunday) to a weekday.
func (l ExternalLesson) Weekday() (time.Weekday, bool) {
	if l.DayOfWeekNumber < 1 || l.DayOfWeekNumber > 7 {
		return 0, false
	}
	return time.Weekday(l.DayOfWeekNumber % 7), true
}

// Lesson is a single calendar event, Start and End are in UTC.
type Lesson struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Course   string    `json:"course"`
	Teacher  *string   `json:"teacher"`
	Location *string   `json:"location"`
}

func optionalText(texts []string, i int) *string {
	if i >= len(texts) {
		return nil
	}
	text := strings.TrimSpace(texts[i])
	if text == "" {
		return nil
	}
	return &text
}

// Normalize places the lesson in the given week. The returned bool is false
// when the record does not fall on a weekday and should be skipped.
func (l ExternalLesson) Normalize(week timezone.IsoWeek) (Lesson, bool, error) {
	weekday, ok := l.Weekday()
	if !ok {
		return Lesson{}, false, nil
	}
	if len(l.Texts) == 0 {
		return Lesson{}, false, fmt.Errorf("%w: lesson %q has no texts", ErrParse, l.GuidID)
	}
	// a blank course is kept as is
	course := strings.TrimSpace(l.Texts[0])

	start, err := time.Parse(clockLayout, l.TimeStart)
	if err != nil {
		return Lesson{}, false, fmt.Errorf("%w: start time: %w", ErrParse, err)
	}
	end, err := time.Parse(clockLayout, l.TimeEnd)
	if err != nil {
		return Lesson{}, false, fmt.Errorf("%w: end time: %w", ErrParse, err)
	}

	lesson := Lesson{
		Start:    week.At(weekday, start).UTC(),
		End:      week.At(weekday, end).UTC(),
		Course:   course,
		Teacher:  optionalText(l.Texts, 1),
		Location: optionalText(l.Texts, 2),
	}
	if !lesson.End.After(lesson.Start) {
		return Lesson{}, false, fmt.Errorf(
			"%w: lesson %q ends (%s) before it starts (%s)",
			ErrParse, l.GuidID, l.TimeEnd, l.TimeStart,
		)
	}
	return lesson, true, nil
}
