package timezone

import (
	"fmt"
	"time"
)

// Location is the civil timezone the timetable portal reports wall-clock
// times in.
var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Stockholm")
	if err != nil {
		panic(err)
	}
}

// force timezone to be in Stockholm so that the current week is the one
// the schools see, regardless of where the server runs
func Now() time.Time {
	return time.Now().In(Location)
}

// IsoWeek is a (year, week) pair of the ISO-8601 week calendar.
type IsoWeek struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

func IsoWeekOf(t time.Time) IsoWeek {
	year, week := t.ISOWeek()
	return IsoWeek{Year: year, Week: week}
}

// WeeksInYear returns 52 or 53, the week containing Dec 28 is always the
// last ISO week of a year.
func WeeksInYear(year int) int {
	_, week := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}

func (w IsoWeek) Valid() bool {
	return w.Week >= 1 && w.Week <= WeeksInYear(w.Year)
}

func (w IsoWeek) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Week)
}

// ParseIsoWeek parses the `2024-W05` form.
func ParseIsoWeek(s string) (IsoWeek, error) {
	var w IsoWeek
	_, err := fmt.Sscanf(s, "%d-W%d", &w.Year, &w.Week)
	if err != nil {
		return IsoWeek{}, fmt.Errorf("parse iso week %q: %w", s, err)
	}
	if !w.Valid() {
		return IsoWeek{}, fmt.Errorf("parse iso week %q: week out of range", s)
	}
	return w, nil
}

// monday returns the date of the monday of the week at midnight UTC, UTC is
// used for the arithmetic so that DST transitions never shift the day.
func (w IsoWeek) monday() time.Time {
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	week1 := jan4.AddDate(0, 0, -offset)
	return week1.AddDate(0, 0, (w.Week-1)*7)
}

// Date returns the civil date (midnight UTC) of the given weekday in the week.
func (w IsoWeek) Date(weekday time.Weekday) time.Time {
	return w.monday().AddDate(0, 0, (int(weekday)+6)%7)
}

// At combines the civil date of `weekday` in the week with a wall-clock time
// of day and interprets it in Location.
func (w IsoWeek) At(weekday time.Weekday, clock time.Time) time.Time {
	date := w.Date(weekday)
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0,
		Location,
	)
}

func (w IsoWeek) Next() IsoWeek {
	return IsoWeekOf(w.monday().AddDate(0, 0, 7))
}

func (w IsoWeek) Compare(other IsoWeek) int {
	if w.Year != other.Year {
		if w.Year < other.Year {
			return -1
		}
		return 1
	}
	if w.Week < other.Week {
		return -1
	}
	if w.Week > other.Week {
		return 1
	}
	return 0
}

// WeeksBetween counts the weeks in the inclusive range [from, to], it is
// zero when from comes after to.
func WeeksBetween(from, to IsoWeek) int {
	if from.Compare(to) > 0 {
		return 0
	}
	days := to.monday().Sub(from.monday()).Hours() / 24
	return int(days)/7 + 1
}
