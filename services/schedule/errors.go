package schedule

import "errors"

var (
	// ErrInvalidToken is a bearer token that is malformed, expired or not
	// signed by this server.
	ErrInvalidToken = errors.New("schedule: invalid token")

	ErrTimetableNotFound = errors.New("schedule: timetable not found")
)
