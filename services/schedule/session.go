package schedule

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"schedule-backend/lib/scrapers/skola24"
)

// Session is everything needed to call the portal on behalf of a user, it
// only ever lives inside a signed token.
type Session struct {
	Credentials skola24.Credentials `json:"credentials"`
	Timetable   skola24.Timetable   `json:"timetable"`
}

func (s Session) Valid() bool {
	return s.Credentials.Valid() && s.Timetable.Valid()
}

// EncodeSession serializes a session into an opaque string that is safe to
// use in headers and urls.
func EncodeSession(session Session) (string, error) {
	serialized, err := json.Marshal(session)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(serialized), nil
}

func DecodeSession(encoded string) (Session, error) {
	serialized, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Session{}, fmt.Errorf("%w: decode session: %w", ErrInvalidToken, err)
	}
	var session Session
	err = json.Unmarshal(serialized, &session)
	if err != nil {
		return Session{}, fmt.Errorf("%w: unmarshal session: %w", ErrInvalidToken, err)
	}
	if !session.Valid() {
		return Session{}, fmt.Errorf("%w: session is incomplete", ErrInvalidToken)
	}
	return session, nil
}
