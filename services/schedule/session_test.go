package schedule

import (
	"encoding/base64"
	"errors"
	"schedule-backend/lib/scrapers/skola24"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testSession = Session{
	Credentials: skola24.Credentials{
		Cookies: "ASP.NET_SessionId=abc; SMSESSION=x/y+z==",
		Scope:   "8a22163c-8662-4535-9050-bc5e1923df48",
	},
	Timetable: skola24.Timetable{
		PersonGuid: "person-1",
		UnitGuid:   "unit-1",
		FirstName:  "Alva",
		LastName:   "Lind",
	},
}

func TestSessionRoundTrip(t *testing.T) {
	encoded, err := EncodeSession(testSession)
	require.NoError(t, err)
	require.NotContains(t, encoded, "=")
	require.NotContains(t, encoded, "+")
	require.NotContains(t, encoded, "/")

	decoded, err := DecodeSession(encoded)
	require.NoError(t, err)
	diff := cmp.Diff(testSession, decoded)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestDecodeSessionMalformed(t *testing.T) {
	encode := func(s string) string {
		return base64.RawURLEncoding.EncodeToString([]byte(s))
	}

	testCases := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "not base64", encoded: "!!!not-base64"},
		{name: "not json", encoded: encode("hello")},
		{name: "empty object", encoded: encode("{}")},
		{
			name:    "missing scope",
			encoded: encode(`{"credentials":{"cookies":"a=b"},"timetable":{"personGuid":"p","unitGuid":"u"}}`),
		},
		{
			name:    "missing unit guid",
			encoded: encode(`{"credentials":{"cookies":"a=b","scope":"s"},"timetable":{"personGuid":"p"}}`),
		},
		{
			name:    "wrong types",
			encoded: encode(`{"credentials":{"cookies":1,"scope":"s"},"timetable":{"personGuid":"p","unitGuid":"u"}}`),
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			_, err := DecodeSession(test.encoded)
			require.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
		})
	}
}
