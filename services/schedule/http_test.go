package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"schedule-backend/lib/scrapers/skola24"
	"schedule-backend/lib/timezone"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func setupHttp(t testing.TB) (*resty.Client, *fakeUpstream, Service) {
	service, upstream := setupService(t, Options{})
	server := httptest.NewServer(NewHandler(service, HandlerOptions{
		AllowedOrigins: []string{"https://schema.example"},
		RequestTimeout: 10 * time.Second,
	}))
	t.Cleanup(server.Close)

	client := resty.New().SetBaseURL(server.URL)
	return client, upstream, service
}

func TestStatusFromError(t *testing.T) {
	testCases := []struct {
		err    error
		status int
	}{
		{err: fmt.Errorf("%w: year", errBadRequest), status: http.StatusBadRequest},
		{err: fmt.Errorf("wrapped: %w", skola24.ErrInvalidRange), status: http.StatusBadRequest},
		{err: skola24.ErrInvalidUsernamePassword, status: http.StatusBadRequest},
		{err: fmt.Errorf("%w: expired", ErrInvalidToken), status: http.StatusUnauthorized},
		{err: skola24.ErrUnauthorized, status: http.StatusUnauthorized},
		{err: ErrTimetableNotFound, status: http.StatusNotFound},
		{err: skola24.ErrScraping, status: http.StatusInternalServerError},
		{err: skola24.ErrNetwork, status: http.StatusInternalServerError},
		{err: skola24.ErrParse, status: http.StatusInternalServerError},
		{err: errors.New("anything else"), status: http.StatusInternalServerError},
	}

	for _, test := range testCases {
		status, message := statusFromError(test.err)
		require.Equal(t, test.status, status, "%v", test.err)
		if status == http.StatusInternalServerError {
			require.Equal(t, "internal error", message)
		}
	}
}

func TestLiveness(t *testing.T) {
	client, _, _ := setupHttp(t)

	res, err := client.R().Get("/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())
	require.Equal(t, "ok", res.String())

	res, err = client.R().Get("/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())
}

func TestHttpAuth(t *testing.T) {
	client, _, service := setupHttp(t)

	var body authResponse
	res, err := client.R().
		SetBody(authRequest{Username: "elev01", Password: "hunter2"}).
		SetResult(&body).
		Post("/auth")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode(), res.String())

	session, err := service.tokens.Verify(body.Token)
	require.NoError(t, err)
	require.Equal(t, testSession, session)

	res, err = client.R().
		SetBody(authRequest{Username: "elev01", Password: "wrong"}).
		Post("/auth")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, res.StatusCode())

	res, err = client.R().
		SetBody(authRequest{Username: "elev01", Password: "hunter2", Timetable: "nobody at all"}).
		Post("/auth")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, res.StatusCode())

	res, err = client.R().
		SetHeader("Content-Type", "application/json").
		SetBody("{not json").
		Post("/auth")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, res.StatusCode())
}

func TestHttpLessons(t *testing.T) {
	client, upstream, service := setupHttp(t)

	week := timezone.IsoWeek{Year: 2024, Week: 3}
	upstream.lessons[week] = []skola24.Lesson{
		lessonAt("Matematik 1c", time.Date(2024, time.January, 15, 7, 0, 0, 0, time.UTC)),
	}
	upstream.lessons[week.Next()] = []skola24.Lesson{
		lessonAt("Engelska 6", time.Date(2024, time.January, 22, 7, 0, 0, 0, time.UTC)),
	}
	token, err := service.tokens.Issue(testSession)
	require.NoError(t, err)

	res, err := client.R().
		SetAuthToken(token).
		SetQueryParams(map[string]string{"year": "2024", "week": "3"}).
		Get("/lessons")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode(), res.String())

	var lessons []map[string]any
	require.NoError(t, json.Unmarshal(res.Body(), &lessons))
	require.Len(t, lessons, 1)
	require.Equal(t, "Matematik 1c", lessons[0]["course"])
	require.Equal(t, "2024-01-15T07:00:00Z", lessons[0]["start"])
	require.Contains(t, lessons[0], "teacher")
	require.Nil(t, lessons[0]["teacher"])

	res, err = client.R().
		SetAuthToken(token).
		SetQueryParams(map[string]string{"from": "2024-W03", "to": "2024-W04"}).
		Get("/lessons")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode(), res.String())
	require.NoError(t, json.Unmarshal(res.Body(), &lessons))
	require.Len(t, lessons, 2)

	res, err = client.R().
		SetAuthToken(token).
		SetQueryParams(map[string]string{"year": "2024", "week": "9"}).
		Get("/lessons")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())
	require.Equal(t, "[]\n", res.String())
}

func TestHttpLessonsBadRequest(t *testing.T) {
	client, upstream, service := setupHttp(t)
	token, err := service.tokens.Issue(testSession)
	require.NoError(t, err)

	testCases := []map[string]string{
		{"year": "2024"},
		{"year": "abc", "week": "3"},
		{"year": "2024", "week": "54"},
		{"from": "2024-03"},
		{"from": "2024-W05", "to": "2024-W04"},
		{"from": "2023-W01", "to": "2025-W01"},
	}
	for _, params := range testCases {
		res, err := client.R().
			SetAuthToken(token).
			SetQueryParams(params).
			Get("/lessons")
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, res.StatusCode(), "%v: %s", params, res.String())
	}
	require.Equal(t, 0, upstream.count("GetLessonsForWeek"))
}

func TestHttpUnauthorized(t *testing.T) {
	client, upstream, service := setupHttp(t)

	for _, path := range []string{"/lessons", "/lessons.ics", "/timetables"} {
		res, err := client.R().Get(path)
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, res.StatusCode(), path)

		res, err = client.R().SetAuthToken("garbage").Get(path)
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, res.StatusCode(), path)
	}
	require.Equal(t, 0, upstream.total())

	token, err := service.tokens.Issue(testSession)
	require.NoError(t, err)
	upstream.err = skola24.ErrUnauthorized
	res, err := client.R().SetAuthToken(token).Get("/timetables")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode())

	upstream.err = fmt.Errorf("render: %w: boom", skola24.ErrProtocol)
	res, err = client.R().SetAuthToken(token).Get("/timetables")
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, res.StatusCode())
	require.NotContains(t, res.String(), "boom")
}

func TestHttpTimetables(t *testing.T) {
	client, _, service := setupHttp(t)
	token, err := service.tokens.Issue(testSession)
	require.NoError(t, err)

	var timetables []skola24.Timetable
	res, err := client.R().
		SetAuthToken(token).
		SetResult(&timetables).
		Get("/timetables")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())
	require.Equal(t, []skola24.Timetable{testSession.Timetable}, timetables)
}

func TestHttpLessonsIcs(t *testing.T) {
	client, upstream, service := setupHttp(t)
	upstream.lessons[timezone.IsoWeek{Year: 2024, Week: 3}] = []skola24.Lesson{
		lessonAt("Matematik 1c", time.Date(2024, time.January, 15, 7, 0, 0, 0, time.UTC)),
	}
	token, err := service.tokens.Issue(testSession)
	require.NoError(t, err)

	res, err := client.R().
		SetAuthToken(token).
		SetQueryParam("from", "2024-W03").
		Get("/lessons.ics")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode(), res.String())
	require.True(t, strings.HasPrefix(res.Header().Get("Content-Type"), "text/calendar"))
	require.Contains(t, res.String(), "SUMMARY:Matematik 1c")
	require.Equal(t, 1, upstream.count("GetLessonsForWeek"))
}

func TestCORS(t *testing.T) {
	client, _, _ := setupHttp(t)

	res, err := client.R().
		SetHeader("Origin", "https://schema.example").
		Options("/lessons")
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, res.StatusCode())
	require.Equal(t, "https://schema.example", res.Header().Get("Access-Control-Allow-Origin"))

	res, err = client.R().
		SetHeader("Origin", "https://evil.example").
		Get("/")
	require.NoError(t, err)
	require.Empty(t, res.Header().Get("Access-Control-Allow-Origin"))
}
