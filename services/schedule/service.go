package schedule

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"schedule-backend/lib/scrapers/skola24"
	"schedule-backend/lib/timezone"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// Upstream is the part of the portal client the service depends on.
type Upstream interface {
	AcquireCredentials(ctx context.Context, username, password string) (skola24.Credentials, error)
	ListTimetables(ctx context.Context, creds skola24.Credentials) ([]skola24.Timetable, error)
	GetLessonsForWeek(ctx context.Context, creds skola24.Credentials, timetable skola24.Timetable, week timezone.IsoWeek) ([]skola24.Lesson, error)
}

type Options struct {
	Tokens TokenIssuer
	// LessonCacheSize is the amount of (timetable, week) pairs kept in
	// memory, 0 disables the cache.
	LessonCacheSize int
	LessonCacheTTL  time.Duration
}

type Service struct {
	upstream    Upstream
	tokens      TokenIssuer
	lessonCache *expirable.LRU[string, []skola24.Lesson]
}

func NewService(upstream Upstream, opts Options) Service {
	s := Service{
		upstream: upstream,
		tokens:   opts.Tokens,
	}
	if opts.LessonCacheSize > 0 {
		ttl := opts.LessonCacheTTL
		if ttl <= 0 {
			ttl = 10 * time.Minute
		}
		s.lessonCache = expirable.NewLRU[string, []skola24.Lesson](opts.LessonCacheSize, nil, ttl)
	}
	return s
}

// Authenticate logs into the portal and returns a bearer token bound to the
// timetable chosen by `selector` (see SelectTimetable).
func (s Service) Authenticate(ctx context.Context, username, password, selector string) (string, error) {
	ctx, span := tracer.Start(ctx, "Authenticate")
	defer span.End()

	outcome := "error"
	defer func() {
		loginCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}()

	if username == "" || password == "" {
		outcome = "rejected"
		span.SetStatus(codes.Error, "missing username or password")
		return "", fmt.Errorf("%w: username and password are required", skola24.ErrInvalidUsernamePassword)
	}

	creds, err := s.upstream.AcquireCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, skola24.ErrInvalidUsernamePassword) {
			outcome = "rejected"
		}
		span.SetStatus(codes.Error, "failed to acquire credentials")
		return "", err
	}

	timetables, err := s.upstream.ListTimetables(ctx, creds)
	if err != nil {
		span.SetStatus(codes.Error, "failed to list timetables")
		return "", err
	}
	timetable, err := SelectTimetable(timetables, selector)
	if err != nil {
		span.SetStatus(codes.Error, "failed to select timetable")
		return "", err
	}
	if !timetable.Valid() {
		span.SetStatus(codes.Error, "timetable without guids")
		return "", fmt.Errorf("%w: timetable %q has no person or unit guid", skola24.ErrProtocol, timetable.Name())
	}

	token, err := s.tokens.Issue(Session{Credentials: creds, Timetable: timetable})
	if err != nil {
		span.SetStatus(codes.Error, "failed to issue token")
		return "", fmt.Errorf("%w: issue token: %w", skola24.ErrInternal, err)
	}

	outcome = "ok"
	slog.InfoContext(ctx, "authenticated", "timetables", len(timetables))
	return token, nil
}

func (s Service) session(ctx context.Context, token string) (Session, error) {
	session, err := s.tokens.Verify(token)
	if err != nil {
		slog.DebugContext(ctx, "rejected token", "err", err)
		return Session{}, err
	}
	return session, nil
}

// lessonCacheKey scopes cached weeks to the credentials that fetched them,
// other logins for the same timetable go to the portal themselves.
func lessonCacheKey(session Session, week timezone.IsoWeek) string {
	digest := sha256.Sum256([]byte(session.Credentials.Scope + "\n" + session.Credentials.Cookies))
	return hex.EncodeToString(digest[:8]) + "/" +
		session.Timetable.UnitGuid + "/" + session.Timetable.PersonGuid + "/" + week.String()
}

func (s Service) lessonsForWeek(ctx context.Context, session Session, week timezone.IsoWeek) ([]skola24.Lesson, error) {
	key := lessonCacheKey(session, week)
	if s.lessonCache != nil {
		cached, hit := s.lessonCache.Get(key)
		if hit {
			return slices.Clone(cached), nil
		}
	}

	lessons, err := s.upstream.GetLessonsForWeek(ctx, session.Credentials, session.Timetable, week)
	if err != nil {
		return nil, err
	}
	lessonsFetchedCounter.Add(ctx, int64(len(lessons)))

	if s.lessonCache != nil {
		s.lessonCache.Add(key, slices.Clone(lessons))
	}
	return lessons, nil
}

// GetLessons returns the lessons of a single iso week.
func (s Service) GetLessons(ctx context.Context, token string, year, week int) ([]skola24.Lesson, error) {
	ctx, span := tracer.Start(ctx, "GetLessons")
	defer span.End()

	session, err := s.session(ctx, token)
	if err != nil {
		span.SetStatus(codes.Error, "invalid token")
		return nil, err
	}

	isoWeek := timezone.IsoWeek{Year: year, Week: week}
	if !isoWeek.Valid() {
		span.SetStatus(codes.Error, "invalid week")
		return nil, fmt.Errorf("%w: %s", skola24.ErrInvalidRange, isoWeek)
	}
	span.SetAttributes(attribute.String("custom.week", isoWeek.String()))

	lessons, err := s.lessonsForWeek(ctx, session, isoWeek)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch lessons")
		return nil, err
	}
	return lessons, nil
}

// GetLessonsRange returns the lessons of every week in [from, to], weeks
// are fetched one after the other.
func (s Service) GetLessonsRange(ctx context.Context, token string, from, to timezone.IsoWeek) ([]skola24.Lesson, error) {
	ctx, span := tracer.Start(ctx, "GetLessonsRange")
	defer span.End()

	session, err := s.session(ctx, token)
	if err != nil {
		span.SetStatus(codes.Error, "invalid token")
		return nil, err
	}
	err = skola24.ValidateRange(from, to)
	if err != nil {
		span.SetStatus(codes.Error, "invalid range")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("custom.from", from.String()),
		attribute.String("custom.to", to.String()),
	)

	lessons := []skola24.Lesson{}
	for week := from; week.Compare(to) <= 0; week = week.Next() {
		weekLessons, err := s.lessonsForWeek(ctx, session, week)
		if err != nil {
			span.SetStatus(codes.Error, "failed to fetch lessons")
			return nil, err
		}
		lessons = append(lessons, weekLessons...)
	}
	return lessons, nil
}

// Timetables lists the timetables visible to the token's credentials.
func (s Service) Timetables(ctx context.Context, token string) ([]skola24.Timetable, error) {
	ctx, span := tracer.Start(ctx, "Timetables")
	defer span.End()

	session, err := s.session(ctx, token)
	if err != nil {
		span.SetStatus(codes.Error, "invalid token")
		return nil, err
	}
	timetables, err := s.upstream.ListTimetables(ctx, session.Credentials)
	if err != nil {
		span.SetStatus(codes.Error, "failed to list timetables")
		return nil, err
	}
	return timetables, nil
}
