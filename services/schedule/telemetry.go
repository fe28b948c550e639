package schedule

import (
	"schedule-backend/lib/telemetry"

	"go.opentelemetry.io/otel/metric"
)

const library_name = "schedule.services.schedule"

var tracer = telemetry.Tracer(library_name)
var meter = telemetry.Meter(library_name)

var loginCounter, _ = meter.Int64Counter(
	"schedule.logins",
	metric.WithDescription("Logins against the timetable portal by outcome."),
)

var lessonsFetchedCounter, _ = meter.Int64Counter(
	"schedule.lessons_fetched",
	metric.WithDescription("Lessons fetched from the timetable portal."),
)
