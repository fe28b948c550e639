package skola24

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Timetable identifies the schedule of a single student.
type Timetable struct {
	PersonGuid  string `json:"personGuid"`
	UnitGuid    string `json:"unitGuid"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	SchoolGuid  string `json:"schoolGuid"`
	SchoolID    string `json:"schoolID"`
	TimetableID string `json:"timetableID"`
}

func (t Timetable) Valid() bool {
	return t.PersonGuid != "" && t.UnitGuid != ""
}

func (t Timetable) Name() string {
	switch {
	case t.FirstName == "":
		return t.LastName
	case t.LastName == "":
		return t.FirstName
	}
	return t.FirstName + " " + t.LastName
}

type personalTimetablesRequest struct {
	GetPersonalTimetablesRequest struct {
		HostName string `json:"hostName"`
	} `json:"getPersonalTimetablesRequest"`
}

type personalTimetablesResponse struct {
	GetPersonalTimetablesResponse *struct {
		StudentTimetables []Timetable `json:"studentTimetables"`
	} `json:"getPersonalTimetablesResponse"`
}

// ListTimetables returns the timetables the credentials have access to.
func (c *Client) ListTimetables(ctx context.Context, creds Credentials) ([]Timetable, error) {
	ctx, span := tracer.Start(ctx, "ListTimetables")
	defer span.End()

	var req personalTimetablesRequest
	req.GetPersonalTimetablesRequest.HostName = c.endpoints.Host

	res, err := apiPost[personalTimetablesResponse](ctx, c, "personal timetables", c.endpoints.PersonalTimetables, creds, req)
	if err != nil {
		span.SetStatus(codes.Error, "failed to list timetables")
		return nil, err
	}
	if res.GetPersonalTimetablesResponse == nil {
		span.SetStatus(codes.Error, "missing getPersonalTimetablesResponse")
		return nil, protocolError("personal timetables", "missing getPersonalTimetablesResponse")
	}

	timetables := res.GetPersonalTimetablesResponse.StudentTimetables
	if timetables == nil {
		timetables = []Timetable{}
	}
	for _, t := range timetables {
		if !t.Valid() {
			span.SetStatus(codes.Error, "timetable without guids")
			return nil, protocolError("personal timetables", fmt.Sprintf("timetable %q has no person or unit guid", t.Name()))
		}
	}
	span.SetAttributes(attribute.Int("timetables", len(timetables)))
	return timetables, nil
}
