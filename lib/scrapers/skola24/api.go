package skola24

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type apiEnvelope[T any] struct {
	Data *T `json:"data"`
}

// apiPost sends a json request to one of the portal's api endpoints and
// unwraps the `data` envelope of its response.
func apiPost[Output any](ctx context.Context, c *Client, step, link string, creds Credentials, input any) (Output, error) {
	ctx, span := tracer.Start(ctx, "apiPost")
	defer span.End()
	span.SetAttributes(attribute.String("custom.step", step))

	var defaultOut Output

	body, err := json.Marshal(input)
	if err != nil {
		span.SetStatus(codes.Error, "failed to serialize json request")
		return defaultOut, fmt.Errorf("%s: %w: %w", step, ErrInternal, err)
	}

	res, err := c.api.R().
		SetContext(ctx).
		SetHeaders(creds.Headers()).
		SetHeader("content-type", "application/json").
		SetBody(body).
		Post(link)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch")
		return defaultOut, networkError(step, err)
	}

	switch res.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		span.SetStatus(codes.Error, "credentials rejected")
		return defaultOut, fmt.Errorf("%s: %w (status %d)", step, ErrUnauthorized, res.StatusCode())
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "unexpected status")
		return defaultOut, protocolError(step, fmt.Sprintf("got status %d", res.StatusCode()))
	}

	var result apiEnvelope[Output]
	err = json.Unmarshal(res.Body(), &result)
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse json response")
		return defaultOut, protocolError(step, err.Error())
	}
	if result.Data == nil {
		span.SetStatus(codes.Error, "response has no data")
		return defaultOut, protocolError(step, "response has no data")
	}

	return *result.Data, nil
}
