package restyutil

import (
	"net/http"
	"net/url"
	"strings"
)

const redacted = "<redacted>"

var sensitiveHeaders = map[string]struct{}{
	"Cookie":        {},
	"Set-Cookie":    {},
	"X-Scope":       {},
	"Authorization": {},
}

var sensitiveFormFields = []string{"password"}

// RedactHeader returns the values of a header with session material replaced.
func RedactHeader(name string, values []string) []string {
	_, sensitive := sensitiveHeaders[http.CanonicalHeaderKey(name)]
	if !sensitive {
		return values
	}
	out := make([]string, len(values))
	for i := range values {
		out[i] = redacted
	}
	return out
}

// RedactBody blanks out password fields in urlencoded form bodies, other
// content types are returned as is.
func RedactBody(contentType, body string) string {
	if !strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		return body
	}
	values, err := url.ParseQuery(body)
	if err != nil {
		return body
	}
	changed := false
	for _, field := range sensitiveFormFields {
		if values.Has(field) {
			values.Set(field, redacted)
			changed = true
		}
	}
	if !changed {
		return body
	}
	return values.Encode()
}
