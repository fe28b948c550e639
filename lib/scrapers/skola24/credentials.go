package skola24

import (
	"net/http"
	"net/url"
	"strings"
)

// Credentials authenticate api calls against the portal, they stay valid
// for as long as the upstream sso session does.
type Credentials struct {
	// Cookies is a complete `Cookie` header value for the application origin.
	Cookies string `json:"cookies"`
	// Scope is the tenant token of the timetable application, sent as `X-Scope`.
	Scope string `json:"scope"`
}

func (c Credentials) Valid() bool {
	return c.Cookies != "" && c.Scope != ""
}

func (c Credentials) Headers() map[string]string {
	return map[string]string{
		"Cookie":  c.Cookies,
		"X-Scope": c.Scope,
	}
}

// cookieHeader serializes the cookies the jar would send to `origin`.
func cookieHeader(jar http.CookieJar, origin *url.URL) string {
	cookies := jar.Cookies(origin)
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, "; ")
}
