package skola24

import (
	"context"
	"fmt"
	"log/slog"
	"schedule-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func getDocument(ctx context.Context, http *resty.Client, step, link string) (*goquery.Document, error) {
	res, err := http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, networkError(step, err)
	}
	if res.IsError() {
		return nil, scrapingError(step, fmt.Sprintf("got status %d", res.StatusCode()))
	}
	doc, err := htmlutil.Parse(res.Body())
	if err != nil {
		return nil, scrapingError(step, err.Error())
	}
	return doc, nil
}

func extract(doc *goquery.Document, step string, sel htmlutil.Selector) (string, error) {
	value, ok := sel.Extract(doc)
	if !ok || value == "" {
		return "", scrapingError(step, fmt.Sprintf("could not find %s (%s[%s])", sel.Name, sel.Css, sel.Attr))
	}
	return value, nil
}

// postForm submits a form and returns the first form of the response. The
// identity provider only renders a continuation form when it accepted the
// login, so a response without one is a rejected username or password.
func postForm(ctx context.Context, http *resty.Client, step, link string, form *htmlutil.Form) (*htmlutil.Form, error) {
	res, err := http.R().
		SetContext(ctx).
		SetFormDataFromValues(form.Values()).
		Post(link)
	if err != nil {
		return nil, networkError(step, err)
	}
	next, ok := htmlutil.FirstFormFromHtml(res.Body())
	if !ok {
		return nil, fmt.Errorf("%s: %w", step, ErrInvalidUsernamePassword)
	}
	return next, nil
}

// AcquireCredentials performs the sso login sequence with a username and
// password and returns the credentials of the resulting session. Each step
// depends on state (cookies, hidden form fields) left by the previous one,
// nothing is retried.
func (c *Client) AcquireCredentials(ctx context.Context, username, password string) (Credentials, error) {
	ctx, span := tracer.Start(ctx, "AcquireCredentials")
	defer span.End()

	fail := func(err error, msg string) (Credentials, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		return Credentials{}, err
	}

	http, jar, err := c.newLoginSession()
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrInternal, err), "failed to create login session")
	}

	doc, err := getDocument(ctx, http, "sso authenticate", c.endpoints.SSOAuthenticate)
	if err != nil {
		return fail(err, "failed to fetch sso landing page")
	}
	href, err := extract(doc, "sso authenticate", Selectors.NavButton)
	if err != nil {
		return fail(err, "failed to find login navigation")
	}
	link, err := c.loginFormUrl(href)
	if err != nil {
		return fail(scrapingError("sso authenticate", err.Error()), "failed to resolve login navigation")
	}
	span.AddEvent("navigation resolved")

	doc, err = getDocument(ctx, http, "login selection", link)
	if err != nil {
		return fail(err, "failed to fetch login selection")
	}
	href, err = extract(doc, "login selection", Selectors.BetaLogin)
	if err != nil {
		return fail(err, "failed to find login form link")
	}
	link, err = c.loginFormUrl(href)
	if err != nil {
		return fail(scrapingError("login selection", err.Error()), "failed to resolve login form link")
	}

	doc, err = getDocument(ctx, http, "login form", link)
	if err != nil {
		return fail(err, "failed to fetch login form")
	}
	form, ok := htmlutil.FirstForm(doc)
	if !ok {
		return fail(scrapingError("login form", "page has no form"), "failed to find login form")
	}
	span.AddEvent("login form", trace.WithAttributes(attribute.Int("fields", form.Len())))

	form.Set("user", username)
	form.Set("password", password)
	form.Set("submit", "")

	form, err = postForm(ctx, http, "login submit", c.endpoints.LoginSubmit, form)
	if err != nil {
		return fail(err, "login was not accepted")
	}
	form, err = postForm(ctx, http, "saml assertion", c.endpoints.SAMLAssertion, form)
	if err != nil {
		return fail(err, "saml assertion was not accepted")
	}
	span.AddEvent("identity provider accepted login")

	// only advances cookie state, the body has nothing of interest
	_, err = http.R().
		SetContext(ctx).
		SetFormDataFromValues(form.Values()).
		Post(c.endpoints.SSOResponse)
	if err != nil {
		return fail(networkError("sso response", err), "failed to post sso response")
	}

	doc, err = getDocument(ctx, http, "timetable viewer", c.endpoints.TimetableViewer)
	if err != nil {
		return fail(err, "failed to fetch timetable viewer")
	}
	scope, err := extract(doc, "timetable viewer", Selectors.Scope)
	if err != nil {
		return fail(err, "failed to find scope")
	}

	cookies := cookieHeader(jar, c.cookieUrl)
	if cookies == "" {
		err := fmt.Errorf("%w: no cookies for %s", ErrInternal, c.cookieUrl.String())
		return fail(err, "cookie jar is empty for application origin")
	}

	slog.DebugContext(ctx, "acquired skola24 credentials", "origin", c.cookieUrl.String())
	return Credentials{Cookies: cookies, Scope: scope}, nil
}
