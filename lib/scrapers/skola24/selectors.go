package skola24

import "schedule-backend/lib/htmlutil"

// Selectors locate the values scraped during login, they are tied to the
// current markup of the sso pages.
var Selectors = struct {
	// link from the sso landing page to the municipality login
	NavButton htmlutil.Selector
	// link to the username/password login form
	BetaLogin htmlutil.Selector
	// tenant scope on the timetable viewer application shell
	Scope htmlutil.Selector
}{
	NavButton: htmlutil.Selector{Name: "nav button", Css: "a.navBtn", Attr: "href"},
	BetaLogin: htmlutil.Selector{Name: "beta login", Css: "a.beta", Attr: "href"},
	Scope:     htmlutil.Selector{Name: "nova widget scope", Css: "nova-widget", Attr: "scope"},
}
