package htmlutil

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const samlPage = `<!DOCTYPE html>
<html>
<body onload="document.forms[0].submit()">
	<form method="post" action="https://login001.stockholm.se/affwebservices/public/saml2sso">
		<input type="hidden" name="SAMLRequest" value="PHNhbWxwOkF1dGhu" />
		<input type="hidden" name="RelayState" value="ss:mem:abc" />
		<input type="checkbox" name="remember" />
		<input type="submit" value="Continue" />
	</form>
	<form>
		<input name="other" value="ignored" />
	</form>
</body>
</html>`

func TestFirstForm(t *testing.T) {
	form, ok := FirstFormFromHtml([]byte(samlPage))
	require.True(t, ok)

	diff := cmp.Diff(map[string]string{
		"SAMLRequest": "PHNhbWxwOkF1dGhu",
		"RelayState":  "ss:mem:abc",
	}, form.Map())
	if diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, []string{"SAMLRequest", "RelayState"}, form.Names())
}

func TestFirstFormDuplicateNames(t *testing.T) {
	form, ok := FirstFormFromHtml([]byte(`<form>
		<input name="a" value="1">
		<input name="b" value="2">
		<input name="a" value="3">
	</form>`))
	require.True(t, ok)
	require.Equal(t, map[string]string{"a": "3", "b": "2"}, form.Map())
	require.Equal(t, []string{"a", "b"}, form.Names())
}

func TestFirstFormNested(t *testing.T) {
	form, ok := FirstFormFromHtml([]byte(`<form><div><p>
		<input name="nested" value="yes">
	</p></div></form>`))
	require.True(t, ok)
	value, ok := form.Get("nested")
	require.True(t, ok)
	require.Equal(t, "yes", value)
}

func TestFirstFormMissing(t *testing.T) {
	form, ok := FirstFormFromHtml([]byte(`<html><body><p class="error">Felaktigt användarnamn eller lösenord</p></body></html>`))
	require.False(t, ok)
	require.Nil(t, form)
}

func TestFirstFormEmptyValue(t *testing.T) {
	form, ok := FirstFormFromHtml([]byte(`<form><input name="empty" value=""></form>`))
	require.True(t, ok)
	require.Equal(t, map[string]string{"empty": ""}, form.Map())
}

func TestFormValues(t *testing.T) {
	form := NewForm()
	form.Set("user", "alice")
	form.Set("password", "hunter2")
	form.Set("submit", "")
	form.Set("user", "bob")

	require.Equal(t, 3, form.Len())
	require.Equal(t, url.Values{
		"user":     {"bob"},
		"password": {"hunter2"},
		"submit":   {""},
	}, form.Values())
}

func TestSelectorExtract(t *testing.T) {
	doc, err := Parse([]byte(`<div>
		<a class="navBtn" href="  login.jsp?x=1 ">Logga in</a>
		<a class="navBtn" href="second.jsp">Second</a>
		<a class="beta">No href</a>
		<nova-widget scope="8a22163c-8662-4535-9050-bc5e1923df48"></nova-widget>
	</div>`))
	if err != nil {
		t.Fatal(err)
	}

	href, ok := Selector{Name: "nav", Css: "a.navBtn", Attr: "href"}.Extract(doc)
	require.True(t, ok)
	require.Equal(t, "login.jsp?x=1", href)

	_, ok = Selector{Name: "beta", Css: "a.beta", Attr: "href"}.Extract(doc)
	require.False(t, ok)

	_, ok = Selector{Name: "missing", Css: "a.missing", Attr: "href"}.Extract(doc)
	require.False(t, ok)

	scope, ok := Selector{Name: "scope", Css: "nova-widget", Attr: "scope"}.Extract(doc)
	require.True(t, ok)
	require.Equal(t, "8a22163c-8662-4535-9050-bc5e1923df48", scope)
}
