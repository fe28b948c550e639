package htmlutil

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func Parse(contents []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(contents))
}

// Selector names a single value scraped out of a page: the attribute `Attr`
// of the first element matching `Css`.
type Selector struct {
	Name string
	Css  string
	Attr string
}

// Extract returns the attribute value of the first element matching the
// selector, false if there is no such element or it lacks the attribute.
func (s Selector) Extract(doc *goquery.Document) (string, bool) {
	sel := doc.Find(s.Css).First()
	if sel.Length() == 0 {
		return "", false
	}
	value, ok := sel.Attr(s.Attr)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

// Form is a set of form fields which remembers the order in which they were
// first seen.
type Form struct {
	names  []string
	values map[string]string
}

func NewForm() *Form {
	return &Form{values: map[string]string{}}
}

func (f *Form) Set(name, value string) {
	_, exists := f.values[name]
	if !exists {
		f.names = append(f.names, name)
	}
	f.values[name] = value
}

func (f *Form) Get(name string) (string, bool) {
	v, ok := f.values[name]
	return v, ok
}

func (f *Form) Len() int {
	return len(f.names)
}

// Names returns the field names in source order.
func (f *Form) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

func (f *Form) Map() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

func (f *Form) Values() url.Values {
	out := make(url.Values, len(f.values))
	for _, name := range f.names {
		out.Set(name, f.values[name])
	}
	return out
}

// FirstForm collects the inputs of the first <form> in the document. Only
// inputs that carry both a name and a value attribute are kept, a repeated
// name keeps the last value. false is returned if there is no form at all.
func FirstForm(doc *goquery.Document) (*Form, bool) {
	form := doc.Find("form").First()
	if form.Length() == 0 {
		return nil, false
	}

	out := NewForm()
	form.Find("input").Each(func(_ int, input *goquery.Selection) {
		name, ok := input.Attr("name")
		if !ok {
			return
		}
		value, ok := input.Attr("value")
		if !ok {
			return
		}
		out.Set(name, value)
	})
	return out, true
}

// FirstFormFromHtml is FirstForm on raw html.
func FirstFormFromHtml(contents []byte) (*Form, bool) {
	doc, err := Parse(contents)
	if err != nil {
		return nil, false
	}
	return FirstForm(doc)
}
