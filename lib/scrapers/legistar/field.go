package legistar

import (
	"net/url"
	"strings"
	"time"

	"legiscrape/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// FieldAccessor wraps one markup location and answers "what text or
// URLs are here" without the caller knowing whether it is a single
// element or a node set. accessors are created fresh per field lookup
// and discarded once the enclosing record is emitted.
type FieldAccessor interface {
	// Text is the whitespace-collapsed text of the location, cached
	// after the first walk.
	Text() string
	// Texts is every cell/element's text, document order.
	Texts() []string
	// URL is the first URL in the location; ok is false when the
	// location carries none. absence is "no value", not an error.
	URL() (href string, ok bool)
	// URLs is every URL in the location, document order.
	URLs() []string
	IsBlank() bool
}

// ElementAccessor binds one element (a table cell, a detail-page value
// span) within one fetched page.
type ElementAccessor struct {
	sel  *goquery.Selection
	base *url.URL

	text       string
	textCached bool
}

func NewElementAccessor(sel *goquery.Selection, base *url.URL) *ElementAccessor {
	return &ElementAccessor{sel: sel, base: base}
}

func (a *ElementAccessor) Text() string {
	if !a.textCached {
		a.text = htmlutil.SelectionText(a.sel)
		a.textCached = true
	}
	return a.text
}

func (a *ElementAccessor) Texts() []string {
	var out []string
	a.sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, htmlutil.SelectionText(s))
	})
	return out
}

func (a *ElementAccessor) URL() (string, bool) {
	urls := a.URLs()
	if len(urls) == 0 {
		return "", false
	}
	return urls[0], true
}

func (a *ElementAccessor) URLs() []string {
	anchors := a.sel.Find("a")
	if a.sel.Is("a") {
		anchors = anchors.AddSelection(a.sel)
	}

	var out []string
	for _, anchor := range htmlutil.GetAnchors(anchors, a.base) {
		if anchor.Href == "" || strings.HasPrefix(anchor.Href, "javascript:") {
			continue
		}
		out = append(out, anchor.Href)
	}
	return out
}

func (a *ElementAccessor) IsBlank() bool {
	return a.Text() == ""
}

// FieldAggregator resolves logical field names against one record's
// field-data index using the jurisdiction's configured label text.
type FieldAggregator struct {
	cfg    *Config
	labels map[string]string
	data   map[string]FieldAccessor
}

// NewFieldAggregator binds a label map (logical field -> configured
// label text) to one record's label-indexed field data.
func NewFieldAggregator(cfg *Config, labels map[string]string, data map[string]FieldAccessor) *FieldAggregator {
	return &FieldAggregator{cfg: cfg, labels: labels, data: data}
}

// LabelText resolves a logical field name to its configured label text.
// a missing entry is a configuration bug, not a scraping-target quirk.
func (f *FieldAggregator) LabelText(key string) (string, error) {
	label, ok := f.labels[key]
	if !ok || label == "" {
		return "", configMissing("label for field " + key)
	}
	return label, nil
}

// FieldData looks a logical field up in the record's field index. the
// label being absent from this particular page is common (not every
// jurisdiction exposes every field) and yields ErrSkipItem.
func (f *FieldAggregator) FieldData(key string) (FieldAccessor, error) {
	label, err := f.LabelText(key)
	if err != nil {
		return nil, err
	}
	data, ok := f.data[label]
	if !ok {
		return nil, ErrSkipItem
	}
	return data, nil
}

// FieldText returns a field's text; a present-but-blank field is "no
// value" (empty string, no error).
func (f *FieldAggregator) FieldText(key string) (string, error) {
	data, err := f.FieldData(key)
	if err != nil {
		return "", err
	}
	if data.IsBlank() {
		return "", nil
	}
	return data.Text(), nil
}

// FieldURL returns a field's first URL; a field with no link is "no
// value" (empty string, no error).
func (f *FieldAggregator) FieldURL(key string) (string, error) {
	data, err := f.FieldData(key)
	if err != nil {
		return "", err
	}
	href, ok := data.URL()
	if !ok {
		return "", nil
	}
	return href, nil
}

// FieldDate parses a field's text with the jurisdiction's date format.
// blank text skips the field.
func (f *FieldAggregator) FieldDate(key string) (time.Time, error) {
	text, err := f.FieldText(key)
	if err != nil {
		return time.Time{}, err
	}
	if text == "" {
		return time.Time{}, ErrSkipItem
	}
	return f.cfg.ParseDate(text)
}

// FieldDatetime is FieldDate with the datetime format.
func (f *FieldAggregator) FieldDatetime(key string) (time.Time, error) {
	text, err := f.FieldText(key)
	if err != nil {
		return time.Time{}, err
	}
	if text == "" {
		return time.Time{}, ErrSkipItem
	}
	return f.cfg.ParseDatetime(text)
}

func (f *FieldAggregator) Config() *Config {
	return f.cfg
}
