package timezone

import (
	"fmt"
	"time"

	"github.com/ncruces/go-strftime"
)

// DateLayout is the normalized form all scraped dates are re-emitted in.
const DateLayout = "2006-01-02"

// jurisdiction configs carry strptime-style format strings ("%m/%d/%Y"),
// the same notation the upstream sites document. translate once to a Go
// reference layout.
func Layout(strptimeFormat string) (string, error) {
	layout, err := strftime.Layout(strptimeFormat)
	if err != nil {
		return "", fmt.Errorf("bad datetime format %q: %w", strptimeFormat, err)
	}
	return layout, nil
}

func Load(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("bad timezone %q: %w", name, err)
	}
	return loc, nil
}

// Parse parses scraped text using a strptime-style format in the given
// location. scraped dates have no offset of their own, the location is
// the jurisdiction's.
func Parse(text, strptimeFormat string, loc *time.Location) (time.Time, error) {
	layout, err := Layout(strptimeFormat)
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(layout, text, loc)
}

// Normalize renders a parsed date in the normalized output form.
func Normalize(t time.Time) string {
	return t.Format(DateLayout)
}
