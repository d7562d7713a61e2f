package legistar

import (
	"fmt"
	"time"

	"legiscrape/lib/configutil"
	"legiscrape/lib/timezone"
)

// Config is one jurisdiction's scraping configuration, read from a
// json5 file and validated at load time. anything structural about a
// legistar deployment that varies between jurisdictions lives here:
// control names, field label text, date formats, table selectors.
type Config struct {
	Name           string `json:"name"`
	BaseUrl        string `json:"base_url"`
	Timezone       string `json:"timezone"`
	DatetimeFormat string `json:"datetime_format"`
	DateFormat     string `json:"date_format"`

	// whether a record whose every field was skipped is still emitted
	EmitEmptyRecords bool `json:"emit_empty_records"`

	// whether people get a synthesized membership in the legislature-wide
	// org when the site doesn't list one
	CreateLegislatureMembership bool   `json:"create_legislature_membership"`
	TopLevelOrg                 string `json:"toplevel_org"`
	// organization names matching any of these are dropped outright
	DropOrganizations []string `json:"drop_organizations"`

	Bills  RecordConfig `json:"bills"`
	People RecordConfig `json:"people"`

	// bill action detail pages carry their own label set
	BillAction DetailConfig `json:"bill_action"`

	loc *time.Location
}

type RecordConfig struct {
	Search SearchConfig `json:"search"`
	Detail DetailConfig `json:"detail"`
}

// SearchConfig describes one paginated search form.
type SearchConfig struct {
	Url string `json:"url"`

	// the hidden input every response must echo forward, usually
	// __VIEWSTATE on these sites
	RequiredHiddenField string `json:"required_hidden_field"`

	// a control name that only exists on the advanced variant of the
	// form. its presence in a fetched page means the page is already in
	// advanced mode.
	AdvancedMarkerControl string `json:"advanced_marker_control"`

	// the __EVENTTARGET value that makes the server re-render the form
	// in advanced mode
	SwitchControl string `json:"switch_control"`

	// one-shot controls stripped from pagination queries: resubmitting
	// the search button or the max-results selector restarts the search
	SubmitControl     string `json:"submit_control"`
	MaxResultsControl string `json:"max_results_control"`

	// static control name/value pairs for each mode's query
	SimpleQuery   map[string]string `json:"simple_query"`
	AdvancedQuery map[string]string `json:"advanced_query"`

	// locates the "next page" anchor in the pager, e.g.
	// "td.rgPagerCell a.rgCurrentPage + a"
	NextPageSelector string `json:"next_page_selector"`

	Table TableConfig `json:"table"`
}

// DetailConfig describes one record's dedicated page.
type DetailConfig struct {
	// locates the label elements; each label's value is its next sibling
	LabelSelector string `json:"label_selector"`

	// logical field name -> label text as it appears on the page
	Labels map[string]string `json:"labels"`

	// labels of fields carrying probed media links (video, audio, ...)
	MediaLabels []string `json:"media_labels"`

	// named nested tables on the page ("attachments", "actions", ...)
	Tables map[string]TableConfig `json:"tables"`
}

type TableConfig struct {
	Selector    string `json:"selector"`
	RowSelector string `json:"row_selector"`

	// logical field name -> header cell text
	Labels map[string]string `json:"labels"`
}

// LoadConfig reads and validates one jurisdiction config file.
func LoadConfig(path string) (*Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfigDir reads a directory of jurisdiction config files keyed by
// file name.
func LoadConfigDir(dir string) (map[string]*Config, error) {
	raw, err := configutil.ReadDir[Config](dir)
	if err != nil {
		return nil, err
	}
	out := map[string]*Config{}
	for name, cfg := range raw {
		cfg := cfg
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("jurisdiction %s: %w", name, err)
		}
		out[name] = &cfg
	}
	return out, nil
}

// Validate checks every key the engine will eventually need, so that a
// misconfigured jurisdiction fails at load time instead of mid-scrape.
func (c *Config) Validate() error {
	required := map[string]string{
		"name":            c.Name,
		"base_url":        c.BaseUrl,
		"timezone":        c.Timezone,
		"datetime_format": c.DatetimeFormat,
	}
	for key, value := range required {
		if value == "" {
			return configMissing(key)
		}
	}
	if c.DateFormat == "" {
		c.DateFormat = c.DatetimeFormat
	}

	loc, err := timezone.Load(c.Timezone)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrConfigurationMissing, err)
	}
	c.loc = loc

	// surface bad format strings now rather than on the first record
	if _, err := timezone.Layout(c.DatetimeFormat); err != nil {
		return fmt.Errorf("%w: %s", ErrConfigurationMissing, err)
	}
	if _, err := timezone.Layout(c.DateFormat); err != nil {
		return fmt.Errorf("%w: %s", ErrConfigurationMissing, err)
	}

	for name, rc := range map[string]RecordConfig{"bills": c.Bills, "people": c.People} {
		if rc.Search.Url == "" {
			continue
		}
		if rc.Search.RequiredHiddenField == "" {
			return configMissing(name + ".search.required_hidden_field")
		}
		if rc.Search.AdvancedMarkerControl == "" {
			return configMissing(name + ".search.advanced_marker_control")
		}
		if rc.Search.Table.Selector == "" {
			return configMissing(name + ".search.table.selector")
		}
	}
	return nil
}

func (c *Config) Location() *time.Location {
	return c.loc
}

// ParseDate parses field text using the jurisdiction's date format.
func (c *Config) ParseDate(text string) (time.Time, error) {
	return timezone.Parse(text, c.DateFormat, c.loc)
}

// ParseDatetime parses field text using the jurisdiction's datetime format.
func (c *Config) ParseDatetime(text string) (time.Time, error) {
	return timezone.Parse(text, c.DatetimeFormat, c.loc)
}
