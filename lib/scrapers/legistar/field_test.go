package legistar

import (
	"bytes"
	"net/url"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func docFromString(t *testing.T, contents string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(contents))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func testConfig(t *testing.T, baseUrl string) *Config {
	t.Helper()
	cfg := &Config{
		Name:           "Test Town",
		BaseUrl:        baseUrl,
		Timezone:       "America/Chicago",
		DatetimeFormat: "%m/%d/%Y",
		TopLevelOrg:    "Test Town City Council",
		Bills: RecordConfig{
			Search: SearchConfig{
				Url:                   "/Legislation.aspx",
				RequiredHiddenField:   "__VIEWSTATE",
				AdvancedMarkerControl: "ctl00$ContentPlaceHolder1$lstYearsAdvanced",
				SwitchControl:         "ctl00$ContentPlaceHolder1$btnSwitch",
				SubmitControl:         "ctl00$ContentPlaceHolder1$btnSearch2",
				MaxResultsControl:     "ctl00$ContentPlaceHolder1$lstMax",
				AdvancedQuery: map[string]string{
					"ctl00$ContentPlaceHolder1$btnSearch2":       "Search Legislation",
					"ctl00$ContentPlaceHolder1$lstMax":           "All",
					"ctl00$ContentPlaceHolder1$lstYearsAdvanced": "This Year",
				},
				NextPageSelector: "td.pager a.current + a",
				Table: TableConfig{
					Selector: "table#results",
					Labels: map[string]string{
						"file_number": "File #",
						"type":        "Type",
						"status":      "Status",
						"title":       "Title",
					},
				},
			},
			Detail: DetailConfig{
				LabelSelector: "span.label",
				Labels: map[string]string{
					"law_number":     "Law number",
					"name":           "Name",
					"version":        "Version",
					"sponsor_office": "Sponsor office",
					"intro_date":     "Introduced",
					"file_created":   "File created",
					"agenda":         "On agenda",
					"enactment_date": "Enactment date",
					"final_action":   "Final action",
					"sponsors":       "Sponsors",
				},
				Tables: map[string]TableConfig{
					"attachments": {Selector: "div#attachments"},
					"actions": {
						Selector: "table#actions",
						Labels: map[string]string{
							"date":           "Date",
							"action_by":      "Action By",
							"action":         "Action",
							"version":        "Version",
							"result":         "Result",
							"journal_page":   "Journal",
							"action_details": "Details",
						},
					},
				},
			},
		},
		People: RecordConfig{
			Search: SearchConfig{
				Url:                   "/People.aspx",
				RequiredHiddenField:   "__VIEWSTATE",
				AdvancedMarkerControl: "ctl00$ContentPlaceHolder1$lstYearsAdvanced",
				SwitchControl:         "ctl00$ContentPlaceHolder1$btnSwitch",
				SubmitControl:         "ctl00$ContentPlaceHolder1$btnSearch2",
				MaxResultsControl:     "ctl00$ContentPlaceHolder1$lstMax",
				AdvancedQuery: map[string]string{
					"ctl00$ContentPlaceHolder1$btnSearch2": "Search People",
					"ctl00$ContentPlaceHolder1$lstMax":     "All",
				},
				NextPageSelector: "td.pager a.current + a",
				Table: TableConfig{
					Selector: "table#people",
					Labels: map[string]string{
						"fullname": "Person Name",
						"ward":     "Ward",
						"email":    "E-mail",
						"website":  "Web Site",
					},
				},
			},
			Detail: DetailConfig{
				LabelSelector: "span.label",
				Labels: map[string]string{
					"firstname": "First name",
					"lastname":  "Last name",
					"party":     "Party",
					"district":  "District",
					"notes":     "Notes",
					"website":   "Web site",
					"photo":     "Photo",
					"email":     "E-mail",
				},
				Tables: map[string]TableConfig{
					"memberships": {
						Selector: "table#memberships",
						Labels: map[string]string{
							"org":          "Department Name",
							"role":         "Title",
							"start_date":   "Start Date",
							"end_date":     "End Date",
							"appointed_by": "Appointed By",
						},
					},
				},
			},
		},
		BillAction: DetailConfig{
			LabelSelector: "span.label",
			Labels: map[string]string{
				"mover":        "Mover",
				"seconder":     "Seconder",
				"result":       "Result",
				"agenda_note":  "Agenda note",
				"minutes_note": "Minutes note",
				"action_text":  "Action text",
			},
			Tables: map[string]TableConfig{
				"votes": {
					Selector: "table#votes",
					Labels: map[string]string{
						"person": "Person Name",
						"vote":   "Vote",
					},
				},
			},
		},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestElementAccessorText(t *testing.T) {
	doc := docFromString(t, `<table><tr><td>  Committee
		on   Finance </td></tr></table>`)
	accessor := NewElementAccessor(doc.Find("td"), nil)

	require.Equal(t, "Committee on Finance", accessor.Text())
	// cached value comes back the same
	require.Equal(t, "Committee on Finance", accessor.Text())
	require.False(t, accessor.IsBlank())
}

func TestElementAccessorBlank(t *testing.T) {
	doc := docFromString(t, `<table><tr><td> &nbsp; </td></tr></table>`)
	accessor := NewElementAccessor(doc.Find("td"), nil)
	require.True(t, accessor.IsBlank())
}

func TestElementAccessorURLs(t *testing.T) {
	base, err := url.Parse("https://test.legistar.com/page.aspx")
	require.NoError(t, err)

	doc := docFromString(t, `<table><tr><td>
		<a href="javascript:__doPostBack('x','y')">postback</a>
		<a href="/att1.pdf">One</a>
		<a href="/att2.pdf">Two</a>
	</td></tr></table>`)
	accessor := NewElementAccessor(doc.Find("td"), base)

	href, ok := accessor.URL()
	require.True(t, ok)
	require.Equal(t, "https://test.legistar.com/att1.pdf", href)
	require.Equal(t, []string{
		"https://test.legistar.com/att1.pdf",
		"https://test.legistar.com/att2.pdf",
	}, accessor.URLs())
}

func TestElementAccessorTexts(t *testing.T) {
	doc := docFromString(t, `<table><tr><td> One </td><td>Two</td></tr></table>`)
	accessor := NewElementAccessor(doc.Find("td"), nil)
	require.Equal(t, []string{"One", "Two"}, accessor.Texts())
}

func TestElementAccessorNoURL(t *testing.T) {
	doc := docFromString(t, `<table><tr><td>just text</td></tr></table>`)
	accessor := NewElementAccessor(doc.Find("td"), nil)

	_, ok := accessor.URL()
	require.False(t, ok)
}

func newTestAggregator(t *testing.T, data map[string]FieldAccessor) *FieldAggregator {
	cfg := testConfig(t, "https://test.legistar.com")
	return NewFieldAggregator(cfg, cfg.Bills.Detail.Labels, data)
}

func TestAggregatorMissingLabelConfig(t *testing.T) {
	agg := newTestAggregator(t, map[string]FieldAccessor{})
	_, err := agg.FieldText("no_such_field")
	require.ErrorIs(t, err, ErrConfigurationMissing)
}

func TestAggregatorFieldAbsentSkips(t *testing.T) {
	agg := newTestAggregator(t, map[string]FieldAccessor{})
	_, err := agg.FieldText("law_number")
	require.ErrorIs(t, err, ErrSkipItem)
}

func TestAggregatorBlankFieldIsNoValue(t *testing.T) {
	doc := docFromString(t, `<span>  </span>`)
	agg := newTestAggregator(t, map[string]FieldAccessor{
		"Law number": NewElementAccessor(doc.Find("span"), nil),
	})

	text, err := agg.FieldText("law_number")
	require.NoError(t, err)
	require.Equal(t, "", text)
}

func TestAggregatorFieldDate(t *testing.T) {
	doc := docFromString(t, `<span>03/14/2019</span>`)
	agg := newTestAggregator(t, map[string]FieldAccessor{
		"Introduced": NewElementAccessor(doc.Find("span"), nil),
	})

	parsed, err := agg.FieldDate("intro_date")
	require.NoError(t, err)
	require.Equal(t, 2019, parsed.Year())
	require.Equal(t, "America/Chicago", parsed.Location().String())
}
