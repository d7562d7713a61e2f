package legistar

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
)

// BillsScraper streams council bills for one jurisdiction: the
// legislation search form, each bill's detail page, its action table,
// and each action's detail page with its vote table.
type BillsScraper struct {
	Client *Client
	Config *Config
}

func NewBillsScraper(client *Client, cfg *Config) *BillsScraper {
	return &BillsScraper{Client: client, Config: cfg}
}

func (s *BillsScraper) searchColumns() []ColumnSpec {
	return []ColumnSpec{
		{Key: "file_number", Required: true},
		{Key: "type"},
		{Key: "status"},
		{Key: "title"},
	}
}

// Scrape walks the bill search results and emits one fully-extracted
// record per bill.
func (s *BillsScraper) Scrape(ctx context.Context, emit func(Record) error) error {
	view := &SearchView{
		Client:    s.Client,
		Config:    s.Config,
		Search:    s.Config.Bills.Search,
		Columns:   s.searchColumns(),
		DetailKey: "file_number",
		Detail:    s.DetailRecord,
	}
	return view.Scrape(ctx, emit)
}

// DetailRecord extracts one bill's dedicated page.
func (s *BillsScraper) DetailRecord(ctx context.Context, url string) (Record, error) {
	view := &DetailView{
		Client:   s.Client,
		Config:   s.Config,
		Detail:   s.Config.Bills.Detail,
		Registry: s.billRegistry,
	}
	return view.Scrape(ctx, url)
}

func (s *BillsScraper) billRegistry(agg *FieldAggregator, page Page) Registry {
	registry := TextGenerators(agg,
		"law_number", "name", "version", "sponsor_office")
	registry = append(registry,
		DateGenerator(agg, "intro_date"),
		DateGenerator(agg, "file_created"),
		DateGenerator(agg, "agenda"),
		DateGenerator(agg, "enactment_date"),
		DateGenerator(agg, "final_action"),
		s.sponsorsGenerator(agg),
		s.documentsGenerator(page),
		s.actionsGenerator(page),
		s.sourcesGenerator(page),
	)
	return registry
}

var sponsorSplitRegex = regexp.MustCompile(`,\s+`)

// sponsors arrive as one comma-separated blob of names.
func (s *BillsScraper) sponsorsGenerator(agg *FieldAggregator) Generator {
	return Generator{
		Key: "sponsors",
		Fn: func(ctx context.Context) (any, error) {
			text, err := agg.FieldText("sponsors")
			if err != nil {
				return nil, err
			}
			var sponsors []Record
			for _, name := range sponsorSplitRegex.Split(text, -1) {
				name = strings.TrimSpace(name)
				if name != "" {
					sponsors = append(sponsors, Record{"name": name})
				}
			}
			if len(sponsors) == 0 {
				return nil, ErrSkipItem
			}
			return sponsors, nil
		},
	}
}

// documentsGenerator probes every attachment link for its media type.
// the table exposes the URLs; the probes happen here.
func (s *BillsScraper) documentsGenerator(page Page) Generator {
	return Generator{
		Key: "documents",
		Fn: func(ctx context.Context) (any, error) {
			tcfg, ok := s.Config.Bills.Detail.Tables["attachments"]
			if !ok {
				return nil, ErrSkipItem
			}
			container := page.Doc.Find(tcfg.Selector).First()
			if container.Length() == 0 {
				return nil, ErrSkipItem
			}

			documents := []Record{}
			base := page.base()
			var anchors []*ElementAccessor
			container.Find("a").Each(func(_ int, sel *goquery.Selection) {
				anchors = append(anchors, NewElementAccessor(sel, base))
			})
			for _, anchor := range anchors {
				document, err := probeMedia(ctx, s.Client, anchor)
				if errors.Is(err, ErrSkipItem) {
					continue
				}
				if err != nil {
					return nil, err
				}
				documents = append(documents, document)
			}
			return documents, nil
		},
	}
}

// actionsGenerator decomposes the bill's action history table,
// recursing into each action's detail page for its votes.
func (s *BillsScraper) actionsGenerator(page Page) Generator {
	return Generator{
		Key: "actions",
		Fn: func(ctx context.Context) (any, error) {
			tcfg, ok := s.Config.Bills.Detail.Tables["actions"]
			if !ok {
				return nil, ErrSkipItem
			}
			table, err := NewTable(page, s.Config, tcfg)
			if err != nil {
				return nil, err
			}
			table.Client = s.Client
			table.DetailKey = "action_details"
			table.Detail = s.ActionRecord

			specs := []ColumnSpec{
				{Key: "date", Kind: CellDate, Required: true},
				{Key: "action_by", Kind: CellOrg},
				{Key: "action"},
				{Key: "version"},
				{Key: "result"},
				{Key: "journal_page"},
			}
			for _, label := range s.Config.Bills.Detail.MediaLabels {
				specs = append(specs, ColumnSpec{Key: label, Kind: CellMedia})
			}
			return table.Records(ctx, specs)
		},
	}
}

// ActionRecord extracts one action's detail page, vote table included.
func (s *BillsScraper) ActionRecord(ctx context.Context, url string) (Record, error) {
	view := &DetailView{
		Client:   s.Client,
		Config:   s.Config,
		Detail:   s.Config.BillAction,
		Registry: s.actionRegistry,
	}
	return view.Scrape(ctx, url)
}

func (s *BillsScraper) actionRegistry(agg *FieldAggregator, page Page) Registry {
	registry := TextGenerators(agg,
		"mover", "seconder", "result",
		"agenda_note", "minutes_note", "action_text")
	registry = append(registry, s.votesGenerator(page))
	return registry
}

func (s *BillsScraper) votesGenerator(page Page) Generator {
	return Generator{
		Key: "votes",
		Fn: func(ctx context.Context) (any, error) {
			tcfg, ok := s.Config.BillAction.Tables["votes"]
			if !ok {
				return nil, ErrSkipItem
			}
			table, err := NewTable(page, s.Config, tcfg)
			if err != nil {
				return nil, err
			}
			return table.Records(ctx, []ColumnSpec{
				{Key: "person", Required: true},
				{Key: "vote", Required: true},
			})
		},
	}
}

// sourcesGenerator emits where this record's data came from, one entry
// per URL with the notes grouped and joined.
func (s *BillsScraper) sourcesGenerator(page Page) Generator {
	return Generator{
		Key: "sources",
		Fn: func(ctx context.Context) (any, error) {
			searchUrl := s.Config.Bills.Search.Url
			if resolved, err := s.Client.BaseUrl.Parse(searchUrl); err == nil {
				searchUrl = resolved.String()
			}
			notesByUrl := map[string][]string{
				searchUrl: {"bills search"},
				page.Url:  {"bill detail"},
			}

			urls := lo.Keys(notesByUrl)
			sort.Strings(urls)
			return lo.Map(urls, func(url string, _ int) Record {
				notes := lo.Uniq(notesByUrl[url])
				sort.Strings(notes)
				return Record{"url": url, "note": strings.Join(notes, ", ")}
			}), nil
		},
	}
}
