package legistar

import (
	"context"
)

// PeopleScraper streams council members for one jurisdiction: the
// people listing plus each member's detail page with its committee
// membership table.
type PeopleScraper struct {
	Client *Client
	Config *Config
}

func NewPeopleScraper(client *Client, cfg *Config) *PeopleScraper {
	return &PeopleScraper{Client: client, Config: cfg}
}

func (s *PeopleScraper) Scrape(ctx context.Context, emit func(Record) error) error {
	view := &SearchView{
		Client: s.Client,
		Config: s.Config,
		Search: s.Config.People.Search,
		Columns: []ColumnSpec{
			{Key: "fullname", Required: true},
			{Key: "ward"},
			{Key: "email"},
			{Key: "website", Kind: CellURL},
		},
		DetailKey: "fullname",
		Detail:    s.DetailRecord,
	}
	return view.Scrape(ctx, emit)
}

func (s *PeopleScraper) DetailRecord(ctx context.Context, url string) (Record, error) {
	view := &DetailView{
		Client:   s.Client,
		Config:   s.Config,
		Detail:   s.Config.People.Detail,
		Registry: s.personRegistry,
	}
	return view.Scrape(ctx, url)
}

func (s *PeopleScraper) personRegistry(agg *FieldAggregator, page Page) Registry {
	registry := TextGenerators(agg,
		"firstname", "lastname", "party", "district", "notes")
	registry = append(registry,
		URLGenerator(agg, "website"),
		URLGenerator(agg, "photo"),
		s.emailGenerator(agg),
		s.membershipsGenerator(page),
	)
	return registry
}

// mailto links come through with their scheme still attached.
func (s *PeopleScraper) emailGenerator(agg *FieldAggregator) Generator {
	return Generator{
		Key: "email",
		Fn: func(ctx context.Context) (any, error) {
			href, err := agg.FieldURL("email")
			if err != nil {
				return nil, err
			}
			const mailto = "mailto:"
			if len(href) > len(mailto) && href[:len(mailto)] == mailto {
				return href[len(mailto):], nil
			}
			text, err := agg.FieldText("email")
			if err != nil {
				return nil, err
			}
			if text == "" {
				return nil, ErrSkipItem
			}
			return text, nil
		},
	}
}

func (s *PeopleScraper) membershipsGenerator(page Page) Generator {
	return Generator{
		Key: "memberships",
		Fn: func(ctx context.Context) (any, error) {
			tcfg, ok := s.Config.People.Detail.Tables["memberships"]
			if !ok {
				return nil, ErrSkipItem
			}
			table, err := NewTable(page, s.Config, tcfg)
			if err != nil {
				return nil, err
			}
			return table.Records(ctx, []ColumnSpec{
				{Key: "org", Required: true},
				{Key: "role"},
				{Key: "start_date", Kind: CellDate},
				{Key: "end_date", Kind: CellDate},
				{Key: "appointed_by"},
			})
		},
	}
}
