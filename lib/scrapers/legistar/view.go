package legistar

import (
	"context"
	"log/slog"
	"strings"

	"legiscrape/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// SearchView drives one record type's listing: fetch the search form,
// run the structured query, and stream one record per result row across
// every page. extraction is depth-first and synchronous; run separate
// jurisdictions as separate SearchViews if you want parallelism.
type SearchView struct {
	Client *Client
	Config *Config
	Search SearchConfig

	// columns read from each result row
	Columns []ColumnSpec
	// optional: column whose link leads to the row's detail page
	DetailKey string
	// optional: extracts a row's detail page into a nested record
	Detail DetailFunc
	// optional query overrides, merged over the configured statics
	Overrides map[string]string
}

// Scrape walks every result page and calls emit once per record. a
// non-nil error from emit stops the traversal.
func (v *SearchView) Scrape(ctx context.Context, emit func(Record) error) error {
	ctx, span := tracer.Start(ctx, "view:Search")
	defer span.End()

	form, err := NewForm(ctx, v.Client, v.Config, v.Search)
	if err != nil {
		return err
	}
	err = form.Search(ctx, v.Overrides)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search query failed")
		return err
	}

	for {
		table, err := NewTable(form.Page(), v.Config, v.Search.Table)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "results table missing")
			return err
		}
		table.Client = v.Client
		table.DetailKey = v.DetailKey
		table.Detail = v.Detail

		records, err := table.Records(ctx, v.Columns)
		if err != nil {
			span.RecordError(err)
			return err
		}
		for _, record := range records {
			if record.IsEmpty() && !v.Config.EmitEmptyRecords {
				continue
			}
			err := emit(record)
			if err != nil {
				return err
			}
		}

		more, err := form.NextPage(ctx)
		if err != nil {
			span.RecordError(err)
			return err
		}
		if !more {
			return nil
		}
	}
}

// DetailView fetches one record's dedicated page and assembles one
// complete record from a generator registry built over the page's
// label-indexed fields.
type DetailView struct {
	Client *Client
	Config *Config
	Detail DetailConfig

	// Registry builds the record type's field generators over the
	// fetched page. nested tables and child detail views hang off the
	// closures it returns.
	Registry func(agg *FieldAggregator, page Page) Registry
}

// Scrape extracts the record behind one detail URL.
func (v *DetailView) Scrape(ctx context.Context, url string) (Record, error) {
	ctx, span := tracer.Start(ctx, "view:Detail")
	defer span.End()

	page, err := v.Client.Get(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch detail page")
		return nil, err
	}
	return v.Extract(ctx, page)
}

// Extract runs the registry over an already-fetched page. extracting
// the same page twice yields identical output.
func (v *DetailView) Extract(ctx context.Context, page Page) (Record, error) {
	agg := NewFieldAggregator(v.Config, v.Detail.Labels, FieldIndex(page, v.Detail.LabelSelector))

	record, err := BuildRecord(ctx, v.Registry(agg, page))
	if err != nil {
		return nil, err
	}
	if record.IsEmpty() && !v.Config.EmitEmptyRecords {
		slog.DebugContext(ctx, "suppressing empty record", "url", page.Url)
		return nil, ErrSkipItem
	}
	return record, nil
}

// FieldIndex builds a record page's label -> value-accessor mapping.
// legistar detail pages lay fields out as label element followed by a
// sibling value element; the configured selector picks out the labels.
func FieldIndex(page Page, labelSelector string) map[string]FieldAccessor {
	index := map[string]FieldAccessor{}
	if labelSelector == "" {
		return index
	}
	base := page.base()

	page.Doc.Find(labelSelector).Each(func(_ int, labelSel *goquery.Selection) {
		label := strings.TrimSuffix(htmlutil.SelectionText(labelSel), ":")
		if label == "" {
			return
		}

		value := labelSel.Next()
		if value.Length() == 0 {
			// label alone in its cell, value in the row's next cell
			value = labelSel.Parent().Next()
		}
		if value.Length() == 0 {
			return
		}
		index[label] = NewElementAccessor(value, base)
	})

	return index
}
