package legistar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"legiscrape/lib/htmlutil"
	"legiscrape/lib/timezone"

	"github.com/PuerkitoBio/goquery"
)

// CellKind selects how a row cell's content becomes a record value.
type CellKind int

const (
	// the cell's collapsed text
	CellText CellKind = iota
	// the cell names an organization; emitted as a nested record so the
	// converter can resolve it against the org cache
	CellOrg
	// the cell is a date in the jurisdiction's date format
	CellDate
	// the cell's value is its first link rather than its text
	CellURL
	// the cell links a media document; the link is HEAD-probed for its
	// content type and emitted as {name, links: [{url, media_type}]}
	CellMedia
)

// ColumnSpec declares one logical field read from a row. compound
// fields pair the name with a non-text kind.
type ColumnSpec struct {
	Key      string
	Kind     CellKind
	Required bool
}

// DetailFunc fetches and extracts a row's detail page as a nested
// record, reusing the full view pipeline.
type DetailFunc func(ctx context.Context, url string) (Record, error)

var errMalformedRow = errors.New("row missing required cell")

// Table decomposes one HTML table into row records. the table holds a
// scoped reference into its page's tree for one extraction pass only.
type Table struct {
	cfg  *Config
	tcfg TableConfig
	page Page
	sel  *goquery.Selection

	// header label text -> column index
	columns map[string]int

	// needed by rows whose columns declare media probes
	Client *Client

	// when set, each row's detail URL (the DetailKey column's link) is
	// fetched and merged into the row's record
	DetailKey string
	Detail    DetailFunc
}

// NewTable locates the configured table in a page. a missing table
// means the site markup changed out from under the config.
func NewTable(page Page, cfg *Config, tcfg TableConfig) (*Table, error) {
	sel := page.Doc.Find(tcfg.Selector).First()
	if sel.Length() == 0 {
		return nil, protocolViolation(page.Url, "table "+tcfg.Selector)
	}

	columns := map[string]int{}
	sel.Find("tr").First().Children().Each(func(i int, cell *goquery.Selection) {
		label := htmlutil.SelectionText(cell)
		if label != "" {
			columns[label] = i
		}
	})

	return &Table{
		cfg:     cfg,
		tcfg:    tcfg,
		page:    page,
		sel:     sel,
		columns: columns,
	}, nil
}

// TableRow is a field aggregator scoped to one row's markup. a row
// holds a back-reference to its parent table's shared config and never
// outlives the iteration pass.
type TableRow struct {
	table *Table
	agg   *FieldAggregator
}

// rows selects this table's own rows. the default selection stays
// scoped to the table's direct sections so tables nested inside cells
// don't leak their rows into the outer iteration.
func (t *Table) rows() *goquery.Selection {
	if t.tcfg.RowSelector != "" {
		return t.sel.Find(t.tcfg.RowSelector)
	}
	sections := t.sel.ChildrenFiltered("thead, tbody, tfoot")
	return sections.ChildrenFiltered("tr").AddSelection(t.sel.ChildrenFiltered("tr"))
}

// Rows builds one TableRow per data row, mapping header labels onto the
// row's cells.
func (t *Table) Rows() []*TableRow {
	var rows []*TableRow
	base := t.page.base()

	t.rows().Each(func(i int, rowSel *goquery.Selection) {
		if rowSel.Find("th").Length() > 0 {
			return
		}
		cells := rowSel.Children().FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.Is("td")
		})
		if cells.Length() == 0 {
			return
		}

		data := map[string]FieldAccessor{}
		for label, idx := range t.columns {
			if idx >= cells.Length() {
				continue
			}
			data[label] = NewElementAccessor(cells.Eq(idx), base)
		}

		rows = append(rows, &TableRow{
			table: t,
			agg:   NewFieldAggregator(t.cfg, t.tcfg.Labels, data),
		})
	})

	return rows
}

func (r *TableRow) Aggregator() *FieldAggregator {
	return r.agg
}

// FieldURL is the first link in the named logical column, used for
// detail-page navigation.
func (r *TableRow) FieldURL(key string) (string, error) {
	return r.agg.FieldURL(key)
}

func (r *TableRow) cellValue(ctx context.Context, spec ColumnSpec) (any, error) {
	switch spec.Kind {
	case CellMedia:
		data, err := r.agg.FieldData(spec.Key)
		if err != nil {
			return nil, err
		}
		return probeMedia(ctx, r.table.Client, data)
	case CellOrg:
		text, err := r.agg.FieldText(spec.Key)
		if err != nil {
			return nil, err
		}
		return Record{"name": text}, nil
	case CellDate:
		parsed, err := r.agg.FieldDate(spec.Key)
		if err != nil {
			return nil, err
		}
		return timezone.Normalize(parsed), nil
	case CellURL:
		href, err := r.agg.FieldURL(spec.Key)
		if err != nil {
			return nil, err
		}
		if href == "" {
			return nil, ErrSkipItem
		}
		return href, nil
	default:
		return r.agg.FieldText(spec.Key)
	}
}

// Record extracts the declared columns from this row, then merges in
// the row's detail record when the parent table declares one.
func (r *TableRow) Record(ctx context.Context, specs []ColumnSpec) (Record, error) {
	record := Record{}
	for _, spec := range specs {
		value, err := r.cellValue(ctx, spec)
		if errors.Is(err, ErrSkipItem) {
			if spec.Required {
				return nil, fmt.Errorf("%w: %s", errMalformedRow, spec.Key)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", spec.Key, err)
		}
		if _, dup := record[spec.Key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, spec.Key)
		}
		record[spec.Key] = value
	}

	if r.table.Detail != nil && r.table.DetailKey != "" {
		href, err := r.FieldURL(r.table.DetailKey)
		if err != nil && !errors.Is(err, ErrSkipItem) {
			return nil, err
		}
		if href != "" {
			detail, err := r.table.Detail(ctx, href)
			if errors.Is(err, ErrSkipItem) {
				detail = nil
			} else if err != nil {
				return nil, err
			}
			// the row and its detail page describe the same record;
			// where both carry a field, the row's value stands
			for key, value := range detail {
				if _, dup := record[key]; dup {
					continue
				}
				record[key] = value
			}
		}
	}

	return record, nil
}

// Records extracts every row, skipping malformed ones. a bad row is a
// scraping-target quirk, not a reason to abandon the table.
func (t *Table) Records(ctx context.Context, specs []ColumnSpec) ([]Record, error) {
	var records []Record
	for i, row := range t.Rows() {
		record, err := row.Record(ctx, specs)
		if errors.Is(err, errMalformedRow) {
			slog.WarnContext(ctx, "skipping malformed row",
				"row", i, "url", t.page.Url, "err", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
