package legistar

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"legiscrape/lib/htmlutil"

	"dario.cat/mergo"
)

// FormState tracks where a paginated search form is in its lifecycle.
// transitions all cost exactly one network round trip and none may be
// skipped: the server only honors queries whose hidden session tokens
// echo the page it last served.
type FormState int

const (
	// first page fetched, mode not yet probed
	StateInitial FormState = iota
	StateSimpleSearch
	StateAdvancedSearch
	StatePaginating
	StateDone
)

const (
	eventTargetControl   = "__EVENTTARGET"
	eventArgumentControl = "__EVENTARGUMENT"
)

// Form models one jurisdiction's paginated, session-stateful search
// form. a Form owns its current Page and is never shared across
// concurrent traversals.
type Form struct {
	client *Client
	cfg    *Config
	scfg   SearchConfig

	page    Page
	state   FormState
	pageNum int
}

// NewForm fetches the search form's first page. the fetch bypasses the
// page cache: a replayed form page would hand the first POST session
// tokens the server no longer recognizes.
func NewForm(ctx context.Context, client *Client, cfg *Config, scfg SearchConfig) (*Form, error) {
	page, err := client.GetUncached(ctx, scfg.Url)
	if err != nil {
		return nil, err
	}
	return &Form{
		client:  client,
		cfg:     cfg,
		scfg:    scfg,
		page:    page,
		state:   StateInitial,
		pageNum: 1,
	}, nil
}

func (f *Form) Page() Page {
	return f.page
}

func (f *Form) State() FormState {
	return f.state
}

// DefaultSearchIsSimple probes the current page for the configured
// advanced-only control. its absence means the default render is the
// simple variant and a mode-switch round trip is needed before a
// structured query.
func (f *Form) DefaultSearchIsSimple() bool {
	marker := f.scfg.AdvancedMarkerControl
	found := f.page.Doc.Find(fmt.Sprintf(`[name=%q]`, marker)).Length() > 0
	if found {
		slog.Debug("found advanced search interface", "url", f.page.Url)
		return false
	}
	slog.Debug("found simple search interface", "url", f.page.Url)
	return true
}

// HiddenState collects the page's hidden session fields. the required
// field missing means the markup changed incompatibly.
func (f *Form) HiddenState() (map[string]string, error) {
	hidden := htmlutil.HiddenInputs(f.page.Doc)
	if _, ok := hidden[f.scfg.RequiredHiddenField]; !ok {
		return nil, protocolViolation(f.page.Url, "hidden field "+f.scfg.RequiredHiddenField)
	}
	return hidden, nil
}

// mergeQuery layers, lowest to highest precedence: persistent client
// state, the current page's hidden session fields, static configured
// controls, caller overrides.
func (f *Form) mergeQuery(static, overrides map[string]string) (map[string]string, error) {
	hidden, err := f.HiddenState()
	if err != nil {
		return nil, err
	}

	query := f.client.State()
	for _, layer := range []map[string]string{hidden, static, overrides} {
		if layer == nil {
			continue
		}
		err := mergo.Merge(&query, layer, mergo.WithOverride)
		if err != nil {
			return nil, err
		}
	}
	return query, nil
}

// QuerySimple builds the next query for the simple search variant.
func (f *Form) QuerySimple(overrides map[string]string) (map[string]string, error) {
	return f.mergeQuery(f.scfg.SimpleQuery, overrides)
}

// QueryAdvanced builds the next query for the advanced search variant.
func (f *Form) QueryAdvanced(overrides map[string]string) (map[string]string, error) {
	return f.mergeQuery(f.scfg.AdvancedQuery, overrides)
}

// PaginationQuery is the advanced query minus its one-shot controls:
// repeating the submit button or the max-results selector on later
// pages restarts the search instead of advancing it.
func (f *Form) PaginationQuery(overrides map[string]string) (map[string]string, error) {
	query, err := f.QueryAdvanced(overrides)
	if err != nil {
		return nil, err
	}
	delete(query, f.scfg.SubmitControl)
	delete(query, f.scfg.MaxResultsControl)
	return query, nil
}

// Submit posts a query and replaces the form's page with the server's
// re-render. exactly one fetch per state transition.
func (f *Form) Submit(ctx context.Context, query map[string]string) error {
	ctx, span := tracer.Start(ctx, "form:Submit")
	defer span.End()

	page, err := f.client.SubmitForm(ctx, f.scfg.Url, query)
	if err != nil {
		return err
	}
	f.page = page
	return nil
}

// SwitchToAdvancedSearch asks the server to re-render the form in
// advanced mode. a full round trip: the new page replaces the old one
// along with its session tokens.
func (f *Form) SwitchToAdvancedSearch(ctx context.Context) error {
	slog.DebugContext(ctx, "switching to advanced search form", "url", f.page.Url)
	query, err := f.mergeQuery(map[string]string{
		eventTargetControl: f.scfg.SwitchControl,
	}, nil)
	if err != nil {
		return err
	}
	err = f.Submit(ctx, query)
	if err != nil {
		return err
	}
	f.state = StateAdvancedSearch
	return nil
}

// Search issues the structured advanced query, switching modes first
// when the default render is the simple variant.
func (f *Form) Search(ctx context.Context, overrides map[string]string) error {
	ctx, span := tracer.Start(ctx, "form:Search")
	defer span.End()

	if f.state == StateInitial {
		if f.DefaultSearchIsSimple() {
			f.state = StateSimpleSearch
			err := f.SwitchToAdvancedSearch(ctx)
			if err != nil {
				return err
			}
		} else {
			f.state = StateAdvancedSearch
		}
	}
	if f.state != StateAdvancedSearch {
		return fmt.Errorf("cannot search from form state %d", f.state)
	}

	query, err := f.QueryAdvanced(overrides)
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "submitting search", "url", f.scfg.Url, "controls", len(query))
	err = f.Submit(ctx, query)
	if err != nil {
		return err
	}
	f.state = StatePaginating
	return nil
}

var postbackRegex = regexp.MustCompile(`__doPostBack\('([^']*)'(?:,\s*'([^']*)')?\)`)

// NextPage advances to the next result page. returns false once the
// pager carries no further page marker.
func (f *Form) NextPage(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "form:NextPage")
	defer span.End()

	if f.state != StatePaginating {
		return false, nil
	}

	marker := f.page.Doc.Find(f.scfg.NextPageSelector).First()
	if marker.Length() == 0 {
		f.state = StateDone
		slog.DebugContext(ctx, "pagination done", "pages", f.pageNum)
		return false, nil
	}

	href := marker.AttrOr("href", "")
	groups := postbackRegex.FindStringSubmatch(href)
	if groups == nil {
		return false, protocolViolation(f.page.Url, "postback target in pager link")
	}

	query, err := f.PaginationQuery(map[string]string{
		eventTargetControl:   groups[1],
		eventArgumentControl: groups[2],
	})
	if err != nil {
		return false, err
	}

	err = f.Submit(ctx, query)
	if err != nil {
		return false, err
	}
	f.pageNum++
	slog.DebugContext(ctx, "advanced to next page", "page", f.pageNum)
	return true, nil
}
