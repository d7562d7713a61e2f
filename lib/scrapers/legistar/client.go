package legistar

import (
	"bytes"
	"context"
	"net/http/cookiejar"
	"net/url"
	"time"

	"legiscrape/lib/pagecache"
	"legiscrape/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/legistar")

// Page is one fetched, parsed document. a Form, Table or field accessor
// only ever holds scoped references into a Page's tree for the duration
// of one extraction pass.
type Page struct {
	Url string
	Doc *goquery.Document
}

func (p Page) base() *url.URL {
	u, err := url.Parse(p.Url)
	if err != nil {
		return nil
	}
	return u
}

// Client wraps the session-stateful HTTP transport a traversal drives.
// one client per traversal: the server-side session is sequential, so a
// client must never be shared across concurrent traversals of the same
// jurisdiction.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	// persistent query parameters the server hands back out-of-band
	// (cookies live in the jar, this holds form-level tokens)
	state    map[string]string
	cache    *pagecache.Cache
	cacheTTL time.Duration
}

type ClientOptions struct {
	BaseUrl string
	Timeout time.Duration
	// optional raw-page cache for GET responses
	Cache *pagecache.Cache
	// optional TTL for cached pages, defaults to an hour
	CacheTTL time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}
	cacheTTL := opts.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(timeout)

	telemetry.InstrumentResty(client, "scrapers/legistar/http")

	return &Client{
		BaseUrl:  baseUrl,
		Http:     client,
		state:    map[string]string{},
		cache:    opts.Cache,
		cacheTTL: cacheTTL,
	}, nil
}

// State returns a copy of the persistent session parameters merged into
// every query.
func (c *Client) State() map[string]string {
	out := make(map[string]string, len(c.state))
	for k, v := range c.state {
		out[k] = v
	}
	return out
}

func (c *Client) SetState(key, value string) {
	c.state[key] = value
}

func (c *Client) parse(link string, body []byte) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return Page{}, err
	}
	resolved, err := c.BaseUrl.Parse(link)
	if err != nil {
		return Page{}, err
	}
	return Page{Url: resolved.String(), Doc: doc}, nil
}

// Get fetches and parses one page, through the raw-page cache when one
// is configured.
func (c *Client) Get(ctx context.Context, link string) (Page, error) {
	ctx, span := tracer.Start(ctx, "client:Get")
	defer span.End()

	if c.cache != nil {
		contents, err := c.cache.Get(ctx, link)
		if err == nil {
			span.SetStatus(codes.Ok, "cache hit")
			return c.parse(link, contents)
		}
	}

	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return Page{}, err
	}

	if c.cache != nil {
		err = c.cache.Set(ctx, link, res.Body(), c.cacheTTL)
		if err != nil {
			span.RecordError(err)
		}
	}

	return c.parse(link, res.Body())
}

// GetUncached fetches and parses one page straight from the server,
// skipping the cache both ways. search form pages carry one-shot
// session tokens that must come from a live response.
func (c *Client) GetUncached(ctx context.Context, link string) (Page, error) {
	ctx, span := tracer.Start(ctx, "client:GetUncached")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return Page{}, err
	}
	return c.parse(link, res.Body())
}

// SubmitForm posts a form-encoded query and parses the re-rendered page.
// never cached, every POST advances server-side session state.
func (c *Client) SubmitForm(ctx context.Context, link string, query map[string]string) (Page, error) {
	ctx, span := tracer.Start(ctx, "client:SubmitForm")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(query).
		Post(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit form")
		return Page{}, err
	}
	return c.parse(link, res.Body())
}

// Head probes a document link and returns its content type.
func (c *Client) Head(ctx context.Context, link string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:Head")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Head(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to probe media type")
		return "", err
	}
	return res.Header().Get("Content-Type"), nil
}
