// Package fuseki talks to a SPARQL 1.1 endpoint (Apache Jena Fuseki) over the
// SPARQL protocol. Failures are reported once, wrapped in
// internalerr.ErrStoreUnavailable; retrying is left to the caller.
package fuseki

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/internalerr"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
)

var tracer = otel.Tracer("courseguide.fuseki")

const (
	contentTypeForm = "application/x-www-form-urlencoded"
	acceptResults   = "application/sparql-results+json"
)

// Config describes an endpoint. URL is the server root and Dataset the
// dataset name, giving <URL>/<Dataset>/query and <URL>/<Dataset>/update.
type Config struct {
	URL      string
	Dataset  string
	Username string
	Password string
	Timeout  time.Duration
	// RateLimit caps requests per second; zero disables limiting.
	RateLimit float64
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// HTTPError carries status and body for non-2xx responses.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 300))
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Client is a store.Store backed by a remote endpoint.
type Client struct {
	queryURL  string
	updateURL string
	username  string
	password  string
	http      *http.Client
	limiter   *rate.Limiter
}

// New validates cfg and builds a client. It does not contact the server.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" || cfg.Dataset == "" {
		return nil, fmt.Errorf("fuseki: url and dataset are required: %w", internalerr.ErrInvalidConfig)
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("fuseki: parse url: %w", internalerr.ErrInvalidConfig)
	}
	dataset := url.PathEscape(strings.Trim(cfg.Dataset, "/"))

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		queryURL:  base.String() + "/" + dataset + "/query",
		updateURL: base.String() + "/" + dataset + "/update",
		username:  cfg.Username,
		password:  cfg.Password,
		http:      hc,
		limiter:   limiter,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Query runs a SELECT and decodes the SPARQL JSON results.
func (c *Client) Query(ctx context.Context, q *sparql.Select) ([]sparql.Row, error) {
	ctx, span := tracer.Start(ctx, "fuseki.Query")
	defer span.End()
	span.SetAttributes(attribute.String("sparql.query_name", q.Name))

	body, err := c.post(ctx, c.queryURL, "query", q.String(), acceptResults)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer body.Close()

	rows, err := sparql.DecodeJSON(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fuseki: %w: %w", internalerr.ErrStoreUnavailable, err)
	}
	span.SetAttributes(attribute.Int("sparql.rows", len(rows)))
	span.SetStatus(codes.Ok, "")
	return rows, nil
}

// Update runs an update request.
func (c *Client) Update(ctx context.Context, u sparql.Update) error {
	ctx, span := tracer.Start(ctx, "fuseki.Update")
	defer span.End()

	body, err := c.post(ctx, c.updateURL, "update", u.String(), "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	io.Copy(io.Discard, body)
	body.Close()
	span.SetStatus(codes.Ok, "")
	return nil
}

// post sends one form-encoded request. On success the caller owns the body.
func (c *Client) post(ctx context.Context, endpoint, field, text, accept string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fuseki: %w: %w", internalerr.ErrStoreUnavailable, err)
	}

	form := url.Values{field: {text}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("fuseki: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeForm)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fuseki: %w: %w", internalerr.ErrStoreUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		herr := &HTTPError{Method: req.Method, URL: endpoint, StatusCode: resp.StatusCode, Body: b}
		return nil, fmt.Errorf("fuseki: %w: %w", internalerr.ErrStoreUnavailable, herr)
	}
	return resp.Body, nil
}
