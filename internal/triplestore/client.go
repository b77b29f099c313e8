package triplestore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/rdf"
)

const resultsMediaType = "application/sparql-results+json"

// Client is a SPARQL 1.1 Protocol client. Queries are sent as
// application/x-www-form-urlencoded POST bodies.
//
// Every failure (transport error, non-2xx status, undecodable body) is
// reported as an apperr store failure, never as an empty result.
type Client struct {
	endpoint string
	http     *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a client for the query endpoint at endpoint.
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid sparql endpoint %q", endpoint)
	}
	c := &Client{endpoint: endpoint, http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Select evaluates a SELECT query.
func (c *Client) Select(ctx context.Context, query string) ([]rdf.Binding, error) {
	body, err := c.post(ctx, query)
	if err != nil {
		return nil, apperr.StoreFailure("sparql select", err)
	}
	defer body.Close()

	rows, err := decodeSelect(body)
	if err != nil {
		return nil, apperr.StoreFailure("sparql select", err)
	}
	return rows, nil
}

// Ask evaluates an ASK query.
func (c *Client) Ask(ctx context.Context, query string) (bool, error) {
	body, err := c.post(ctx, query)
	if err != nil {
		return false, apperr.StoreFailure("sparql ask", err)
	}
	defer body.Close()

	ok, err := decodeAsk(body)
	if err != nil {
		return false, apperr.StoreFailure("sparql ask", err)
	}
	return ok, nil
}

func (c *Client) post(ctx context.Context, query string) (io.ReadCloser, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", resultsMediaType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query endpoint: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	return resp.Body, nil
}
