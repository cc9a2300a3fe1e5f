package prediction

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"bracketbuddy/internal/config"
	"bracketbuddy/internal/logger"
	"bracketbuddy/internal/pkg/circuit"
)

const (
	predictionsPath = "/api/predictions"
	maxBodyBytes    = 8 << 20
	errorBodyBytes  = 4096
)

// Fetcher is what the chart sessions need from the prediction API.
type Fetcher interface {
	Fetch(ctx context.Context, sel Selection) (Payload, error)
}

// Client talks to the prediction API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	headers    map[string]string
	parseOpts  ParseOptions
	breaker    *circuit.CircuitBreaker
	log        *logger.Component
}

// NewClient builds a client from configuration. opts decides how point values are coerced.
func NewClient(cfg config.PredictionsConfig, opts ParseOptions) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("predictions.base_url cannot be empty")
	}
	parsed, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing predictions.base_url failed: %w", err)
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402
	}
	breaker := circuit.NewCircuitBreaker("predictions", cfg.BreakerThreshold, cfg.BreakerCooldown())
	breaker.SetFaultFilter(countsAsUpstreamFault)
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		headers:    cfg.Headers,
		parseOpts:  opts,
		breaker:    breaker,
		log:        logger.Named("predictions"),
	}, nil
}

// SetHTTPClient sets the HTTP client for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Breaker exposes the circuit breaker state for health reporting.
func (c *Client) Breaker() *circuit.CircuitBreaker {
	return c.breaker
}

// Endpoint builds /api/predictions/{team1}/{year1}/{team2}/{year2} with escaped segments.
func (c *Client) Endpoint(sel Selection) (string, error) {
	if c == nil || c.baseURL == nil {
		return "", fmt.Errorf("prediction client not initialized")
	}
	sel = sel.Normalize()
	if err := sel.Complete(); err != nil {
		return "", err
	}
	segments := []string{sel.HomeTeam, sel.HomeYear, sel.AwayTeam, sel.AwayYear}
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	base := strings.TrimRight(c.baseURL.String(), "/")
	return base + predictionsPath + "/" + strings.Join(segments, "/"), nil
}

// Fetch retrieves and parses the prediction for sel.
func (c *Client) Fetch(ctx context.Context, sel Selection) (Payload, error) {
	raw, err := c.FetchRaw(ctx, sel)
	if err != nil {
		return Payload{}, err
	}
	payload, err := Parse(raw, c.parseOpts)
	if err != nil {
		return Payload{}, err
	}
	c.log.Debugf("fetched %s samples=%d derived_colors=%t", sel, len(payload.HomePoints), payload.ColorsDerived)
	return payload, nil
}

// FetchAsync runs Fetch in a goroutine and delivers exactly one Result tagged with seq.
func (c *Client) FetchAsync(ctx context.Context, seq uint64, sel Selection) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		payload, err := c.Fetch(ctx, sel)
		out <- Result{Seq: seq, Selection: sel, Payload: payload, Err: err}
	}()
	return out
}

// FetchRaw returns the response body once it is known to be JSON.
func (c *Client) FetchRaw(ctx context.Context, sel Selection) ([]byte, error) {
	endpoint, err := c.Endpoint(sel)
	if err != nil {
		return nil, err
	}
	var body []byte
	err = c.breaker.Do(func() error {
		var reqErr error
		body, reqErr = c.doRequest(ctx, endpoint)
		return reqErr
	})
	if errors.Is(err, circuit.ErrOpen) {
		return nil, &FetchError{Kind: KindCircuitOpen, URL: endpoint, Err: err}
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, URL: endpoint, Err: fmt.Errorf("building request failed: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &FetchError{Kind: KindCanceled, URL: endpoint, Err: ctxErr}
		}
		return nil, &FetchError{Kind: KindTransport, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyBytes))
		return nil, &FetchError{
			Kind:       KindStatus,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &FetchError{Kind: KindCanceled, URL: endpoint, Err: ctxErr}
		}
		return nil, &FetchError{Kind: KindTransport, URL: endpoint, Err: fmt.Errorf("reading body failed: %w", err)}
	}
	if !gjson.ValidBytes(data) {
		return nil, &FetchError{Kind: KindDecode, URL: endpoint, Err: errors.New("response body is not valid JSON")}
	}
	return data, nil
}

// countsAsUpstreamFault keeps caller cancellations and 4xx replies from tripping the breaker.
func countsAsUpstreamFault(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return true
	}
	switch fe.Kind {
	case KindTransport:
		return true
	case KindStatus:
		return fe.StatusCode >= 500
	default:
		return false
	}
}
