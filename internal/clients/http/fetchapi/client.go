package fetchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultBaseURL is the hosted dog adoption service.
	DefaultBaseURL = "https://frontend-take-home-service.fetch.com"
	// DefaultTimeout bounds every request when no timeout is configured.
	DefaultTimeout = 10 * time.Second
)

// Endpoint labels used for errors and request metrics.
const (
	EndpointLogin  = "login"
	EndpointSearch = "search"
	EndpointDogs   = "dogs"
	EndpointMatch  = "match"
	EndpointProbe  = "probe"
)

const maxBodyBytes = 1 << 20

// RequestObserver receives one callback per completed request. status is 0
// when no response arrived.
type RequestObserver interface {
	ObserveRequest(endpoint string, status int, elapsed time.Duration)
}

// Client talks to the dog adoption service on behalf of one Session.
type Client struct {
	base     *url.URL
	http     *http.Client
	session  *Session
	breaker  *gobreaker.CircuitBreaker
	observer RequestObserver
}

type options struct {
	httpClient *http.Client
	transport  http.RoundTripper
	timeout    time.Duration
	session    *Session
	breaker    *gobreaker.CircuitBreaker
	observer   RequestObserver
}

// Option configures a Client.
type Option func(*options)

// WithSession binds the client to an existing session instead of a fresh one.
func WithSession(session *Session) Option {
	return func(o *options) {
		o.session = session
	}
}

// WithHTTPClient uses hc as a template. Its Jar is always replaced by the session.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithTransport overrides the round tripper, typically to share one across sessions.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithBreaker routes requests through cb.
func WithBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(o *options) {
		o.breaker = cb
	}
}

// WithObserver reports request outcomes to obs.
func WithObserver(obs RequestObserver) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// NewTransport wraps base with OpenTelemetry client instrumentation.
func NewTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return otelhttp.NewTransport(base)
}

// NewClient builds a client for baseURL. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	session := o.session
	if session == nil {
		if session, err = NewSession(base.String()); err != nil {
			return nil, err
		}
	}
	hc := http.Client{Timeout: DefaultTimeout}
	if o.httpClient != nil {
		hc = *o.httpClient
	}
	if o.transport != nil {
		hc.Transport = o.transport
	}
	if hc.Transport == nil {
		hc.Transport = NewTransport(nil)
	}
	if o.timeout > 0 {
		hc.Timeout = o.timeout
	}
	hc.Jar = session
	return &Client{
		base:     base,
		http:     &hc,
		session:  session,
		breaker:  o.breaker,
		observer: o.observer,
	}, nil
}

// Session returns the cookie session the client sends with every request.
func (c *Client) Session() *Session {
	return c.session
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Login exchanges name and email for a session cookie.
func (c *Client) Login(ctx context.Context, req LoginRequest) error {
	resp, err := c.send(ctx, EndpointLogin, http.MethodPost, "/auth/login", nil, req)
	if err != nil {
		return err
	}
	defer drain(resp)
	if !isSuccess(resp) {
		return readError(resp, EndpointLogin)
	}
	return nil
}

// Search runs a filtered, sorted, paginated id search.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	query, err := params.Query()
	if err != nil {
		return nil, fmt.Errorf("encode search params: %w", err)
	}
	resp, err := c.send(ctx, EndpointSearch, http.MethodGet, "/dogs/search", query, nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	if !isSuccess(resp) {
		return nil, readError(resp, EndpointSearch)
	}
	var out SearchResponse
	if err := decode(resp, EndpointSearch, &out); err != nil {
		return nil, err
	}
	if out.ResultIDs == nil {
		out.ResultIDs = []string{}
	}
	return &out, nil
}

// FetchDogs resolves ids to full records. An empty ids slice returns an
// empty result without touching the network.
func (c *Client) FetchDogs(ctx context.Context, ids []string) ([]Dog, error) {
	if len(ids) == 0 {
		return []Dog{}, nil
	}
	resp, err := c.send(ctx, EndpointDogs, http.MethodPost, "/dogs", nil, ids)
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	if !isSuccess(resp) {
		return nil, readError(resp, EndpointDogs)
	}
	var dogs []Dog
	if err := decode(resp, EndpointDogs, &dogs); err != nil {
		return nil, err
	}
	if dogs == nil {
		dogs = []Dog{}
	}
	return dogs, nil
}

// Match asks the service to pick one id out of ids.
func (c *Client) Match(ctx context.Context, ids []string) (*MatchResponse, error) {
	if len(ids) == 0 {
		return nil, ErrNoIDs
	}
	resp, err := c.send(ctx, EndpointMatch, http.MethodPost, "/dogs/match", nil, ids)
	if err != nil {
		return nil, err
	}
	defer drain(resp)
	if !isSuccess(resp) {
		return nil, readError(resp, EndpointMatch)
	}
	var out MatchResponse
	if err := decode(resp, EndpointMatch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Probe issues the cheapest authenticated call to learn whether the session is live.
func (c *Client) Probe(ctx context.Context) error {
	resp, err := c.send(ctx, EndpointProbe, http.MethodGet, "/dogs/search", url.Values{"size": []string{"1"}}, nil)
	if err != nil {
		return err
	}
	defer drain(resp)
	if !isSuccess(resp) {
		return readError(resp, EndpointProbe)
	}
	return nil
}

func (c *Client) send(ctx context.Context, endpoint, method, path string, query url.Values, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}
	target := c.base.JoinPath(path)
	target.RawQuery = query.Encode()
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.execute(req)
	if c.observer != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		c.observer.ObserveRequest(endpoint, status, time.Since(started))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, endpoint, err)
	}
	return resp, nil
}

func (c *Client) execute(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.http.Do(req)
	}
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, nil
	})
	resp, _ := result.(*http.Response)
	if errors.Is(err, errServerStatus) && resp != nil {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func isSuccess(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func decode(resp *http.Response, endpoint string, dst any) error {
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func readError(resp *http.Response, endpoint string) *APIError {
	apiErr := &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Status: resp.Status}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil || len(raw) == 0 {
		return apiErr
	}
	var body errorBody
	if json.Unmarshal(raw, &body) == nil && body.Message != nil {
		apiErr.Message = strings.TrimSpace(*body.Message)
	}
	return apiErr
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
}
