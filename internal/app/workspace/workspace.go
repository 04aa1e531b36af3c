// Package workspace assembles the per-visitor object graph: one remote
// client and cookie session, the auth gate, and the dogs browser.
package workspace

import (
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	fetchclient "github.com/Apurer/pawmatch/internal/clients/http/fetchapi"
	authfetch "github.com/Apurer/pawmatch/internal/domains/auth/adapters/external/fetchapi"
	authapp "github.com/Apurer/pawmatch/internal/domains/auth/application"
	authports "github.com/Apurer/pawmatch/internal/domains/auth/ports"
	dogsfetch "github.com/Apurer/pawmatch/internal/domains/dogs/adapters/external/fetchapi"
	dogsobs "github.com/Apurer/pawmatch/internal/domains/dogs/adapters/observability"
	dogsapp "github.com/Apurer/pawmatch/internal/domains/dogs/application"
	dogsdomain "github.com/Apurer/pawmatch/internal/domains/dogs/domain"
)

// Workspace is everything one visitor interacts with.
type Workspace struct {
	Client  *fetchclient.Client
	Events  *authapp.Events
	Gate    *authapp.Gate
	Auth    *authapp.Service
	Browser *dogsapp.Browser

	unwatch func()
}

type options struct {
	logger        *slog.Logger
	tracer        trace.Tracer
	meter         metric.Meter
	criteria      *dogsdomain.Criteria
	selection     []string
	cookies       []*http.Cookie
	redirects     []authports.RedirectFunc
	clientOptions []fetchclient.Option
	manualLoad    bool
}

// Option configures a Workspace.
type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(o *options) {
		o.meter = m
	}
}

// WithCriteria seeds the filter state, e.g. from a stored snapshot.
func WithCriteria(c dogsdomain.Criteria) Option {
	return func(o *options) {
		o.criteria = &c
	}
}

// WithSelection restores previously selected dog ids.
func WithSelection(ids []string) Option {
	return func(o *options) {
		o.selection = append([]string(nil), ids...)
	}
}

// WithCookies restores upstream credential cookies.
func WithCookies(cookies []*http.Cookie) Option {
	return func(o *options) {
		o.cookies = cookies
	}
}

// OnRedirect registers fn to receive login redirects from the gate.
func OnRedirect(fn authports.RedirectFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.redirects = append(o.redirects, fn)
		}
	}
}

// WithClientOptions passes options through to the remote client.
func WithClientOptions(opts ...fetchclient.Option) Option {
	return func(o *options) {
		o.clientOptions = append(o.clientOptions, opts...)
	}
}

// WithManualLoad stops the gate from loading results when it becomes
// authenticated. The caller runs Browser.Query.Load itself and sees its error.
func WithManualLoad() Option {
	return func(o *options) {
		o.manualLoad = true
	}
}

// New builds a workspace against baseURL. The gate starts in GateChecking;
// callers enter it before showing protected views.
func New(baseURL string, opts ...Option) (*Workspace, error) {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	client, err := fetchclient.NewClient(baseURL, o.clientOptions...)
	if err != nil {
		return nil, err
	}
	if len(o.cookies) > 0 {
		if err := client.Session().Restore(o.cookies); err != nil {
			return nil, err
		}
	}

	gateOpts := []authapp.GateOption{authapp.WithGateLogger(o.logger.With(slog.String("component", "gate")))}
	for _, fn := range o.redirects {
		gateOpts = append(gateOpts, authapp.WithRedirect(fn))
	}
	events := authapp.NewEvents()
	gate := authapp.NewGate(authfetch.NewAuthenticator(client), gateOpts...)
	auth := authapp.NewService(authfetch.NewAuthenticator(client), events,
		authapp.WithServiceLogger(o.logger.With(slog.String("component", "auth"))))

	catalog := dogsobs.New(
		dogsfetch.NewCatalog(client),
		dogsobs.WithLogger(o.logger),
		dogsobs.WithTracer(o.tracer),
		dogsobs.WithMeter(o.meter),
	)
	var queryOpts []dogsapp.QueryOption
	if o.criteria != nil {
		queryOpts = append(queryOpts, dogsapp.WithInitialCriteria(*o.criteria))
	}
	browser := dogsapp.NewBrowser(catalog, gate, o.logger.With(slog.String("component", "dogs")), queryOpts...)
	if len(o.selection) > 0 {
		browser.Results.RestoreSelection(o.selection)
	}

	if !o.manualLoad {
		gate.OnAuthenticated(browser.Query.Load)
	}
	unwatch := gate.Watch(events)

	return &Workspace{
		Client:  client,
		Events:  events,
		Gate:    gate,
		Auth:    auth,
		Browser: browser,
		unwatch: unwatch,
	}, nil
}

// Cookies exports the upstream credential cookies for persistence.
func (w *Workspace) Cookies() []*http.Cookie {
	return w.Client.Session().Export()
}

// Close detaches the gate from session events.
func (w *Workspace) Close() {
	if w.unwatch != nil {
		w.unwatch()
	}
}
