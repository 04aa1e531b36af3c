package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Apurer/pawmatch/internal/domains/auth/domain"
	"github.com/Apurer/pawmatch/internal/domains/auth/ports"
)

// Dependent loads data that needs a live session. Dependents run once per
// transition into GateAuthenticated.
type Dependent func(ctx context.Context) error

// Decision is the outcome of entering a protected view.
type Decision struct {
	State    domain.GateState
	Redirect *domain.Redirect
}

// Gate tracks whether the session is live and keeps protected views closed
// until a probe succeeds. Every transition into GateUnauthenticated emits
// exactly one redirect.
type Gate struct {
	prober ports.Prober
	logger *slog.Logger
	probes singleflight.Group

	mu         sync.Mutex
	state      domain.GateState
	returnURL  string
	redirects  []ports.RedirectFunc
	dependents []Dependent
	events     *Events
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithRedirect registers fn to receive redirect instructions.
func WithRedirect(fn ports.RedirectFunc) GateOption {
	return func(g *Gate) {
		if fn != nil {
			g.redirects = append(g.redirects, fn)
		}
	}
}

// WithGateLogger injects a slog logger.
func WithGateLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logger
	}
}

// NewGate returns a gate in GateChecking.
func NewGate(prober ports.Prober, opts ...GateOption) *Gate {
	g := &Gate{prober: prober, state: domain.GateChecking}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return g
}

// OnAuthenticated registers fn as a dependent.
func (g *Gate) OnAuthenticated(fn Dependent) {
	if fn == nil {
		return
	}
	g.mu.Lock()
	g.dependents = append(g.dependents, fn)
	g.mu.Unlock()
}

// Watch re-checks the session whenever a new one is established and
// announces invalidations on events.
func (g *Gate) Watch(events *Events) (unsubscribe func()) {
	g.mu.Lock()
	g.events = events
	g.mu.Unlock()
	return events.Subscribe(func(ctx context.Context, event domain.SessionEvent) {
		if event.Kind != domain.SessionEstablished {
			return
		}
		g.mu.Lock()
		g.state = domain.GateChecking
		g.mu.Unlock()
		g.Enter(ctx, "")
	})
}

// State returns the current state.
func (g *Gate) State() domain.GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Authenticated reports whether protected content may be shown.
func (g *Gate) Authenticated() bool {
	return g.State() == domain.GateAuthenticated
}

// ReturnURL is the path recorded by the last Enter.
func (g *Gate) ReturnURL() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.returnURL
}

// Enter resolves the session before a protected view at path is shown.
// Concurrent callers share one probe. The call blocks until the state is
// resolved and, on success, until dependents have run.
func (g *Gate) Enter(ctx context.Context, path string) Decision {
	g.mu.Lock()
	if path != "" {
		g.returnURL = path
	}
	if g.state == domain.GateAuthenticated {
		g.mu.Unlock()
		return Decision{State: domain.GateAuthenticated}
	}
	g.state = domain.GateChecking
	g.mu.Unlock()

	v, _, _ := g.probes.Do("probe", func() (any, error) {
		return g.resolve(ctx), nil
	})
	return v.(Decision)
}

// Invalidate moves the gate to GateUnauthenticated. Only the call that
// performs the transition emits a redirect and reports true.
func (g *Gate) Invalidate(ctx context.Context) bool {
	redirect, changed := g.becomeUnauthenticated(ctx)
	if changed {
		g.logger.LogAttrs(ctx, slog.LevelInfo, "session invalidated", slog.String("returnUrl", redirect.ReturnURL))
	}
	return changed
}

func (g *Gate) resolve(ctx context.Context) Decision {
	err := g.prober.Probe(ctx)
	if err == nil {
		g.becomeAuthenticated(ctx)
		return Decision{State: domain.GateAuthenticated}
	}
	if errors.Is(err, domain.ErrSessionExpired) {
		g.logger.LogAttrs(ctx, slog.LevelInfo, "session probe rejected")
	} else {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "session probe failed", slog.String("error", err.Error()))
	}
	redirect, _ := g.becomeUnauthenticated(ctx)
	return Decision{State: domain.GateUnauthenticated, Redirect: &redirect}
}

func (g *Gate) becomeAuthenticated(ctx context.Context) {
	g.mu.Lock()
	if g.state == domain.GateAuthenticated {
		g.mu.Unlock()
		return
	}
	g.state = domain.GateAuthenticated
	dependents := append([]Dependent(nil), g.dependents...)
	g.mu.Unlock()

	g.logger.LogAttrs(ctx, slog.LevelInfo, "session authenticated")
	for _, fn := range dependents {
		if err := fn(ctx); err != nil {
			g.logger.LogAttrs(ctx, slog.LevelWarn, "dependent load failed", slog.String("error", err.Error()))
		}
	}
}

func (g *Gate) becomeUnauthenticated(ctx context.Context) (domain.Redirect, bool) {
	g.mu.Lock()
	redirect := domain.NewRedirect(g.returnURL)
	if g.state == domain.GateUnauthenticated {
		g.mu.Unlock()
		return redirect, false
	}
	g.state = domain.GateUnauthenticated
	redirects := append([]ports.RedirectFunc(nil), g.redirects...)
	events := g.events
	g.mu.Unlock()

	for _, fn := range redirects {
		fn(ctx, redirect)
	}
	if events != nil {
		events.Publish(ctx, domain.SessionInvalidated)
	}
	return redirect, true
}
