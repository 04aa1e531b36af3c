package portal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"

	"github.com/Apurer/pawmatch/internal/app/workspace"
	portaldomain "github.com/Apurer/pawmatch/internal/domains/portal/domain"
	portalports "github.com/Apurer/pawmatch/internal/domains/portal/ports"
	"github.com/Apurer/pawmatch/internal/platform/observability"
)

// CookieName carries the signed portal session id.
const CookieName = "pawmatch_session"

// Visitor is one live portal session.
type Visitor struct {
	ID        string
	Workspace *workspace.Workspace

	lastSeen time.Time
}

// SessionsConfig configures Sessions.
type SessionsConfig struct {
	BaseURL  string
	TTL      time.Duration
	HashKey  []byte
	BlockKey []byte
	Secure   bool
	// Workspace options applied to every visitor, e.g. logger and tracer.
	Workspace []workspace.Option
	Logger    *slog.Logger
	Metrics   *observability.Collector
}

// Sessions maps signed cookies to live workspaces and keeps a snapshot of
// each in the store so visitors survive a restart.
type Sessions struct {
	cfg    SessionsConfig
	codec  *securecookie.SecureCookie
	store  portalports.SessionStore
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	live map[string]*Visitor
}

func NewSessions(store portalports.SessionStore, cfg SessionsConfig) *Sessions {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if len(cfg.HashKey) == 0 {
		cfg.HashKey = securecookie.GenerateRandomKey(32)
	}
	if len(cfg.BlockKey) == 0 {
		cfg.BlockKey = nil
	}
	codec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	codec.MaxAge(int(cfg.TTL / time.Second))
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sessions{
		cfg:    cfg,
		codec:  codec,
		store:  store,
		logger: logger,
		now:    time.Now,
		live:   map[string]*Visitor{},
	}
}

// Acquire returns the visitor for r, restoring it from the store or
// starting a new one. created reports whether a cookie must be issued.
// The store read and workspace construction run outside s.mu so a slow
// store only delays the visitor being restored.
func (s *Sessions) Acquire(ctx context.Context, r *http.Request) (visitor *Visitor, created bool, err error) {
	id := s.decode(r)
	if id != "" {
		if v, ok := s.lookup(id); ok {
			return v, false, nil
		}
		snapshot, err := s.store.Get(ctx, id)
		switch {
		case err == nil:
			v, err := s.build(snapshot)
			if err != nil {
				return nil, false, err
			}
			v, restored := s.adopt(v)
			if restored {
				s.logger.LogAttrs(ctx, slog.LevelInfo, "portal session restored", slog.String("session.id", id))
			}
			return v, false, nil
		case !errors.Is(err, portalports.ErrNotFound):
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to load portal session", slog.String("error", err.Error()))
		}
	}

	snapshot, err := portaldomain.NewSnapshot(uuid.NewString(), s.now(), s.cfg.TTL)
	if err != nil {
		return nil, false, err
	}
	v, err := s.build(snapshot)
	if err != nil {
		return nil, false, err
	}
	v, _ = s.adopt(v)
	s.logger.LogAttrs(ctx, slog.LevelDebug, "portal session started", slog.String("session.id", v.ID))
	return v, true, nil
}

func (s *Sessions) lookup(id string) (*Visitor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.live[id]
	if ok {
		v.lastSeen = s.now()
	}
	return v, ok
}

// adopt registers v unless a concurrent request for the same id got there
// first, in which case v is closed and the live visitor is returned.
func (s *Sessions) adopt(v *Visitor) (*Visitor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.live[v.ID]; ok {
		v.Workspace.Close()
		existing.lastSeen = s.now()
		return existing, false
	}
	v.lastSeen = s.now()
	s.live[v.ID] = v
	s.cfg.Metrics.SetActiveSessions(len(s.live))
	return v, true
}

func (s *Sessions) build(snapshot *portaldomain.Snapshot) (*Visitor, error) {
	opts := append([]workspace.Option{}, s.cfg.Workspace...)
	opts = append(opts,
		workspace.WithCookies(portaldomain.ToHTTPCookies(snapshot.Cookies)),
		workspace.WithCriteria(snapshot.Criteria),
		workspace.WithSelection(snapshot.Selection),
	)
	ws, err := workspace.New(s.cfg.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Visitor{ID: snapshot.ID, Workspace: ws}, nil
}

// Persist saves the visitor's current state and extends its expiry.
func (s *Sessions) Persist(ctx context.Context, v *Visitor) error {
	now := s.now()
	state := v.Workspace.Browser.State()
	snapshot := &portaldomain.Snapshot{
		ID:        v.ID,
		Cookies:   portaldomain.FromHTTPCookies(v.Workspace.Cookies()),
		Criteria:  state.Criteria,
		Selection: state.Selected,
	}
	snapshot.Touch(now, s.cfg.TTL)
	return s.store.Save(ctx, snapshot)
}

// Issue writes the signed session cookie.
func (s *Sessions) Issue(w http.ResponseWriter, v *Visitor) error {
	encoded, err := s.codec.Encode(CookieName, v.ID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(s.cfg.TTL / time.Second),
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Sweep drops live visitors idle for longer than the TTL. Their snapshots
// stay in the store until purged.
func (s *Sessions) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, v := range s.live {
		if now.Sub(v.lastSeen) >= s.cfg.TTL {
			v.Workspace.Close()
			delete(s.live, id)
			evicted++
		}
	}
	s.cfg.Metrics.SetActiveSessions(len(s.live))
	return evicted
}

// Live returns the number of visitors held in memory.
func (s *Sessions) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Close releases every live workspace.
func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, v := range s.live {
		v.Workspace.Close()
		delete(s.live, id)
	}
}

func (s *Sessions) decode(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	var id string
	if err := s.codec.Decode(CookieName, cookie.Value, &id); err != nil {
		s.logger.LogAttrs(r.Context(), slog.LevelDebug, "rejected portal session cookie", slog.String("error", err.Error()))
		return ""
	}
	return id
}
