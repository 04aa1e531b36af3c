package domain

import (
	"net/url"
	"strings"
	"time"
)

// GateState is where the session gate currently stands.
type GateState int32

const (
	GateChecking GateState = iota
	GateAuthenticated
	GateUnauthenticated
)

func (s GateState) String() string {
	switch s {
	case GateAuthenticated:
		return "authenticated"
	case GateUnauthenticated:
		return "unauthenticated"
	default:
		return "checking"
	}
}

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/auth"

// DefaultLandingPath is used when no safe return path is known.
const DefaultLandingPath = "/search"

// Redirect instructs the presentation layer to show the login entry point.
type Redirect struct {
	ReturnURL string
}

// NewRedirect keeps returnURL only when it is a local path.
func NewRedirect(returnURL string) Redirect {
	return Redirect{ReturnURL: SafeReturnURL(returnURL, "")}
}

// Location renders the login URL with the return path encoded.
func (r Redirect) Location() string {
	if r.ReturnURL == "" {
		return LoginPath
	}
	return LoginPath + "?returnUrl=" + url.QueryEscape(r.ReturnURL)
}

// SafeReturnURL rejects absolute and protocol-relative targets.
func SafeReturnURL(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return fallback
	}
	if strings.HasPrefix(raw, LoginPath+"?") || raw == LoginPath {
		return fallback
	}
	return raw
}

// SessionEventKind distinguishes session lifecycle notifications.
type SessionEventKind string

const (
	SessionEstablished SessionEventKind = "established"
	SessionInvalidated SessionEventKind = "invalidated"
)

// SessionEvent is published whenever the session changes.
type SessionEvent struct {
	Kind SessionEventKind
	At   time.Time
}
