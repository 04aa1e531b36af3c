package domain

import (
	"errors"
	"net/http"
	"strings"
	"time"

	dogsdomain "github.com/Apurer/pawmatch/internal/domains/dogs/domain"
)

var ErrEmptySessionID = errors.New("portal session id is required")

// Cookie is an upstream credential cookie held on behalf of a visitor.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Snapshot is the persisted state of one portal session. The live graph is
// rebuilt from it when the process restarts.
type Snapshot struct {
	ID        string              `json:"id"`
	Cookies   []Cookie            `json:"cookies"`
	Criteria  dogsdomain.Criteria `json:"criteria"`
	Selection []string            `json:"selection"`
	ExpiresAt time.Time           `json:"expiresAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// NewSnapshot starts an empty snapshot for id with default criteria.
func NewSnapshot(id string, now time.Time, ttl time.Duration) (*Snapshot, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEmptySessionID
	}
	return &Snapshot{
		ID:        id,
		Cookies:   []Cookie{},
		Criteria:  dogsdomain.DefaultCriteria(),
		Selection: []string{},
		ExpiresAt: now.Add(ttl),
		UpdatedAt: now,
	}, nil
}

// Expired reports whether the snapshot is past its expiry at now.
func (s *Snapshot) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Touch extends the expiry by ttl from now.
func (s *Snapshot) Touch(now time.Time, ttl time.Duration) {
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(ttl)
}

// FromHTTPCookies keeps name and value; the jar restores scope.
func FromHTTPCookies(cookies []*http.Cookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		out = append(out, Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

func ToHTTPCookies(cookies []Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}
