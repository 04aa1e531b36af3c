package fetchapi

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// Session holds the credential cookies issued by the service. Every request
// made through a Client bound to the session carries them.
type Session struct {
	base *url.URL

	mu  sync.RWMutex
	jar *cookiejar.Jar
}

// NewSession creates an empty session scoped to baseURL.
func NewSession(baseURL string) (*Session, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	jar, err := newJar()
	if err != nil {
		return nil, err
	}
	return &Session{base: base, jar: jar}, nil
}

// Export returns the name/value pairs currently held for the service.
func (s *Session) Export() []*http.Cookie {
	return s.Cookies(s.base)
}

// Restore replaces the held cookies, typically from a persisted snapshot.
func (s *Session) Restore(cookies []*http.Cookie) error {
	jar, err := newJar()
	if err != nil {
		return err
	}
	scoped := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		scoped = append(scoped, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/", Secure: c.Secure, HttpOnly: true})
	}
	jar.SetCookies(s.base, scoped)
	s.mu.Lock()
	s.jar = jar
	s.mu.Unlock()
	return nil
}

// Clear drops every held cookie.
func (s *Session) Clear() error {
	return s.Restore(nil)
}

// Cookies implements http.CookieJar.
func (s *Session) Cookies(u *url.URL) []*http.Cookie {
	s.mu.RLock()
	jar := s.jar
	s.mu.RUnlock()
	return jar.Cookies(u)
}

// SetCookies implements http.CookieJar.
func (s *Session) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.RLock()
	jar := s.jar
	s.mu.RUnlock()
	jar.SetCookies(u, cookies)
}

var _ http.CookieJar = (*Session)(nil)

func newJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return jar, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", raw)
	}
	return base, nil
}
