// Package fetchapitest provides an in-process stand-in for the dog adoption
// service, for tests that exercise the client end to end.
package fetchapitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/Apurer/pawmatch/internal/clients/http/fetchapi"
)

// CookieName is the credential cookie issued on login.
const CookieName = "fetch-access-token"

// Server serves /auth/login, /dogs/search, /dogs and /dogs/match from memory.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	dogs         []fetchapi.Dog
	tokens       map[string]bool
	hits         map[string]int
	searches     []url.Values
	matchID      string
	loginStatus  int
	loginMessage string
	searchStatus int
	dogsStatus   int
	matchStatus  int
}

// NewServer starts a server seeded with dogs and registers cleanup on t.
func NewServer(t testing.TB, dogs ...fetchapi.Dog) *Server {
	t.Helper()
	s := &Server{
		dogs:   slices.Clone(dogs),
		tokens: map[string]bool{},
		hits:   map[string]int{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("GET /dogs/search", s.search)
	mux.HandleFunc("POST /dogs", s.fetch)
	mux.HandleFunc("POST /dogs/match", s.match)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// SampleDogs returns n deterministic dogs with ids d1..dn.
func SampleDogs(n int) []fetchapi.Dog {
	breeds := []string{"Beagle", "Bulldog", "Poodle", "Golden Retriever"}
	zips := []string{"10001", "60601", "94105"}
	dogs := make([]fetchapi.Dog, 0, n)
	for i := 1; i <= n; i++ {
		dogs = append(dogs, fetchapi.Dog{
			ID:      fmt.Sprintf("d%d", i),
			Img:     fmt.Sprintf("https://img.example/d%d.jpg", i),
			Name:    fmt.Sprintf("Dog %d", i),
			Age:     i % 12,
			ZipCode: zips[i%len(zips)],
			Breed:   breeds[i%len(breeds)],
		})
	}
	return dogs
}

// Hits returns how many requests reached the route, e.g. "POST /dogs".
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// Searches returns the query of every search request received so far.
func (s *Server) Searches() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.searches)
}

// SetMatch fixes the id returned by /dogs/match.
func (s *Server) SetMatch(id string) {
	s.mu.Lock()
	s.matchID = id
	s.mu.Unlock()
}

// FailLogin makes login answer status with an optional {"message"} body.
func (s *Server) FailLogin(status int, message string) {
	s.mu.Lock()
	s.loginStatus, s.loginMessage = status, message
	s.mu.Unlock()
}

// FailSearch makes authenticated searches answer status. Zero restores normal behavior.
func (s *Server) FailSearch(status int) {
	s.mu.Lock()
	s.searchStatus = status
	s.mu.Unlock()
}

// FailFetch makes /dogs answer status.
func (s *Server) FailFetch(status int) {
	s.mu.Lock()
	s.dogsStatus = status
	s.mu.Unlock()
}

// FailMatch makes /dogs/match answer status.
func (s *Server) FailMatch(status int) {
	s.mu.Lock()
	s.matchStatus = status
	s.mu.Unlock()
}

// ExpireSessions revokes every issued token.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	s.tokens = map[string]bool{}
	s.mu.Unlock()
}

func (s *Server) count(r *http.Request) {
	s.mu.Lock()
	s.hits[r.Method+" "+r.URL.Path]++
	s.mu.Unlock()
}

func (s *Server) authorized(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[cookie.Value]
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	var body fetchapi.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" || body.Email == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	status, message := s.loginStatus, s.loginMessage
	s.mu.Unlock()
	if status != 0 {
		if message != "" {
			writeJSON(w, status, map[string]string{"message": message})
			return
		}
		w.WriteHeader(status)
		return
	}
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = true
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: token, Path: "/", HttpOnly: true})
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	if !s.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	query := r.URL.Query()
	s.mu.Lock()
	s.searches = append(s.searches, query)
	status := s.searchStatus
	dogs := slices.Clone(s.dogs)
	s.mu.Unlock()
	if status != 0 {
		writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
		return
	}

	matches := filterDogs(dogs, query)
	sortDogs(matches, query.Get("sort"))

	size := atoiDefault(query.Get("size"), 25)
	from := atoiDefault(query.Get("from"), 0)
	end := min(from+size, len(matches))
	start := min(from, end)
	ids := make([]string, 0, end-start)
	for _, d := range matches[start:end] {
		ids = append(ids, d.ID)
	}
	resp := fetchapi.SearchResponse{ResultIDs: ids, Total: len(matches)}
	if end < len(matches) {
		next := pageLink(query, end)
		resp.Next = &next
	}
	if start > 0 {
		prev := pageLink(query, max(start-size, 0))
		resp.Prev = &prev
	}
	writeJSON(w, http.StatusOK, resp)
}

// fetch answers in reverse request order so callers cannot rely on ordering.
func (s *Server) fetch(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	if !s.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var ids []string
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	status := s.dogsStatus
	index := make(map[string]fetchapi.Dog, len(s.dogs))
	for _, d := range s.dogs {
		index[d.ID] = d
	}
	s.mu.Unlock()
	if status != 0 {
		w.WriteHeader(status)
		return
	}
	out := make([]fetchapi.Dog, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if d, ok := index[ids[i]]; ok {
			out = append(out, d)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) match(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	if !s.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var ids []string
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil || len(ids) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	status, matchID := s.matchStatus, s.matchID
	s.mu.Unlock()
	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if matchID == "" {
		matchID = ids[0]
	}
	writeJSON(w, http.StatusOK, fetchapi.MatchResponse{Match: matchID})
}

func filterDogs(dogs []fetchapi.Dog, query url.Values) []fetchapi.Dog {
	breeds := query["breeds"]
	zips := query["zipCodes"]
	ageMin, hasMin := atoi(query.Get("ageMin"))
	ageMax, hasMax := atoi(query.Get("ageMax"))
	out := make([]fetchapi.Dog, 0, len(dogs))
	for _, d := range dogs {
		if len(breeds) > 0 && !slices.Contains(breeds, d.Breed) {
			continue
		}
		if len(zips) > 0 && !slices.Contains(zips, d.ZipCode) {
			continue
		}
		if hasMin && d.Age < ageMin {
			continue
		}
		if hasMax && d.Age > ageMax {
			continue
		}
		out = append(out, d)
	}
	return out
}

func sortDogs(dogs []fetchapi.Dog, key string) {
	field, dir, _ := strings.Cut(key, ":")
	if field == "" {
		field, dir = "breed", "asc"
	}
	less := func(a, b fetchapi.Dog) bool {
		switch field {
		case "name":
			return a.Name < b.Name
		case "age":
			return a.Age < b.Age
		default:
			return a.Breed < b.Breed
		}
	}
	sort.SliceStable(dogs, func(i, j int) bool {
		if dir == "desc" {
			return less(dogs[j], dogs[i])
		}
		return less(dogs[i], dogs[j])
	})
}

func pageLink(query url.Values, from int) string {
	next := url.Values{}
	for k, v := range query {
		next[k] = slices.Clone(v)
	}
	next.Set("from", strconv.Itoa(from))
	return "/dogs/search?" + next.Encode()
}

func atoi(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func atoiDefault(raw string, fallback int) int {
	if n, ok := atoi(raw); ok && n >= 0 {
		return n
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
