package portal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pawmatch/internal/clients/http/fetchapi/fetchapitest"
	portalmemory "github.com/Apurer/pawmatch/internal/domains/portal/adapters/memory"
	"github.com/Apurer/pawmatch/internal/platform/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	upstream *fetchapitest.Server
	portal   *httptest.Server
	store    *portalmemory.SessionStore
	sessions *Sessions
	client   *http.Client
}

func newHarness(t *testing.T, upstream *fetchapitest.Server, store *portalmemory.SessionStore) *harness {
	t.Helper()
	metrics := observability.NewCollector("portal_test")
	sessions := NewSessions(store, SessionsConfig{
		BaseURL: upstream.URL,
		TTL:     time.Hour,
		HashKey: []byte("0123456789abcdef0123456789abcdef"),
		Metrics: metrics,
	})
	t.Cleanup(sessions.Close)
	server := httptest.NewServer(NewRouter(NewAPI(sessions, nil), metrics, "portal-test"))
	t.Cleanup(server.Close)
	return &harness{
		upstream: upstream,
		portal:   server,
		store:    store,
		sessions: sessions,
		client:   newBrowserClient(t),
	}
}

func newBrowserClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (h *harness) do(t *testing.T, method, path, contentType, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, h.portal.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	form := url.Values{"name": {"Jane"}, "email": {"jane@example.com"}, "returnUrl": {"/search"}}
	resp := h.do(t, http.MethodPost, "/auth/login", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/search", resp.Header.Get("Location"))
}

func decodeView(t *testing.T, resp *http.Response) searchView {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view searchView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	return view
}

func decodeProblem(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	require.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	var problem map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &problem))
	return problem
}

func TestPortal_UnauthenticatedSearchRedirectsToLogin(t *testing.T) {
	h := newHarness(t, fetchapitest.NewServer(t, fetchapitest.SampleDogs(3)...), portalmemory.NewSessionStore())

	resp := h.do(t, http.MethodGet, "/search", "", "")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/auth?returnUrl=%2Fsearch", resp.Header.Get("Location"))
	problem := decodeProblem(t, resp)
	require.Equal(t, "/problems/login-required", problem["type"])

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)
}

func TestPortal_LoginThenSearch(t *testing.T) {
	h := newHarness(t, fetchapitest.NewServer(t, fetchapitest.SampleDogs(30)...), portalmemory.NewSessionStore())
	h.login(t)

	view := decodeView(t, h.do(t, http.MethodGet, "/search", "", ""))
	require.Equal(t, 30, view.Page.Total)
	require.Len(t, view.Dogs, 25)
	require.True(t, view.Page.HasNext)
	require.False(t, view.Page.HasPrev)
	require.Contains(t, view.Options.Breeds, "Beagle")

	view = decodeView(t, h.do(t, http.MethodPost, "/search/next", "", ""))
	require.Len(t, view.Dogs, 5)
	require.True(t, view.Page.HasPrev)

	view = decodeView(t, h.do(t, http.MethodPost, "/search/prev", "", ""))
	require.Len(t, view.Dogs, 25)
}

func TestPortal_FiltersAndValidation(t *testing.T) {
	h := newHarness(t, fetchapitest.NewServer(t, fetchapitest.SampleDogs(12)...), portalmemory.NewSessionStore())
	h.login(t)

	view := decodeView(t, h.do(t, http.MethodPost, "/search/breeds/Golden%20Retriever/toggle", "", ""))
	require.Equal(t, []string{"Golden Retriever"}, view.Criteria.Breeds)
	for _, dog := range view.Dogs {
		require.Equal(t, "Golden Retriever", dog.Breed)
	}

	resp := h.do(t, http.MethodPost, "/search/zip-codes", "application/json", `{"zipCode":"123"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	problem := decodeProblem(t, resp)
	require.Equal(t, "Please enter a valid 5-digit zip code.", problem["detail"])

	view = decodeView(t, h.do(t, http.MethodPut, "/search/age", "application/json", `{"ageMin":2,"ageMax":5}`))
	require.Equal(t, 2, *view.Criteria.AgeMin)

	view = decodeView(t, h.do(t, http.MethodPut, "/search/age", "application/json", `{"ageMin":6,"ageMax":5}`))
	require.Equal(t, 6, *view.Criteria.AgeMin)
	require.Equal(t, 5, *view.Criteria.AgeMax)
	searches := h.upstream.Searches()
	last := searches[len(searches)-1]
	require.Equal(t, "6", last.Get("ageMin"))
	require.Equal(t, "5", last.Get("ageMax"))

	resp = h.do(t, http.MethodPut, "/search/age", "application/json", `{"ageMin":-1}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	view = decodeView(t, h.do(t, http.MethodDelete, "/search/filters", "", ""))
	require.Empty(t, view.Criteria.Breeds)
	require.Nil(t, view.Criteria.AgeMin)
	require.Equal(t, 12, view.Page.Total)
}

func TestPortal_SelectionAndMatch(t *testing.T) {
	upstream := fetchapitest.NewServer(t, fetchapitest.SampleDogs(4)...)
	upstream.SetMatch("d3")
	h := newHarness(t, upstream, portalmemory.NewSessionStore())
	h.login(t)

	resp := h.do(t, http.MethodPost, "/match", "", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Zero(t, upstream.Hits("POST /dogs/match"))

	decodeView(t, h.do(t, http.MethodPost, "/selection/d3/toggle", "", ""))
	view := decodeView(t, h.do(t, http.MethodPost, "/selection/d1/toggle", "", ""))
	require.Equal(t, []string{"d3", "d1"}, view.Selected)

	resp = h.do(t, http.MethodPost, "/match", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var match matchView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&match))
	require.Equal(t, "d3", match.MatchedID)
	require.Equal(t, "You've been matched with Dog 3! Contact the shelter to proceed with adoption.", match.Message)

	upstream.FailMatch(http.StatusInternalServerError)
	resp = h.do(t, http.MethodPost, "/match", "", "")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.Equal(t, "Failed to find match. Please try again.", decodeProblem(t, resp)["detail"])
}

func TestPortal_ExpiredUpstreamSessionRedirects(t *testing.T) {
	upstream := fetchapitest.NewServer(t, fetchapitest.SampleDogs(4)...)
	h := newHarness(t, upstream, portalmemory.NewSessionStore())
	h.login(t)
	decodeView(t, h.do(t, http.MethodGet, "/search", "", ""))

	upstream.ExpireSessions()
	resp := h.do(t, http.MethodPut, "/search/sort", "application/json", `{"sort":"name:desc"}`)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/auth?returnUrl=%2Fsearch", resp.Header.Get("Location"))

	resp = h.do(t, http.MethodGet, "/search", "", "")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestPortal_LoginErrors(t *testing.T) {
	upstream := fetchapitest.NewServer(t)
	h := newHarness(t, upstream, portalmemory.NewSessionStore())

	resp := h.do(t, http.MethodPost, "/auth/login", "application/json", `{"name":"","email":"jane@example.com"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Please enter your full name.", decodeProblem(t, resp)["detail"])
	require.Zero(t, upstream.Hits("POST /auth/login"))

	upstream.FailLogin(http.StatusTooManyRequests, "")
	resp = h.do(t, http.MethodPost, "/auth/login", "application/json", `{"name":"Jane","email":"jane@example.com"}`)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "Too many attempts. Please try again later.", decodeProblem(t, resp)["detail"])
}

func TestPortal_LoginIgnoresForeignReturnURL(t *testing.T) {
	h := newHarness(t, fetchapitest.NewServer(t), portalmemory.NewSessionStore())
	form := url.Values{"name": {"Jane"}, "email": {"jane@example.com"}, "returnUrl": {"https://evil.example"}}
	resp := h.do(t, http.MethodPost, "/auth/login", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/search", resp.Header.Get("Location"))
}

func TestPortal_SessionSurvivesRestart(t *testing.T) {
	upstream := fetchapitest.NewServer(t, fetchapitest.SampleDogs(8)...)
	store := portalmemory.NewSessionStore()
	first := newHarness(t, upstream, store)
	first.login(t)
	decodeView(t, first.do(t, http.MethodPost, "/search/breeds/Poodle/toggle", "", ""))
	decodeView(t, first.do(t, http.MethodPost, "/selection/d2/toggle", "", ""))

	second := newHarness(t, upstream, store)
	second.client = first.client
	portalURL, err := url.Parse(second.portal.URL)
	require.NoError(t, err)
	firstURL, err := url.Parse(first.portal.URL)
	require.NoError(t, err)
	second.client.Jar.SetCookies(portalURL, second.client.Jar.Cookies(firstURL))

	view := decodeView(t, second.do(t, http.MethodGet, "/search", "", ""))
	require.Equal(t, []string{"Poodle"}, view.Criteria.Breeds)
	require.Equal(t, []string{"d2"}, view.Selected)
	require.NotEmpty(t, view.Dogs)
	require.Equal(t, 1, second.sessions.Live())
}

func TestPortal_SweepEvictsIdleVisitors(t *testing.T) {
	h := newHarness(t, fetchapitest.NewServer(t), portalmemory.NewSessionStore())
	h.do(t, http.MethodGet, "/auth", "", "")
	require.Equal(t, 1, h.sessions.Live())

	require.Zero(t, h.sessions.Sweep(time.Now()))
	require.Equal(t, 1, h.sessions.Sweep(time.Now().Add(2*time.Hour)))
	require.Zero(t, h.sessions.Live())

	purged, err := h.store.PurgeExpired(context.Background())
	require.NoError(t, err)
	require.Zero(t, purged)
}

func TestPortal_HealthAndMetrics(t *testing.T) {
	h := newHarness(t, fetchapitest.NewServer(t), portalmemory.NewSessionStore())
	resp := h.do(t, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(raw), `portal_test_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestPortal_UnknownRouteIsProblemNotFound(t *testing.T) {
	h := newHarness(t, fetchapitest.NewServer(t), portalmemory.NewSessionStore())

	resp := h.do(t, http.MethodGet, "/dogs/adopt", "", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	problem := decodeProblem(t, resp)
	require.Equal(t, "/problems/not-found", problem["type"])
	require.Equal(t, "/dogs/adopt", problem["instance"])
	require.Equal(t, "GET /dogs/adopt is not a portal endpoint", problem["detail"])
	require.Empty(t, resp.Cookies())
}
