package workspace

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/pawmatch/internal/clients/http/fetchapi/fetchapitest"
	authapp "github.com/Apurer/pawmatch/internal/domains/auth/application"
	authdomain "github.com/Apurer/pawmatch/internal/domains/auth/domain"
	dogsdomain "github.com/Apurer/pawmatch/internal/domains/dogs/domain"
)

type redirectLog struct {
	mu        sync.Mutex
	locations []string
}

func (r *redirectLog) record(_ context.Context, redirect authdomain.Redirect) {
	r.mu.Lock()
	r.locations = append(r.locations, redirect.Location())
	r.mu.Unlock()
}

func (r *redirectLog) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.locations...)
}

func TestWorkspace_LoginOpensGateAndLoadsResults(t *testing.T) {
	server := fetchapitest.NewServer(t, fetchapitest.SampleDogs(30)...)
	redirects := &redirectLog{}
	ws, err := New(server.URL, OnRedirect(redirects.record))
	require.NoError(t, err)
	defer ws.Close()

	decision := ws.Gate.Enter(context.Background(), "/search")
	require.Equal(t, authdomain.GateUnauthenticated, decision.State)
	require.Equal(t, []string{"/auth?returnUrl=%2Fsearch"}, redirects.all())
	require.Equal(t, 1, server.Hits("GET /dogs/search"), "only the probe may reach search")

	require.NoError(t, ws.Auth.Login(context.Background(), "Jane", "jane@example.com"))
	require.True(t, ws.Gate.Authenticated())

	state := ws.Browser.State()
	require.Equal(t, 30, state.Page.Total)
	require.Len(t, state.Dogs, dogsdomain.DefaultPageSize)
	require.Equal(t, state.Page.ResultIDs[0], state.Dogs[0].ID)
	require.Len(t, ws.Cookies(), 1)
}

func TestWorkspace_LoginValidationMakesNoCall(t *testing.T) {
	server := fetchapitest.NewServer(t)
	ws, err := New(server.URL)
	require.NoError(t, err)
	defer ws.Close()

	err = ws.Auth.Login(context.Background(), "Jane", "not-an-email")
	require.ErrorIs(t, err, authapp.ErrInvalidInput)
	require.Equal(t, "Please enter a valid email address.", authapp.UserMessage(err))
	require.Zero(t, server.Hits("POST /auth/login"))
}

func TestWorkspace_ExpiredSessionRedirectsOnce(t *testing.T) {
	server := fetchapitest.NewServer(t, fetchapitest.SampleDogs(5)...)
	redirects := &redirectLog{}
	ws, err := New(server.URL, OnRedirect(redirects.record))
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.Auth.Login(context.Background(), "Jane", "jane@example.com"))
	ws.Gate.Enter(context.Background(), "/search")
	ws.Browser.Results.ToggleSelection("d1")
	server.ExpireSessions()

	err = ws.Browser.Query.ToggleBreed(context.Background(), "Beagle")
	require.ErrorIs(t, err, authdomain.ErrSessionExpired)
	_, err = ws.Browser.Matcher.Match(context.Background())
	require.ErrorIs(t, err, authdomain.ErrSessionExpired)

	require.Equal(t, authdomain.GateUnauthenticated, ws.Gate.State())
	require.Equal(t, []string{"/auth?returnUrl=%2Fsearch"}, redirects.all())
	require.Len(t, ws.Browser.State().Dogs, 5, "results stay as they were")
}

func TestWorkspace_RestoresSnapshotState(t *testing.T) {
	server := fetchapitest.NewServer(t, fetchapitest.SampleDogs(8)...)
	first, err := New(server.URL)
	require.NoError(t, err)
	require.NoError(t, first.Auth.Login(context.Background(), "Jane", "jane@example.com"))
	first.Close()

	criteria := dogsdomain.DefaultCriteria().ToggleBreed("Poodle")
	second, err := New(server.URL,
		WithCookies(first.Cookies()),
		WithCriteria(criteria),
		WithSelection([]string{"d2"}),
	)
	require.NoError(t, err)
	defer second.Close()

	decision := second.Gate.Enter(context.Background(), "/search")
	require.Equal(t, authdomain.GateAuthenticated, decision.State)

	state := second.Browser.State()
	require.Equal(t, []string{"Poodle"}, state.Criteria.Breeds)
	require.Equal(t, []string{"d2"}, state.Selected)
	for _, dog := range state.Dogs {
		require.Equal(t, "Poodle", dog.Breed)
	}
	require.NotEmpty(t, state.Dogs)
}
