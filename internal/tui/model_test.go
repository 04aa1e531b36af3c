package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pawmatch/internal/app/workspace"
	"github.com/Apurer/pawmatch/internal/clients/http/fetchapi/fetchapitest"
	authdomain "github.com/Apurer/pawmatch/internal/domains/auth/domain"
)

func newTestModel(t *testing.T, dogs int) (Model, *fetchapitest.Server, *workspace.Workspace) {
	t.Helper()
	server := fetchapitest.NewServer(t, fetchapitest.SampleDogs(dogs)...)
	ws, err := workspace.New(server.URL)
	require.NoError(t, err)
	t.Cleanup(ws.Close)

	m := New(context.Background(), ws)
	m = settle(m, m.Init())
	return m, server, ws
}

// settle runs cmd and feeds every resulting message back into the model
// until nothing is left to do.
func settle(m Model, cmd tea.Cmd) Model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, nextCmd := m.Update(msg)
			m = next.(Model)
			queue = append(queue, nextCmd)
		}
	}
	return m
}

func send(m Model, msg tea.Msg) Model {
	next, cmd := m.Update(msg)
	return settle(next.(Model), cmd)
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	return send(m, msg)
}

func logIn(t *testing.T, m Model, name, email string) Model {
	t.Helper()
	m.login.inputs[0].SetValue(name)
	m.login.inputs[1].SetValue(email)
	m = press(m, "enter")
	return press(m, "enter")
}

func TestModel_StartsOnLoginWhenSessionIsMissing(t *testing.T) {
	m, server, _ := newTestModel(t, 3)

	require.Equal(t, pageLogin, m.page)
	require.Contains(t, m.View(), "Log in to find your new best friend")
	require.Equal(t, 1, server.Hits("GET /dogs/search"))
}

func TestModel_LoginShowsFirstPage(t *testing.T) {
	m, _, ws := newTestModel(t, 3)

	m = logIn(t, m, "Jane", "jane@example.com")

	require.Equal(t, pageBrowse, m.page)
	require.True(t, ws.Gate.Authenticated())
	view := m.View()
	require.Contains(t, view, "Dog 1")
	require.Contains(t, view, "3 dogs")
	require.Contains(t, view, "0 selected")
}

func TestModel_LoginValidationStaysOnForm(t *testing.T) {
	m, server, _ := newTestModel(t, 3)

	m = logIn(t, m, "Jane", "not-an-email")

	require.Equal(t, pageLogin, m.page)
	require.Contains(t, m.View(), "Please enter a valid email address.")
	require.Zero(t, server.Hits("POST /auth/login"))
}

func TestModel_LoginFailureShowsMessage(t *testing.T) {
	m, server, _ := newTestModel(t, 3)
	server.FailLogin(500, "")

	m = logIn(t, m, "Jane", "jane@example.com")

	require.Equal(t, pageLogin, m.page)
	require.Contains(t, m.View(), "Server error. Please try again later.")
	require.NotContains(t, m.View(), "Logging in...")
}

func TestModel_SelectAndMatch(t *testing.T) {
	m, server, ws := newTestModel(t, 3)
	m = logIn(t, m, "Jane", "jane@example.com")

	m = press(m, " ")
	require.Equal(t, []string{"d1"}, ws.Browser.Results.SelectedIDs())
	require.Contains(t, m.View(), "1 selected")

	server.SetMatch("d1")
	m = press(m, "m")
	require.Contains(t, m.View(), "You've been matched with Dog 1!")

	m = press(m, "x")
	require.Empty(t, ws.Browser.Results.SelectedIDs())
	m = press(m, "m")
	require.Contains(t, m.View(), "Select at least one dog to find a match.")
}

func TestModel_BreedKeyFilters(t *testing.T) {
	m, server, ws := newTestModel(t, 8)
	m = logIn(t, m, "Jane", "jane@example.com")

	// Poodle is the fifth breed option.
	m = press(m, "5")

	require.Equal(t, []string{"Poodle"}, ws.Browser.Query.Criteria().Breeds)
	require.Contains(t, m.View(), "2 dogs")
	last := server.Searches()[len(server.Searches())-1]
	require.Equal(t, []string{"Poodle"}, last["breeds"])
}

func TestModel_ZipEntryValidates(t *testing.T) {
	m, server, ws := newTestModel(t, 6)
	m = logIn(t, m, "Jane", "jane@example.com")
	before := server.Hits("GET /dogs/search")

	m = press(m, "z")
	require.True(t, m.browse.Editing())
	m.browse.zip.SetValue("123")
	m = press(m, "enter")

	require.False(t, m.browse.Editing())
	require.Contains(t, m.View(), "Please enter a valid 5-digit zip code.")
	require.Equal(t, before, server.Hits("GET /dogs/search"))

	m = press(m, "z")
	m.browse.zip.SetValue("10001")
	m = press(m, "enter")
	require.Equal(t, []string{"10001"}, ws.Browser.Query.Criteria().ZipCodes)
	require.Contains(t, m.View(), "10001")

	m = press(m, "Z")
	require.Empty(t, ws.Browser.Query.Criteria().ZipCodes)
}

func TestModel_AgeRangeAndPaging(t *testing.T) {
	m, _, ws := newTestModel(t, 30)
	m = logIn(t, m, "Jane", "jane@example.com")
	require.Contains(t, m.View(), "30 dogs >")

	m = press(m, "n")
	require.True(t, ws.Browser.State().Page.HasPrev())
	m = press(m, "b")
	require.False(t, ws.Browser.State().Page.HasPrev())

	m = press(m, "a")
	m.browse.age.SetValue("2-4")
	m = press(m, "enter")
	c := ws.Browser.Query.Criteria()
	require.NotNil(t, c.AgeMin)
	require.Equal(t, 2, *c.AgeMin)
	require.Equal(t, 4, *c.AgeMax)
	require.Contains(t, m.View(), "2-4")

	m = press(m, "c")
	require.Nil(t, ws.Browser.Query.Criteria().AgeMin)
}

func TestModel_SortAndSizeCycle(t *testing.T) {
	m, _, ws := newTestModel(t, 3)
	m = logIn(t, m, "Jane", "jane@example.com")

	m = press(m, "s")
	require.Equal(t, "breed:desc", ws.Browser.Query.Criteria().Sort)
	m = press(m, "p")
	require.Equal(t, 50, ws.Browser.Query.Criteria().Size)
	require.Contains(t, m.View(), "size 50")
}

func TestModel_ExpiredSessionReturnsToLogin(t *testing.T) {
	m, server, ws := newTestModel(t, 3)
	m = logIn(t, m, "Jane", "jane@example.com")
	server.ExpireSessions()

	m = press(m, "s")

	require.Equal(t, pageLogin, m.page)
	require.Contains(t, m.View(), expiredNotice)
	require.Equal(t, authdomain.GateUnauthenticated, ws.Gate.State())

	m = logIn(t, m, "Jane", "jane@example.com")
	require.Equal(t, pageBrowse, m.page)
	require.NotContains(t, m.View(), expiredNotice)
}

func TestModel_RedirectMsgShowsLogin(t *testing.T) {
	m, _, _ := newTestModel(t, 3)
	m = logIn(t, m, "Jane", "jane@example.com")

	m = send(m, RedirectMsg{Redirect: authdomain.NewRedirect("/search")})

	require.Equal(t, pageLogin, m.page)
	require.True(t, strings.Contains(m.View(), expiredNotice))
}

func TestParseAgeRange(t *testing.T) {
	cases := []struct {
		raw      string
		min, max *int
		wantErr  bool
	}{
		{raw: ""},
		{raw: "3", min: intPtr(3), max: intPtr(3)},
		{raw: "2-8", min: intPtr(2), max: intPtr(8)},
		{raw: "2-", min: intPtr(2)},
		{raw: "-8", max: intPtr(8)},
		{raw: "two", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			ageMin, ageMax, err := parseAgeRange(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.min, ageMin)
			require.Equal(t, tc.max, ageMax)
		})
	}
}

func intPtr(v int) *int { return &v }
