// Package tui is the terminal front end: a login form followed by the dog
// search page, both driven by one workspace.
package tui

import (
	"context"
	"errors"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Apurer/pawmatch/internal/app/workspace"
	authapp "github.com/Apurer/pawmatch/internal/domains/auth/application"
	authdomain "github.com/Apurer/pawmatch/internal/domains/auth/domain"
	dogsdomain "github.com/Apurer/pawmatch/internal/domains/dogs/domain"
)

const expiredNotice = "Your session has expired. Please log in again."

type page int

const (
	pageChecking page = iota
	pageLogin
	pageBrowse
)

type gateMsg struct{ decision authapp.Decision }

type loginResultMsg struct{ err error }

type browseResultMsg struct{ err error }

type matchResultMsg struct {
	outcome *dogsdomain.MatchOutcome
	err     error
}

// RedirectMsg switches the program to the login page. Send it from a
// workspace redirect callback.
type RedirectMsg struct {
	Redirect authdomain.Redirect
}

// Model is the root bubbletea model.
type Model struct {
	ctx context.Context
	ws  *workspace.Workspace

	page   page
	login  LoginPageModel
	browse BrowsePageModel
	styles Styles

	width  int
	height int
}

func New(ctx context.Context, ws *workspace.Workspace) Model {
	styles := DefaultStyles()
	return Model{
		ctx:    ctx,
		ws:     ws,
		page:   pageChecking,
		login:  NewLoginPageModel(styles),
		browse: NewBrowsePageModel(styles),
		styles: styles,
	}
}

// Init resolves the session before anything protected is shown.
func (m Model) Init() tea.Cmd {
	ctx, gate := m.ctx, m.ws.Gate
	return func() tea.Msg {
		return gateMsg{decision: gate.Enter(ctx, authdomain.DefaultLandingPath)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.login.SetSize(msg.Width, msg.Height)
		m.browse.SetSize(msg.Width, msg.Height)
		return m, nil

	case gateMsg:
		if msg.decision.State == authdomain.GateAuthenticated {
			return m.showBrowse(), nil
		}
		m.page = pageLogin
		return m, nil

	case RedirectMsg:
		return m.showLogin(expiredNotice), nil

	case submitLoginMsg:
		m.login.setPending()
		ctx, auth := m.ctx, m.ws.Auth
		return m, func() tea.Msg {
			return loginResultMsg{err: auth.Login(ctx, msg.name, msg.email)}
		}

	case loginResultMsg:
		if msg.err != nil {
			m.login.SetError(authapp.UserMessage(msg.err))
			return m, nil
		}
		m.login.SetNotice("")
		return m.showBrowse(), nil

	case browseResultMsg:
		m.browse.SetState(m.ws.Browser.State())
		if msg.err != nil {
			return m.fail(msg.err), nil
		}
		return m, nil

	case matchResultMsg:
		m.browse.SetState(m.ws.Browser.State())
		if msg.err != nil {
			return m.fail(msg.err), nil
		}
		m.browse.SetStatus(msg.outcome.Message())
		return m, nil

	case zipSubmittedMsg:
		return m.query(func(ctx context.Context) error {
			return m.ws.Browser.Query.AddZipCode(ctx, msg.zip)
		})

	case ageSubmittedMsg:
		ageMin, ageMax, err := parseAgeRange(msg.raw)
		if err != nil {
			m.browse.SetError(dogsdomain.UserMessage(err))
			return m, nil
		}
		return m.query(func(ctx context.Context) error {
			return m.ws.Browser.Query.SetAgeRange(ctx, ageMin, ageMax)
		})

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.page {
		case pageLogin:
			var cmd tea.Cmd
			m.login, cmd = m.login.Update(msg)
			return m, cmd
		case pageBrowse:
			if !m.browse.Editing() {
				if next, cmd, handled := m.handleBrowseKey(msg); handled {
					return next, cmd
				}
			}
			var cmd tea.Cmd
			m.browse, cmd = m.browse.Update(msg)
			return m, cmd
		default:
			if msg.String() == "q" {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m Model) handleBrowseKey(key tea.KeyMsg) (Model, tea.Cmd, bool) {
	q := m.ws.Browser.Query
	criteria := q.Criteria()

	switch s := key.String(); s {
	case "q":
		return m, tea.Quit, true
	case " ", "enter":
		if id, ok := m.browse.CurrentDogID(); ok {
			m.ws.Browser.Results.ToggleSelection(id)
			m.browse.SetState(m.ws.Browser.State())
		}
		return m, nil, true
	case "1", "2", "3", "4", "5", "6", "7", "8", "9", "0":
		idx := int(s[0]-'0') - 1
		if idx < 0 {
			idx = 9
		}
		if idx >= len(dogsdomain.BreedOptions) {
			return m, nil, true
		}
		breed := dogsdomain.BreedOptions[idx]
		next, cmd := m.query(func(ctx context.Context) error { return q.ToggleBreed(ctx, breed) })
		return next, cmd, true
	case "Z":
		if len(criteria.ZipCodes) == 0 {
			return m, nil, true
		}
		zip := criteria.ZipCodes[len(criteria.ZipCodes)-1]
		next, cmd := m.query(func(ctx context.Context) error { return q.RemoveZipCode(ctx, zip) })
		return next, cmd, true
	case "s":
		sort := cycle(dogsdomain.SortOptions, criteria.Sort)
		next, cmd := m.query(func(ctx context.Context) error { return q.SetSort(ctx, sort) })
		return next, cmd, true
	case "p":
		size := cycle(dogsdomain.PageSizeOptions, criteria.Size)
		next, cmd := m.query(func(ctx context.Context) error { return q.SetPageSize(ctx, size) })
		return next, cmd, true
	case "c":
		next, cmd := m.query(q.Clear)
		return next, cmd, true
	case "n", "right":
		next, cmd := m.query(q.NextPage)
		return next, cmd, true
	case "b", "left":
		next, cmd := m.query(q.PrevPage)
		return next, cmd, true
	case "r":
		next, cmd := m.query(q.Load)
		return next, cmd, true
	case "x":
		m.ws.Browser.Results.ClearSelection()
		m.browse.SetState(m.ws.Browser.State())
		return m, nil, true
	case "m":
		m.browse.setBusy()
		ctx, matcher := m.ctx, m.ws.Browser.Matcher
		return m, func() tea.Msg {
			outcome, err := matcher.Match(ctx)
			return matchResultMsg{outcome: outcome, err: err}
		}, true
	}
	return m, nil, false
}

func (m Model) query(fn func(ctx context.Context) error) (Model, tea.Cmd) {
	m.browse.setBusy()
	ctx := m.ctx
	return m, func() tea.Msg {
		return browseResultMsg{err: fn(ctx)}
	}
}

func (m Model) showBrowse() Model {
	m.page = pageBrowse
	m.browse.SetState(m.ws.Browser.State())
	return m
}

func (m Model) showLogin(notice string) Model {
	m.page = pageLogin
	m.login.SetNotice(notice)
	m.login.SetError("")
	m.login = m.login.move(-m.login.focus)
	return m
}

func (m Model) fail(err error) Model {
	if errors.Is(err, authdomain.ErrSessionExpired) || errors.Is(err, dogsdomain.ErrNotAuthenticated) {
		return m.showLogin(expiredNotice)
	}
	m.browse.SetError(dogsdomain.UserMessage(err))
	return m
}

func (m Model) View() string {
	switch m.page {
	case pageLogin:
		return m.login.View()
	case pageBrowse:
		return m.browse.View()
	default:
		return m.styles.Muted.Render("Checking session...")
	}
}

func cycle[T comparable](options []T, current T) T {
	i := slices.Index(options, current)
	return options[(i+1)%len(options)]
}

var _ tea.Model = Model{}
