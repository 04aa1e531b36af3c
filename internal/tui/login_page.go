package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// submitLoginMsg is emitted when the visitor confirms the form.
type submitLoginMsg struct {
	name  string
	email string
}

// LoginPageModel is the name and email form.
type LoginPageModel struct {
	inputs  []textinput.Model
	focus   int
	err     string
	notice  string
	pending bool
	styles  Styles
	width   int
}

func NewLoginPageModel(styles Styles) LoginPageModel {
	name := textinput.New()
	name.Placeholder = "Full name"
	name.CharLimit = 80
	name.Width = 40
	name.Focus()

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 120
	email.Width = 40

	return LoginPageModel{inputs: []textinput.Model{name, email}, styles: styles}
}

func (m *LoginPageModel) SetSize(w, _ int) {
	m.width = w
}

func (m *LoginPageModel) SetError(msg string) {
	m.err = msg
	m.pending = false
}

// SetNotice shows an informational line, e.g. after the session expired.
func (m *LoginPageModel) SetNotice(msg string) {
	m.notice = msg
}

func (m *LoginPageModel) setPending() {
	m.pending = true
	m.err = ""
}

func (m LoginPageModel) Update(msg tea.Msg) (LoginPageModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			return m.move(1), nil
		case "shift+tab", "up":
			return m.move(-1), nil
		case "enter":
			if m.focus < len(m.inputs)-1 {
				return m.move(1), nil
			}
			if m.pending {
				return m, nil
			}
			name, email := m.inputs[0].Value(), m.inputs[1].Value()
			return m, func() tea.Msg { return submitLoginMsg{name: name, email: email} }
		}
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m LoginPageModel) move(delta int) LoginPageModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m
}

func (m LoginPageModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("PawMatch"))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Title.Render("Log in to find your new best friend"))
	sb.WriteString("\n\n")
	if m.notice != "" {
		sb.WriteString(m.styles.Notice.Render(m.notice) + "\n\n")
	}
	labels := []string{"Name", "Email"}
	for i, input := range m.inputs {
		sb.WriteString(m.styles.Label.Render(labels[i]) + input.View() + "\n")
	}
	sb.WriteString("\n")
	switch {
	case m.pending:
		sb.WriteString(m.styles.Muted.Render("Logging in...") + "\n")
	case m.err != "":
		sb.WriteString(m.styles.Error.Render(m.err) + "\n")
	}
	sb.WriteString(m.styles.Help.Render("tab: next field  enter: log in  ctrl+c: quit"))
	return sb.String()
}
