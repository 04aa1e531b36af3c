package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	dogsapp "github.com/Apurer/pawmatch/internal/domains/dogs/application"
	dogsdomain "github.com/Apurer/pawmatch/internal/domains/dogs/domain"
)

type editField int

const (
	editNone editField = iota
	editZip
	editAge
)

type zipSubmittedMsg struct{ zip string }

type ageSubmittedMsg struct{ raw string }

// BrowsePageModel renders filters, the current page of dogs and the
// selection.
type BrowsePageModel struct {
	table   table.Model
	zip     textinput.Model
	age     textinput.Model
	editing editField

	state  dogsapp.BrowserState
	status string
	failed bool
	busy   bool

	styles Styles
	width  int
	height int
}

func NewBrowsePageModel(styles Styles) BrowsePageModel {
	columns := []table.Column{
		{Title: " ", Width: 3},
		{Title: "Name", Width: 18},
		{Title: "Breed", Width: 20},
		{Title: "Age", Width: 4},
		{Title: "Zip", Width: 6},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	zip := textinput.New()
	zip.Placeholder = "12345"
	zip.CharLimit = 5
	zip.Width = 8

	age := textinput.New()
	age.Placeholder = "min-max"
	age.CharLimit = 7
	age.Width = 8

	return BrowsePageModel{table: t, zip: zip, age: age, styles: styles}
}

func (m *BrowsePageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if h > 20 {
		m.table.SetHeight(h - 16)
	}
}

// SetState replaces the rendered state and keeps the cursor in range.
func (m *BrowsePageModel) SetState(state dogsapp.BrowserState) {
	m.state = state
	m.busy = false
	selected := make(map[string]bool, len(state.Selected))
	for _, id := range state.Selected {
		selected[id] = true
	}
	rows := make([]table.Row, 0, len(state.Dogs))
	for _, dog := range state.Dogs {
		mark := "[ ]"
		if selected[dog.ID] {
			mark = "[x]"
		}
		rows = append(rows, table.Row{mark, dog.Name, dog.Breed, strconv.Itoa(dog.AgeYears), dog.ZipCode})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m *BrowsePageModel) SetStatus(msg string) {
	m.status = msg
	m.failed = false
}

func (m *BrowsePageModel) SetError(msg string) {
	m.status = msg
	m.failed = true
	m.busy = false
}

func (m *BrowsePageModel) setBusy() {
	m.busy = true
	m.status = ""
	m.failed = false
}

// Editing reports whether a text input owns the keyboard.
func (m BrowsePageModel) Editing() bool {
	return m.editing != editNone
}

// CurrentDogID returns the id under the cursor.
func (m BrowsePageModel) CurrentDogID() (string, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.state.Dogs) {
		return "", false
	}
	return m.state.Dogs[c].ID, true
}

func (m BrowsePageModel) Update(msg tea.Msg) (BrowsePageModel, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if m.editing != editNone {
		if isKey {
			switch key.String() {
			case "esc":
				m.stopEditing()
				return m, nil
			case "enter":
				field := m.editing
				m.stopEditing()
				if field == editZip {
					value := strings.TrimSpace(m.zip.Value())
					m.zip.SetValue("")
					return m, func() tea.Msg { return zipSubmittedMsg{zip: value} }
				}
				value := strings.TrimSpace(m.age.Value())
				return m, func() tea.Msg { return ageSubmittedMsg{raw: value} }
			}
		}
		var cmd tea.Cmd
		if m.editing == editZip {
			m.zip, cmd = m.zip.Update(msg)
		} else {
			m.age, cmd = m.age.Update(msg)
		}
		return m, cmd
	}

	if isKey {
		switch key.String() {
		case "z":
			m.startEditing(editZip)
			return m, nil
		case "a":
			m.startEditing(editAge)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *BrowsePageModel) startEditing(field editField) {
	m.editing = field
	m.table.Blur()
	if field == editZip {
		m.zip.Focus()
	} else {
		m.age.Focus()
	}
}

func (m *BrowsePageModel) stopEditing() {
	m.editing = editNone
	m.zip.Blur()
	m.age.Blur()
	m.table.Focus()
}

func (m BrowsePageModel) View() string {
	var sb strings.Builder
	c := m.state.Criteria

	sb.WriteString(m.styles.Header.Render("PawMatch - Search"))
	sb.WriteString("\n\n")

	breeds := make([]string, 0, len(dogsdomain.BreedOptions))
	for i, breed := range dogsdomain.BreedOptions {
		label := fmt.Sprintf("%d %s", (i+1)%10, breed)
		if c.HasBreed(breed) {
			breeds = append(breeds, m.styles.Selected.Render("["+label+"]"))
		} else {
			breeds = append(breeds, m.styles.Muted.Render(label))
		}
	}
	sb.WriteString(m.styles.Label.Render("Breeds") + strings.Join(breeds, "  ") + "\n")

	zips := "any"
	if len(c.ZipCodes) > 0 {
		zips = strings.Join(c.ZipCodes, ", ")
	}
	if m.editing == editZip {
		zips += "  add: " + m.zip.View()
	}
	sb.WriteString(m.styles.Label.Render("Zip") + zips + "\n")

	age := formatAgeRange(c.AgeMin, c.AgeMax)
	if m.editing == editAge {
		age += "  set: " + m.age.View()
	}
	sb.WriteString(m.styles.Label.Render("Age") + age + "\n")
	sb.WriteString(m.styles.Label.Render("Sort") + c.Sort + "   " + m.styles.Muted.Render("size") + " " + strconv.Itoa(c.Size) + "\n\n")

	if len(m.state.Dogs) == 0 && !m.busy {
		sb.WriteString(m.styles.Muted.Render("No dogs found. Try adjusting your filters.") + "\n")
	} else {
		sb.WriteString(m.table.View() + "\n")
	}

	pager := fmt.Sprintf("%d dogs", m.state.Page.Total)
	if m.state.Page.HasPrev() {
		pager = "< " + pager
	}
	if m.state.Page.HasNext() {
		pager += " >"
	}
	sb.WriteString(m.styles.Muted.Render(pager))
	sb.WriteString("   " + m.styles.Selected.Render(fmt.Sprintf("%d selected", len(m.state.Selected))) + "\n\n")

	switch {
	case m.busy:
		sb.WriteString(m.styles.Muted.Render("Loading...") + "\n")
	case m.failed:
		sb.WriteString(m.styles.Error.Render(m.status) + "\n")
	case m.status != "":
		sb.WriteString(m.styles.Notice.Render(m.status) + "\n")
	}

	sb.WriteString(m.styles.Help.Render("space: select  1-0: breed  z/Z: add/remove zip  a: age  s: sort  p: size  c: clear filters"))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Help.Render("n/b: next/prev page  x: clear selection  m: match  r: reload  q: quit"))
	return sb.String()
}

func formatAgeRange(ageMin, ageMax *int) string {
	switch {
	case ageMin == nil && ageMax == nil:
		return "any"
	case ageMax == nil:
		return fmt.Sprintf("%d+", *ageMin)
	case ageMin == nil:
		return fmt.Sprintf("up to %d", *ageMax)
	default:
		return fmt.Sprintf("%d-%d", *ageMin, *ageMax)
	}
}

// parseAgeRange accepts "", "3", "2-8", "2-" and "-8".
func parseAgeRange(raw string) (ageMin, ageMax *int, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil, nil
	}
	lo, hi, ranged := strings.Cut(raw, "-")
	if !ranged {
		hi = lo
	}
	parse := func(s string) (*int, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, dogsdomain.ErrInvalidAge
		}
		return &v, nil
	}
	if ageMin, err = parse(lo); err != nil {
		return nil, nil, err
	}
	if ageMax, err = parse(hi); err != nil {
		return nil, nil, err
	}
	return ageMin, ageMax, nil
}
