package ui

import (
	"strings"
	"time"
	"unicode/utf8"

	"nimbus/internal/model"
	"nimbus/internal/util"
	"nimbus/internal/viewstate"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SearchDebounce is how long typing must pause before a lookup is issued.
const SearchDebounce = 300 * time.Millisecond

type debounceTick struct {
	seq int
}

// saveCandidateMsg asks the root model to bookmark a search result.
type saveCandidateMsg struct {
	candidate model.LocationCandidate
}

// locationSearcher drives the search view-state.
type locationSearcher interface {
	Search(query string)
	Clear()
}

// SearchDialogModel is the location search overlay.
type SearchDialogModel struct {
	searcher locationSearcher
	keys     SearchKeyMap
	input    textinput.Model
	spinner  spinner.Model

	seq    int
	cursor int
	state  viewstate.SearchState
}

// NewSearchDialogModel creates a focused search dialog.
func NewSearchDialogModel(searcher locationSearcher) *SearchDialogModel {
	input := textinput.New()
	input.Placeholder = "City name, e.g. London"
	input.CharLimit = 100
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &SearchDialogModel{
		searcher: searcher,
		keys:     DefaultSearchKeyMap(),
		input:    input,
		spinner:  sp,
	}
}

// Init starts the cursor blink and the spinner.
func (m *SearchDialogModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Query returns the text typed so far.
func (m *SearchDialogModel) Query() string {
	return m.input.Value()
}

// SetState replaces the rendered search state.
func (m *SearchDialogModel) SetState(s viewstate.SearchState) {
	m.state = s
	if m.cursor >= len(s.Locations) {
		m.cursor = max(0, len(s.Locations)-1)
	}
}

// Selected returns the highlighted candidate.
func (m *SearchDialogModel) Selected() (model.LocationCandidate, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Locations) {
		return model.LocationCandidate{}, false
	}
	return m.state.Locations[m.cursor], true
}

// Update handles all messages.
func (m SearchDialogModel) Update(msg tea.Msg) (SearchDialogModel, tea.Cmd) {
	switch msg := msg.(type) {
	case debounceTick:
		if msg.seq == m.seq {
			m.searcher.Search(m.input.Value())
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		m.searcher.Clear()
		return m, func() tea.Msg { return model.SearchCancelledMsg{} }
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.state.Locations)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.Select):
		loc, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return model.LocationSelectedMsg{Location: loc} }
	case key.Matches(keyMsg, m.keys.Save):
		loc, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return saveCandidateMsg{candidate: loc} }
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(keyMsg)
	query := m.input.Value()
	if query == before {
		return m, cmd
	}

	m.seq++
	m.cursor = 0
	if utf8.RuneCountInString(strings.TrimSpace(query)) < viewstate.MinQueryLength {
		// Short queries reset immediately and invalidate any pending tick.
		m.searcher.Search(query)
		return m, cmd
	}

	seq := m.seq
	return m, tea.Batch(
		cmd,
		m.spinner.Tick,
		tea.Tick(SearchDebounce, func(time.Time) tea.Msg {
			return debounceTick{seq: seq}
		}),
	)
}

// View renders the dialog.
func (m *SearchDialogModel) View(width, height int) string {
	var sections []string
	sections = append(sections, renderFormField("Search location", m.input, true))

	switch {
	case m.state.IsLoading:
		sections = append(sections, HelpDescStyle.Render(m.spinner.View()+" Searching..."))
	case m.state.Error != "":
		sections = append(sections, ErrorStyle.Render(m.state.Error))
	}

	if len(m.state.Locations) > 0 {
		sections = append(sections, m.renderResults(width-8))
	} else if !m.state.IsLoading && m.state.Error == "" &&
		utf8.RuneCountInString(strings.TrimSpace(m.input.Value())) >= viewstate.MinQueryLength &&
		m.state.SearchQuery == m.input.Value() {
		sections = append(sections, HelpDescStyle.Render("No results"))
	}

	return PanelStyle.
		Width(max(20, width-4)).
		Height(max(5, height-4)).
		Render(strings.Join(sections, "\n\n"))
}

func (m *SearchDialogModel) renderResults(width int) string {
	var items []string
	for i, loc := range m.state.Locations {
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}

		left := util.TruncateString(loc.DisplayName(), 48)
		right := HelpDescStyle.Render(util.FormatCoords(loc.Lat, loc.Lon))

		available := max(10, width-4)
		padding := max(0, available-lipgloss.Width(left)-lipgloss.Width(right))
		items = append(items, style.Width(available).Render(left+strings.Repeat(" ", padding)+right))
	}
	return BorderStyle.Width(width).Render(strings.Join(items, "\n"))
}

func renderFormField(label string, input textinput.Model, focused bool) string {
	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}
	return style.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render(label),
		input.View(),
	))
}
