package ui

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"nimbus/internal/db"
	"nimbus/internal/model"
	"nimbus/internal/util"
	"nimbus/internal/viewstate"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// locateTimeout bounds the current-location lookup.
const locateTimeout = 10 * time.Second

type weatherStateMsg struct {
	state viewstate.WeatherState
}

type searchStateMsg struct {
	state viewstate.SearchState
}

// Options wires the root model to its collaborators. DB, Locator and Icons
// are optional.
type Options struct {
	DB        *sql.DB
	Weather   *viewstate.WeatherHolder
	Search    *viewstate.SearchHolder
	Locator   viewstate.Locator
	Icons     IconFetcher
	TermCaps  TerminalCapabilities
	PrefsPath string
	Log       zerolog.Logger
	Now       func() time.Time
}

// Model is the root Bubble Tea model.
type Model struct {
	db       *sql.DB
	weather  *viewstate.WeatherHolder
	search   *viewstate.SearchHolder
	locator  viewstate.Locator
	icons    IconFetcher
	termCaps TerminalCapabilities
	log      zerolog.Logger
	now      func() time.Time

	weatherUpdates <-chan viewstate.WeatherState
	searchUpdates  <-chan viewstate.SearchState
	unsubscribe    []func()

	screen model.Screen
	mode   model.Mode
	gState GState

	width  int
	height int

	error       string
	info        string
	showingHelp bool

	weatherState  viewstate.WeatherState
	lastCandidate *model.LocationCandidate
	spinner       spinner.Model
	iconArt       map[string]string
	iconPending   map[string]bool

	// Screen models
	places *PlacesModel
	dialog *SearchDialogModel

	keys      KeyMap
	prefsPath string
	prefs     UIPreferences
	undoStack []undoAction
	redoStack []undoAction
}

// New creates a new root model subscribed to both holders.
func New(opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := Model{
		db:          opts.DB,
		weather:     opts.Weather,
		search:      opts.Search,
		locator:     opts.Locator,
		icons:       opts.Icons,
		termCaps:    opts.TermCaps,
		log:         opts.Log,
		now:         now,
		screen:      model.ScreenWeather,
		mode:        model.ModeNav,
		gState:      GStateIdle,
		spinner:     sp,
		iconArt:     make(map[string]string),
		iconPending: make(map[string]bool),
		keys:        DefaultKeyMap(),
		prefsPath:   opts.PrefsPath,
		prefs:       loadUIPreferences(opts.PrefsPath),
	}

	if m.weather != nil {
		ch, unsub := m.weather.Subscribe()
		m.weatherUpdates = ch
		m.unsubscribe = append(m.unsubscribe, unsub)
		m.weatherState = m.weather.State()
	}
	if m.search != nil {
		ch, unsub := m.search.Subscribe()
		m.searchUpdates = ch
		m.unsubscribe = append(m.unsubscribe, unsub)
	}
	return m
}

// Close drops the holder subscriptions.
func (m Model) Close() {
	for _, unsub := range m.unsubscribe {
		unsub()
	}
}

// Init starts the subscriptions and the first weather request.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForWeather(m.weatherUpdates),
		waitForSearch(m.searchUpdates),
		m.spinner.Tick,
		m.startupCmd(),
	}
	if m.db != nil {
		cmds = append(cmds, loadPlacesCmd(m.db))
	}
	return tea.Batch(cmds...)
}

// startupCmd shows the last viewed location, or the current location when
// there is none.
func (m Model) startupCmd() tea.Cmd {
	if m.weather == nil {
		return nil
	}
	if last := m.prefs.LastLocation; last != nil {
		h := m.weather
		return func() tea.Msg {
			h.GetWeather(last.Lat, last.Lon, last.CityName)
			return nil
		}
	}
	return currentLocationCmd(m.weather, m.locator)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Handle ctrl+c globally
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.mode == model.ModeNav && key.Matches(msg, m.keys.Help) {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" {
				m.showingHelp = false
			}
			return m, nil
		}

		if m.mode == model.ModeNav {
			return m.handleNavMode(msg)
		}
		return m.handleInsertMode(msg)

	case weatherStateMsg:
		return m, tea.Batch(m.applyWeatherState(msg.state), waitForWeather(m.weatherUpdates))

	case searchStateMsg:
		if m.dialog != nil {
			m.dialog.SetState(msg.state)
		}
		return m, waitForSearch(m.searchUpdates)

	case spinner.TickMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.dialog != nil {
			updated, cmd := m.dialog.Update(msg)
			m.dialog = &updated
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case iconLoadedMsg:
		delete(m.iconPending, msg.code)
		if msg.err != nil {
			m.log.Debug().Err(msg.err).Str("icon", msg.code).Msg("icon fetch failed")
			return m, nil
		}
		m.iconArt[msg.code] = msg.art
		return m, nil

	case model.ErrorMsg:
		m.error = msg.Err.Error()
		return m, nil

	case model.PlacesLoadedMsg:
		m.places = NewPlacesModel(msg.Places)
		m.places.ApplyPrefs(m.prefs.Places)
		return m, nil

	case model.LocationSelectedMsg:
		loc := msg.Location
		m.lastCandidate = &loc
		m.closeSearch()
		m.screen = model.ScreenWeather
		if m.weather != nil {
			m.weather.GetWeather(loc.Lat, loc.Lon, loc.DisplayName())
		}
		return m, nil

	case model.SearchCancelledMsg:
		m.closeSearch()
		return m, nil

	case saveCandidateMsg:
		if m.db == nil {
			m.info = "Saved places are unavailable"
			return m, nil
		}
		return m, savePlaceCmd(m.db, model.PlaceFromCandidate(msg.candidate))

	case model.PlaceSavedMsg:
		m.pushUndoAction(m.buildPlaceSaveAction(msg))
		m.error = ""
		m.info = fmt.Sprintf("Saved %s (u to undo)", msg.After.Name)
		return m, loadPlacesCmd(m.db)

	case model.DeletePlaceMsg:
		m.pushUndoAction(m.buildDeletePlaceAction(msg))
		m.error = ""
		m.info = fmt.Sprintf("Deleted %s (u to undo)", msg.Deleted.Name)
		return m, loadPlacesCmd(m.db)

	case undoAppliedMsg:
		return m, m.applyUndoResult(msg)

	case model.ConfigReloadedMsg:
		m.info = "Config reloaded"
		if msg.Units != "" && m.weather != nil {
			m.weather.SetUnits(msg.Units)
		}
		return m, nil

	default:
		if m.mode == model.ModeInsert && m.dialog != nil {
			updated, cmd := m.dialog.Update(msg)
			m.dialog = &updated
			return m, cmd
		}
	}

	return m, nil
}

func (m *Model) applyWeatherState(s viewstate.WeatherState) tea.Cmd {
	m.weatherState = s
	if s.Weather == nil {
		return nil
	}

	req := s.Request
	last := m.prefs.LastLocation
	if last == nil || last.Lat != req.Lat || last.Lon != req.Lon || last.CityName != req.CityName {
		m.prefs.LastLocation = &LastLocation{Lat: req.Lat, Lon: req.Lon, CityName: req.CityName}
		m.persistPrefs()
	}

	code := currentIconCode(s)
	if m.icons == nil || code == "" || m.iconPending[code] {
		return nil
	}
	if _, ok := m.iconArt[code]; ok {
		return nil
	}
	m.iconPending[code] = true
	return fetchIconCmd(m.icons, code, m.termCaps)
}

func currentIconCode(s viewstate.WeatherState) string {
	if s.Weather == nil || s.Weather.Current == nil {
		return ""
	}
	c, ok := s.Weather.Current.Condition()
	if !ok {
		return ""
	}
	return c.Icon
}

func (m *Model) persistPrefs() {
	if m.places != nil {
		m.prefs.Places = m.places.Prefs()
	}
	if err := saveUIPreferences(m.prefsPath, m.prefs); err != nil {
		m.log.Warn().Err(err).Msg("failed to save preferences")
	}
}

func (m *Model) openSearch() tea.Cmd {
	if m.search == nil {
		m.info = "Search is unavailable"
		return nil
	}
	m.dialog = NewSearchDialogModel(m.search)
	m.dialog.SetState(m.search.State())
	m.mode = model.ModeInsert
	m.info = ""
	return m.dialog.Init()
}

func (m *Model) closeSearch() {
	if m.search != nil {
		m.search.Clear()
	}
	m.dialog = nil
	m.mode = model.ModeNav
}

func (m Model) weatherView() weatherView {
	v := weatherView{
		state:   m.weatherState,
		now:     m.now(),
		spinner: m.spinner.View(),
	}
	if code := currentIconCode(m.weatherState); code != "" {
		v.iconArt = m.iconArt[code]
	}
	return v
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	var content string
	var breadcrumbParts []string

	// Header: 2 lines, footer: 2 lines
	contentHeight := m.height - 4
	if m.error != "" {
		contentHeight--
	}
	if m.info != "" {
		contentHeight--
	}
	contentHeight = max(1, contentHeight)

	switch m.screen {
	case model.ScreenWeather:
		breadcrumbParts = []string{"Weather"}
		content = m.weatherView().renderOverview(m.width, contentHeight)
	case model.ScreenForecast:
		breadcrumbParts = []string{"Weather", "Forecast"}
		content = m.weatherView().renderForecast(m.width, contentHeight)
	case model.ScreenPlaces:
		breadcrumbParts = []string{"Places"}
		if m.places != nil {
			content = m.places.View(m.width, contentHeight)
		} else {
			content = EmptyStateStyle.Render("Saved places are unavailable.")
		}
	}

	if m.mode == model.ModeInsert && m.dialog != nil {
		breadcrumbParts = append(breadcrumbParts, "Search")
		content = m.dialog.View(m.width, contentHeight)
	}

	header := m.renderHeader(breadcrumbParts)
	footer := RenderHelp(m.screen, m.mode, m.width)

	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	parts := []string{header}
	if m.error != "" {
		parts = append(parts, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.info != "" {
		parts = append(parts, SuccessStyle.Width(m.width).Render(m.info))
	}
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader(breadcrumbParts []string) string {
	title := HeaderStyle.Render("nimbus")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb

	units := util.UnitSymbol(m.weatherState.Request.Units)
	right := BreadcrumbStyle.Render(units+"  ·  "+m.now().Format("Mon 02 Jan")) + "  "

	padding := max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return TitleStyle.Width(m.width).Render(left + strings.Repeat(" ", padding) + right)
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "g" {
		if m.gState == GStateFirstG {
			m.gState = GStateIdle
			if m.screen == model.ScreenPlaces && m.places != nil {
				m.places.JumpToTop()
			}
			return m, nil
		}
		m.gState = GStateFirstG
		return m, nil
	}
	m.gState = GStateIdle

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		return m, m.openSearch()
	case key.Matches(msg, m.keys.Retry):
		if m.weather != nil {
			m.error = ""
			m.weather.Retry()
		}
		return m, nil
	case key.Matches(msg, m.keys.Current):
		if m.weather == nil {
			return m, nil
		}
		m.screen = model.ScreenWeather
		m.info = "Locating..."
		return m, currentLocationCmd(m.weather, m.locator)
	case key.Matches(msg, m.keys.Units):
		if m.weather == nil {
			return m, nil
		}
		units := model.UnitsImperial
		if m.weatherState.Request.Units == model.UnitsImperial {
			units = model.UnitsMetric
		}
		m.weather.SetUnits(units)
		m.info = "Units: " + units
		return m, nil
	case key.Matches(msg, m.keys.Places):
		if m.db == nil {
			m.info = "Saved places are unavailable"
			return m, nil
		}
		m.screen = model.ScreenPlaces
		return m, loadPlacesCmd(m.db)
	case key.Matches(msg, m.keys.Undo):
		if len(m.undoStack) == 0 {
			m.info = "Nothing to undo"
			return m, nil
		}
		return m, m.undoCmd()
	case key.Matches(msg, m.keys.Redo):
		if len(m.redoStack) == 0 {
			m.info = "Nothing to redo"
			return m, nil
		}
		return m, m.redoCmd()
	}

	switch m.screen {
	case model.ScreenWeather:
		return m.handleWeatherNav(msg)
	case model.ScreenForecast:
		return m.handleForecastNav(msg)
	case model.ScreenPlaces:
		return m.handlePlacesNav(msg)
	}
	return m, nil
}

// handleInsertMode routes input to the search dialog.
func (m Model) handleInsertMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.dialog == nil {
		m.mode = model.ModeNav
		return m, nil
	}
	updated, cmd := m.dialog.Update(msg)
	m.dialog = &updated
	return m, cmd
}

func (m Model) handleWeatherNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		m.screen = model.ScreenForecast
		return m, nil
	case key.Matches(msg, m.keys.Add):
		if m.db == nil {
			m.info = "Saved places are unavailable"
			return m, nil
		}
		return m, savePlaceCmd(m.db, m.currentPlace())
	}
	return m, nil
}

func (m Model) handleForecastNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.screen = model.ScreenWeather
	}
	return m, nil
}

func (m Model) handlePlacesNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.screen = model.ScreenWeather
		return m, nil
	}
	if m.places == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		m.places.MoveDown()
	case key.Matches(msg, m.keys.Up):
		m.places.MoveUp()
	case key.Matches(msg, m.keys.Bottom):
		m.places.JumpToBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.places.HalfPageDown(m.height / 2)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.places.HalfPageUp(m.height / 2)
	case key.Matches(msg, m.keys.Sort):
		m.info = m.places.CycleSort()
		m.persistPrefs()
	case key.Matches(msg, m.keys.Select):
		p, ok := m.places.Selected()
		if !ok {
			return m, nil
		}
		m.lastCandidate = &model.LocationCandidate{Name: p.Name, Lat: p.Lat, Lon: p.Lon, Country: p.Country, State: p.State}
		m.screen = model.ScreenWeather
		if m.weather != nil {
			m.weather.GetWeather(p.Lat, p.Lon, p.DisplayName())
		}
	case key.Matches(msg, m.keys.Delete):
		p, ok := m.places.Selected()
		if !ok {
			return m, nil
		}
		return m, deletePlaceCmd(m.db, p.ID)
	}
	return m, nil
}

// currentPlace describes the location on screen as a place to save.
func (m Model) currentPlace() model.NewPlace {
	req := m.weatherState.Request
	if c := m.lastCandidate; c != nil && c.Lat == req.Lat && c.Lon == req.Lon {
		return model.PlaceFromCandidate(*c)
	}
	return model.NewPlace{Name: req.CityName, Lat: req.Lat, Lon: req.Lon}
}

func waitForWeather(ch <-chan viewstate.WeatherState) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return weatherStateMsg{state: s}
	}
}

func waitForSearch(ch <-chan viewstate.SearchState) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return searchStateMsg{state: s}
	}
}

func currentLocationCmd(h *viewstate.WeatherHolder, loc viewstate.Locator) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), locateTimeout)
		defer cancel()
		h.CurrentLocationWeather(ctx, loc)
		return nil
	}
}

func loadPlacesCmd(database *sql.DB) tea.Cmd {
	if database == nil {
		return nil
	}
	return func() tea.Msg {
		places, err := db.ListPlaces(database, "")
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.PlacesLoadedMsg{Places: places}
	}
}

func savePlaceCmd(database *sql.DB, p model.NewPlace) tea.Cmd {
	return func() tea.Msg {
		id, err := db.InsertPlace(database, p)
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to save place: %w", err)}
		}
		place, err := db.GetPlace(database, id)
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to load saved place: %w", err)}
		}
		return model.PlaceSavedMsg{ID: id, After: place}
	}
}

func deletePlaceCmd(database *sql.DB, id int64) tea.Cmd {
	return func() tea.Msg {
		place, err := db.GetPlace(database, id)
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to load place before delete: %w", err)}
		}
		if err := db.DeletePlace(database, id); err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to delete place: %w", err)}
		}
		return model.DeletePlaceMsg{ID: id, Deleted: place}
	}
}
