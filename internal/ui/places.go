package ui

import (
	"fmt"
	"sort"
	"strings"

	"nimbus/internal/model"
	"nimbus/internal/util"

	"github.com/charmbracelet/lipgloss"
)

type placeColumn struct {
	key   string
	label string
	width int
}

// Place sort keys.
const (
	SortByName    = "name"
	SortByCountry = "country"
	SortByAdded   = "added"
)

// PlacesModel represents the saved places list.
type PlacesModel struct {
	rows   []model.Place
	cursor int
	offset int

	viewportHeight int

	columns  []placeColumn
	sortKey  string
	sortDesc bool
}

// NewPlacesModel creates a new places list.
func NewPlacesModel(places []model.Place) *PlacesModel {
	return &PlacesModel{
		rows: append([]model.Place(nil), places...),
		columns: []placeColumn{
			{key: "name", label: "name", width: 22},
			{key: "state", label: "region", width: 16},
			{key: "country", label: "country", width: 8},
			{key: "coords", label: "coordinates", width: 20},
			{key: "added", label: "added", width: 12},
		},
	}
}

// ApplyPrefs restores the persisted sort order.
func (m *PlacesModel) ApplyPrefs(prefs PlacesPrefs) {
	m.sortKey = prefs.SortKey
	m.sortDesc = prefs.SortDesc
	m.rebuild()
}

// Prefs returns the sort order to persist.
func (m *PlacesModel) Prefs() PlacesPrefs {
	return PlacesPrefs{SortKey: m.sortKey, SortDesc: m.sortDesc}
}

// CycleSort steps through name, country and added, each ascending then
// descending.
func (m *PlacesModel) CycleSort() string {
	order := []string{SortByName, SortByCountry, SortByAdded}
	idx := 0
	for i, k := range order {
		if k == m.sortKey {
			idx = i
		}
	}
	switch {
	case m.sortKey == "":
		m.sortKey, m.sortDesc = SortByName, false
	case !m.sortDesc:
		m.sortDesc = true
	default:
		m.sortKey, m.sortDesc = order[(idx+1)%len(order)], false
	}
	m.rebuild()

	dir := "ascending"
	if m.sortDesc {
		dir = "descending"
	}
	return fmt.Sprintf("Sorted %s %s", strings.ToUpper(m.sortKey), dir)
}

func (m *PlacesModel) rebuild() {
	if m.sortKey != "" {
		sort.SliceStable(m.rows, func(i, j int) bool {
			left, right := m.sortValue(m.rows[i]), m.sortValue(m.rows[j])
			if left == right {
				return m.rows[i].ID < m.rows[j].ID
			}
			if m.sortDesc {
				return left > right
			}
			return left < right
		})
	}
	m.clampCursor()
}

func (m *PlacesModel) sortValue(p model.Place) string {
	switch m.sortKey {
	case SortByCountry:
		return strings.ToLower(p.Country + "\x00" + p.Name)
	case SortByAdded:
		return p.CreatedAt.UTC().Format("20060102150405")
	default:
		return strings.ToLower(p.Name)
	}
}

func (m *PlacesModel) clampCursor() {
	if len(m.rows) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

// Selected returns the place under the cursor.
func (m *PlacesModel) Selected() (model.Place, bool) {
	if len(m.rows) == 0 {
		return model.Place{}, false
	}
	return m.rows[m.cursor], true
}

// Len returns the number of places.
func (m *PlacesModel) Len() int {
	return len(m.rows)
}

// View renders the places list.
func (m *PlacesModel) View(width, height int) string {
	if len(m.rows) == 0 {
		emptyMsg := `    No saved places yet.
    Press  a  on the weather screen or  ctrl+s  in search to save one.`
		return EmptyStateStyle.
			Width(width).
			Height(height).
			Render(emptyMsg)
	}

	widths := make([]int, len(m.columns))
	headers := make([]string, len(m.columns))
	totalFixed := 0
	for i, col := range m.columns {
		label := formatHeaderLabel(col.label)
		if m.sortKey == col.key {
			if m.sortDesc {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		widths[i] = max(col.width+2, lipgloss.Width(label)+4)
		headers[i] = label
		totalFixed += widths[i]
	}
	extra := width - totalFixed - (len(widths)-1)*lipgloss.Width(tableSeparator) - 2
	if extra > 0 {
		widths[len(widths)-1] += extra
	}

	header := renderTableRow(headers, widths, TableHeaderStyle)
	divider := renderTableDivider(widths)

	visibleHeight := max(1, height-3)
	m.viewportHeight = visibleHeight
	var rows []string
	for i := m.offset; i < len(m.rows) && i < m.offset+visibleHeight; i++ {
		p := m.rows[i]
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}
		cells := make([]string, 0, len(m.columns))
		for _, col := range m.columns {
			switch col.key {
			case "name":
				cells = append(cells, util.TruncateString(p.Name, col.width))
			case "state":
				cells = append(cells, util.TruncateString(dashIfEmpty(p.State), col.width))
			case "country":
				cells = append(cells, dashIfEmpty(p.Country))
			case "coords":
				cells = append(cells, util.FormatCoords(p.Lat, p.Lon))
			case "added":
				added := "—"
				if !p.CreatedAt.IsZero() {
					added = p.CreatedAt.Local().Format("02 Jan 2006")
				}
				cells = append(cells, added)
			}
		}
		rows = append(rows, renderTableRow(cells, widths, style))
	}

	status := StatusBarStyle.Render(fmt.Sprintf("%d places  ·  row %d/%d", len(m.rows), m.cursor+1, len(m.rows)))

	content := lipgloss.JoinVertical(lipgloss.Left, header, divider, strings.Join(rows, "\n"))
	spacerHeight := max(0, height-lipgloss.Height(content)-lipgloss.Height(status))
	spacer := lipgloss.NewStyle().Height(spacerHeight).Render("")

	return lipgloss.JoinVertical(lipgloss.Left, content, spacer, status)
}

func dashIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

func (m *PlacesModel) pageHeight() int {
	if m.viewportHeight == 0 {
		return 10
	}
	return m.viewportHeight
}

// MoveDown moves the cursor down.
func (m *PlacesModel) MoveDown() {
	if m.cursor < len(m.rows)-1 {
		m.cursor++
		if m.cursor >= m.offset+m.pageHeight() {
			m.offset++
		}
	}
}

// MoveUp moves the cursor up.
func (m *PlacesModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
		if m.cursor < m.offset {
			m.offset--
		}
	}
}

// JumpToTop jumps to the first item.
func (m *PlacesModel) JumpToTop() {
	m.cursor = 0
	m.offset = 0
}

// JumpToBottom jumps to the last item.
func (m *PlacesModel) JumpToBottom() {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = len(m.rows) - 1
	if vh := m.pageHeight(); m.cursor >= vh {
		m.offset = m.cursor - vh + 1
	}
}

// HalfPageDown moves down half a page.
func (m *PlacesModel) HalfPageDown(pageSize int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = min(len(m.rows)-1, m.cursor+pageSize/2)
	if vh := m.pageHeight(); m.cursor >= m.offset+vh {
		m.offset = m.cursor - vh + 1
	}
}

// HalfPageUp moves up half a page.
func (m *PlacesModel) HalfPageUp(pageSize int) {
	m.cursor = max(0, m.cursor-pageSize/2)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
}
