package ui

import (
	"strings"

	"nimbus/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(screen model.Screen, mode model.Mode, width int) string {
	if mode == model.ModeInsert {
		return renderSearchHelp(width)
	}

	switch screen {
	case model.ScreenForecast:
		return renderForecastHelp(width)
	case model.ScreenPlaces:
		return renderPlacesHelp(width)
	default:
		return renderWeatherHelp(width)
	}
}

func renderWeatherHelp(width int) string {
	keys := []string{
		helpKey("/", "search"),
		helpKey("enter", "forecast"),
		helpKey("r", "retry"),
		helpKey("c", "current location"),
		helpKey("t", "°C/°F"),
		helpKey("a", "save place"),
		helpKey("p", "places"),
		helpKey("?", "help"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func renderForecastHelp(width int) string {
	keys := []string{
		helpKey("h/esc", "back"),
		helpKey("r", "retry"),
		helpKey("t", "°C/°F"),
		helpKey("/", "search"),
	}
	return renderHelpLine(keys, width)
}

func renderPlacesHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("enter", "show weather"),
		helpKey("s", "sort"),
		helpKey("d", "delete"),
		helpKey("u/ctrl+r", "undo/redo"),
		helpKey("h/esc", "back"),
	}
	return renderHelpLine(keys, width)
}

func renderSearchHelp(width int) string {
	keys := []string{
		helpKey("↑/↓", "choose"),
		helpKey("enter", "show weather"),
		helpKey("ctrl+s", "save place"),
		helpKey("esc", "close"),
	}
	return renderHelpLine(keys, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Weather"),
		helpSection([]helpItem{
			{"/", "Search for a location"},
			{"enter / l", "Open the 7-day forecast"},
			{"r", "Retry the last request"},
			{"c", "Weather for your current location"},
			{"t", "Toggle Celsius / Fahrenheit"},
			{"a", "Save the shown location"},
			{"p", "Saved places"},
		}),
		titleSection("Saved Places"),
		helpSection([]helpItem{
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"gg / G", "Jump to top / bottom"},
			{"ctrl+d / ctrl+u", "Half page down / up"},
			{"enter / l", "Show weather for place"},
			{"s", "Cycle sort order"},
			{"d", "Delete place"},
			{"u / ctrl+r", "Undo / redo"},
		}),
		titleSection("Search"),
		helpSection([]helpItem{
			{"type", "At least 3 characters to search"},
			{"↑ / ↓", "Choose a result"},
			{"enter", "Show weather"},
			{"ctrl+s", "Save result as a place"},
			{"esc", "Close"},
		}),
		titleSection("General"),
		helpSection([]helpItem{
			{"h / esc", "Back"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
