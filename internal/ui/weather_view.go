package ui

import (
	"fmt"
	"strings"
	"time"

	"nimbus/internal/model"
	"nimbus/internal/util"
	"nimbus/internal/viewstate"

	"github.com/charmbracelet/lipgloss"
)

// hourlyStripLength is the number of hours shown on the overview.
const hourlyStripLength = 8

// weatherView holds what the weather screens need to render.
type weatherView struct {
	state   viewstate.WeatherState
	now     time.Time
	iconArt string
	spinner string
}

func (v weatherView) units() string {
	return v.state.Request.Units
}

func (v weatherView) condition() model.WeatherCondition {
	if w := v.state.Weather; w != nil && w.Current != nil {
		if c, ok := w.Current.Condition(); ok {
			return c
		}
	}
	return model.WeatherCondition{}
}

func (v weatherView) background() util.Background {
	return util.BackgroundFor(v.condition().Main)
}

// renderStatus renders the loading, error and idle placeholders. ok is false
// when a payload is available.
func (v weatherView) renderStatus(width, height int) (string, bool) {
	s := v.state
	if s.Weather != nil {
		return "", false
	}

	var body string
	switch {
	case s.IsLoading:
		body = v.spinner + " Loading weather for " + s.Request.CityName + "..."
	case s.Error != "":
		body = lipgloss.JoinVertical(
			lipgloss.Left,
			ErrorStyle.Render(s.Error),
			"",
			HelpDescStyle.Render("Press ")+HelpKeyStyle.Render("r")+HelpDescStyle.Render(" to retry"),
		)
	default:
		body = HelpDescStyle.Render("No weather yet. Press ") + HelpKeyStyle.Render("/") + HelpDescStyle.Render(" to search for a location.")
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body), true
}

func (v weatherView) renderOverview(width, height int) string {
	if placeholder, ok := v.renderStatus(width, height); ok {
		return placeholder
	}

	w := v.state.Weather
	units := v.units()
	cond := v.condition()
	accent := lipgloss.NewStyle().Foreground(backdropColor(v.background())).Bold(true)

	date := v.now
	if w.Current != nil && !w.Current.Time.IsZero() {
		date = w.Current.Time
	}

	icon := v.iconArt
	if icon == "" {
		icon = accent.Render(util.Glyph(util.IconFor(cond.Main)))
	}

	var temp string
	if w.Current != nil {
		temp = BigTempStyle.Render(util.FormatTemp(w.Current.Temp, units))
	} else {
		temp = BigTempStyle.Render("--")
	}

	desc := cond.Description
	if desc == "" {
		desc = cond.Main
	}

	headline := []string{
		accent.Render(v.state.Request.CityName),
		HelpDescStyle.Render(util.FormatDate(date, w.TimezoneOffset)),
		"",
		temp,
		NormalRowStyle.Render(capitalize(desc)),
	}
	if len(w.Daily) > 0 && w.Daily[0].Temp != nil {
		t := w.Daily[0].Temp
		headline = append(headline, HelpDescStyle.Render(fmt.Sprintf("H: %s  L: %s", util.FormatDegrees(t.Max), util.FormatDegrees(t.Min))))
	}

	top := lipgloss.JoinHorizontal(
		lipgloss.Center,
		lipgloss.NewStyle().PaddingRight(4).Render(icon),
		lipgloss.JoinVertical(lipgloss.Left, headline...),
	)

	sections := []string{top}
	if w.Current != nil {
		c := w.Current
		sections = append(sections, lipgloss.JoinHorizontal(
			lipgloss.Top,
			metricCell("Feels like", util.FormatTemp(c.FeelsLike, units)),
			metricCell("Humidity", fmt.Sprintf("%d%%", c.Humidity)),
			metricCell("Wind", util.FormatWind(c.WindSpeed, units)),
			metricCell("Sunrise", util.FormatClock(c.Sunrise, w.TimezoneOffset)),
			metricCell("Sunset", util.FormatClock(c.Sunset, w.TimezoneOffset)),
		))
	}
	if strip := renderHourlyStrip(w.Hourly, w.TimezoneOffset, units); strip != "" {
		sections = append(sections, strip)
	}
	if len(w.Alerts) > 0 {
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("⚠ %s (%s)", w.Alerts[0].Event, w.Alerts[0].Sender)))
	}

	panel := backdropPanel(v.background()).Render(strings.Join(sections, "\n\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}

func metricCell(label, value string) string {
	return lipgloss.NewStyle().Width(14).Render(lipgloss.JoinVertical(
		lipgloss.Left,
		HelpDescStyle.Render(label),
		NormalRowStyle.Bold(true).Render(value),
	))
}

func renderHourlyStrip(hourly []model.HourlyWeather, tzOffset int, units string) string {
	n := min(len(hourly), hourlyStripLength)
	if n == 0 {
		return ""
	}
	cells := make([]string, n)
	for i := 0; i < n; i++ {
		h := hourly[i]
		glyph := util.Glyph(util.IconPartlyCloudy)
		if len(h.Conditions) > 0 {
			glyph = util.Glyph(util.IconFor(h.Conditions[0].Main))
		}
		label := util.FormatClock(h.Time, tzOffset)
		if i == 0 {
			label = "Now"
		}
		cells[i] = lipgloss.NewStyle().Width(8).Align(lipgloss.Center).Render(lipgloss.JoinVertical(
			lipgloss.Center,
			HelpDescStyle.Render(label),
			glyph,
			NormalRowStyle.Render(util.FormatTemp(h.Temp, units)),
		))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
