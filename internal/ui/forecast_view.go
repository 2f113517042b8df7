package ui

import (
	"fmt"
	"math"
	"strings"

	"nimbus/internal/util"

	"github.com/charmbracelet/lipgloss"
)

const (
	forecastDays = 7
	curveHeight  = 7
	curveCell    = 8
)

func (v weatherView) renderForecast(width, height int) string {
	if placeholder, ok := v.renderStatus(width, height); ok {
		return placeholder
	}

	w := v.state.Weather
	units := v.units()
	color := backdropColor(v.background())

	sections := []string{
		TitleStyle.Render("Today · " + v.state.Request.CityName),
	}

	temps := make([]float64, 0, util.CurvePoints)
	labels := make([]string, 0, util.CurvePoints)
	for i, h := range w.Hourly {
		if i == util.CurvePoints {
			break
		}
		temps = append(temps, h.Temp)
		labels = append(labels, util.FormatClock(h.Time, w.TimezoneOffset))
	}
	sections = append(sections, renderCurve(temps, labels, color, min(width-8, util.CurvePoints*curveCell), curveHeight))

	if c := w.Current; c != nil {
		sections = append(sections, lipgloss.JoinVertical(
			lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top,
				detailCell(renderField("Feels like", util.FormatTemp(c.FeelsLike, units))),
				detailCell(renderField("Humidity", fmt.Sprintf("%d%%", c.Humidity))),
				detailCell(renderField("Wind", util.FormatWind(c.WindSpeed, units))),
			),
			lipgloss.JoinHorizontal(lipgloss.Top,
				detailCell(renderField("Pressure", fmt.Sprintf("%d hPa", c.Pressure))),
				detailCell(renderField("UV index", fmt.Sprintf("%.1f", c.UVI))),
				detailCell(renderField("Visibility", fmt.Sprintf("%.1f km", float64(c.Visibility)/1000))),
			),
			lipgloss.JoinHorizontal(lipgloss.Top,
				detailCell(renderField("Sunrise", util.FormatClock(c.Sunrise, w.TimezoneOffset))),
				detailCell(renderField("Sunset", util.FormatClock(c.Sunset, w.TimezoneOffset))),
				detailCell(renderField("Dew point", util.FormatTemp(c.DewPoint, units))),
			),
		))
	}

	if len(w.Alerts) > 0 {
		var alerts []string
		for _, a := range w.Alerts {
			alerts = append(alerts, ErrorStyle.Render("⚠ "+a.Event)+" "+
				HelpDescStyle.Render(fmt.Sprintf("%s, until %s", a.Sender, util.FormatClock(a.End, w.TimezoneOffset))))
		}
		sections = append(sections, strings.Join(alerts, "\n"))
	}

	sections = append(sections, TitleStyle.Render("Next 7 days"), v.renderDaily(width-8))

	panel := backdropPanel(v.background()).Width(max(20, width-4)).Render(strings.Join(sections, "\n\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, panel)
}

func detailCell(s string) string {
	return lipgloss.NewStyle().Width(24).Render(s)
}

func (v weatherView) renderDaily(width int) string {
	days := v.state.Weather.Daily
	if len(days) == 0 {
		return HelpDescStyle.Render("No daily forecast")
	}

	widths := []int{8, 3, 24, 6, 12}
	if extra := width - 53 - (len(widths)-1)*lipgloss.Width(tableSeparator); extra > 0 {
		widths[2] += extra
	}

	var rows []string
	for i, d := range days {
		if i == forecastDays {
			break
		}
		day := util.DayName(v.now, i)
		if i == 0 {
			day = "Today"
		}

		glyph := util.Glyph(util.IconPartlyCloudy)
		desc := d.Summary
		if len(d.Conditions) > 0 {
			glyph = util.Glyph(util.IconFor(d.Conditions[0].Main))
			if desc == "" {
				desc = capitalize(d.Conditions[0].Description)
			}
		}

		lohi := "--"
		if d.Temp != nil {
			lohi = util.FormatDegrees(d.Temp.Min) + " / " + util.FormatDegrees(d.Temp.Max)
		}

		rows = append(rows, renderTableRow([]string{
			day,
			glyph,
			util.TruncateString(desc, widths[2]),
			util.FormatPercent(d.Pop),
			lohi,
		}, widths, NormalRowStyle))
	}
	return strings.Join(rows, "\n")
}

// renderCurve draws temps as a line chart of the given size with one label
// under each sample.
func renderCurve(temps []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(temps) < 2 {
		return HelpDescStyle.Render("Not enough hourly data for a chart")
	}
	width = max(width, len(temps)*6)

	pts := util.TemperatureCurve(temps, float64(width-1), float64(height-1), 0)
	grid := make([][]rune, height)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", width))
	}

	for i := 1; i < len(pts); i++ {
		drawSegment(grid, pts[i-1], pts[i])
	}
	xs := make([]int, len(pts))
	for i, p := range pts {
		x, y := cell(p)
		grid[y][x] = '●'
		xs[i] = x
	}

	lo, hi := util.TemperatureRange(temps)
	line := lipgloss.NewStyle().Foreground(color)
	rows := make([]string, 0, height+1)
	for y, r := range grid {
		axis := "     "
		switch y {
		case 0:
			axis = fmt.Sprintf("%4s ", util.FormatDegrees(hi))
		case height - 1:
			axis = fmt.Sprintf("%4s ", util.FormatDegrees(lo))
		}
		rows = append(rows, HelpDescStyle.Render(axis)+line.Render(string(r)))
	}
	rows = append(rows, "     "+HelpDescStyle.Render(placeLabels(width, xs, labels)))
	return strings.Join(rows, "\n")
}

func cell(p util.Point) (int, int) {
	return int(math.Round(p.X)), int(math.Round(p.Y))
}

func drawSegment(grid [][]rune, a, b util.Point) {
	x0, _ := cell(a)
	x1, _ := cell(b)
	for x := x0 + 1; x < x1; x++ {
		t := float64(x-x0) / float64(x1-x0)
		y := int(math.Round(a.Y + t*(b.Y-a.Y)))
		grid[y][x] = '·'
	}
}

// placeLabels centres each label under its x position, skipping labels that
// would overlap the previous one.
func placeLabels(width int, xs []int, labels []string) string {
	row := []rune(strings.Repeat(" ", width))
	next := 0
	for i, x := range xs {
		if i >= len(labels) {
			break
		}
		label := []rune(labels[i])
		start := min(max(0, x-len(label)/2), width-len(label))
		if start < next || start < 0 {
			continue
		}
		copy(row[start:], label)
		next = start + len(label) + 1
	}
	return string(row)
}
