package util

import (
	"fmt"
	"math"
	"time"

	"nimbus/internal/model"
)

// UnitSymbol returns the temperature suffix for a unit system.
func UnitSymbol(units string) string {
	switch units {
	case model.UnitsImperial:
		return "°F"
	case model.UnitsStandard:
		return "K"
	default:
		return "°C"
	}
}

// FormatTemp formats a temperature as "21°C", truncated like the rest of the UI.
func FormatTemp(t float64, units string) string {
	return fmt.Sprintf("%d%s", int(t), UnitSymbol(units))
}

// FormatDegrees formats a temperature without its unit, e.g. "21°".
func FormatDegrees(t float64) string {
	return fmt.Sprintf("%d°", int(t))
}

// WindKmh converts metres per second to whole kilometres per hour.
func WindKmh(ms float64) int {
	return int(ms * 3.6)
}

// FormatWind formats a wind speed. Metric and standard speeds arrive in m/s
// and are shown in km/h; imperial speeds are already mph.
func FormatWind(speed float64, units string) string {
	if units == model.UnitsImperial {
		return fmt.Sprintf("%dmph", int(speed))
	}
	return fmt.Sprintf("%dkm/h", WindKmh(speed))
}

// FormatPercent formats a 0..1 probability as "40%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(p*100)))
}

// DayName returns the short weekday name offset days after now.
func DayName(now time.Time, offset int) string {
	return now.AddDate(0, 0, offset).Format("Mon")
}

// FormatClock formats an instant as HH:MM in a location offset from UTC by
// tzOffset seconds.
func FormatClock(t time.Time, tzOffset int) string {
	if t.IsZero() {
		return "--:--"
	}
	return t.In(time.FixedZone("", tzOffset)).Format("15:04")
}

// FormatDate formats an instant as "Monday, 02 January" in the target zone.
func FormatDate(t time.Time, tzOffset int) string {
	return t.In(time.FixedZone("", tzOffset)).Format("Monday, 02 January")
}

// FormatCoords formats a coordinate pair with four decimals.
func FormatCoords(lat, lon float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lon)
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
