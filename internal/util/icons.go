package util

import "strings"

// Icon is a weather icon kind.
type Icon int

const (
	IconPartlyCloudy Icon = iota
	IconClearSky
	IconCloudy
	IconRain
	IconDrizzle
	IconThunderstorm
	IconSnow
	IconFog
)

// IconFor maps a condition ("Clear", "light rain", ...) to an icon.
// Unknown conditions get IconPartlyCloudy.
func IconFor(condition string) Icon {
	switch strings.ToLower(strings.TrimSpace(condition)) {
	case "clear", "clear sky":
		return IconClearSky
	case "few clouds", "scattered clouds", "partly cloudy":
		return IconPartlyCloudy
	case "broken clouds", "overcast clouds", "clouds":
		return IconCloudy
	case "shower rain", "rain", "light rain", "moderate rain":
		return IconRain
	case "drizzle", "light intensity drizzle":
		return IconDrizzle
	case "thunderstorm":
		return IconThunderstorm
	case "snow", "light snow", "heavy snow":
		return IconSnow
	case "mist", "fog", "haze":
		return IconFog
	}
	return IconPartlyCloudy
}

// Glyph returns a one-cell symbol for an icon.
func Glyph(i Icon) string {
	switch i {
	case IconClearSky:
		return "☀"
	case IconCloudy:
		return "☁"
	case IconRain:
		return "☂"
	case IconDrizzle:
		return "⛆"
	case IconThunderstorm:
		return "⚡"
	case IconSnow:
		return "❄"
	case IconFog:
		return "≋"
	default:
		return "⛅"
	}
}

// Background is the screen backdrop for a condition.
type Background int

const (
	BackgroundSunny Background = iota
	BackgroundCloudy
	BackgroundRainy
)

func (b Background) String() string {
	switch b {
	case BackgroundCloudy:
		return "cloudy"
	case BackgroundRainy:
		return "rainy"
	default:
		return "sunny"
	}
}

// BackgroundFor maps a condition to a backdrop. Unknown conditions are sunny.
func BackgroundFor(condition string) Background {
	switch strings.ToLower(strings.TrimSpace(condition)) {
	case "clear", "clear sky":
		return BackgroundSunny
	case "clouds", "few clouds", "scattered clouds", "broken clouds", "overcast clouds":
		return BackgroundCloudy
	case "rain", "light rain", "moderate rain", "heavy rain", "shower rain",
		"drizzle", "light drizzle", "thunderstorm":
		return BackgroundRainy
	case "snow", "light snow", "heavy snow", "mist", "fog", "haze":
		return BackgroundCloudy
	}
	return BackgroundSunny
}
