package util

import (
	"testing"
	"time"

	"nimbus/internal/model"
)

func TestIconFor(t *testing.T) {
	tests := []struct {
		condition string
		want      Icon
	}{
		{"Clear", IconClearSky},
		{"clear sky", IconClearSky},
		{"Clouds", IconCloudy},
		{"scattered clouds", IconPartlyCloudy},
		{"Rain", IconRain},
		{"Drizzle", IconDrizzle},
		{"Thunderstorm", IconThunderstorm},
		{"SNOW", IconSnow},
		{"Haze", IconFog},
		{"Tornado", IconPartlyCloudy},
		{"", IconPartlyCloudy},
	}

	for _, tt := range tests {
		t.Run(tt.condition, func(t *testing.T) {
			if got := IconFor(tt.condition); got != tt.want {
				t.Errorf("IconFor(%q) = %v, want %v", tt.condition, got, tt.want)
			}
		})
	}
}

func TestBackgroundFor(t *testing.T) {
	tests := []struct {
		condition string
		want      Background
	}{
		{"Clear", BackgroundSunny},
		{"Clouds", BackgroundCloudy},
		{"Mist", BackgroundCloudy},
		{"Snow", BackgroundCloudy},
		{"Rain", BackgroundRainy},
		{"Thunderstorm", BackgroundRainy},
		{"light drizzle", BackgroundRainy},
		{"Ash", BackgroundSunny},
	}

	for _, tt := range tests {
		t.Run(tt.condition, func(t *testing.T) {
			if got := BackgroundFor(tt.condition); got != tt.want {
				t.Errorf("BackgroundFor(%q) = %v, want %v", tt.condition, got, tt.want)
			}
		})
	}
}

func TestFormatters(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"metric temp", FormatTemp(21.9, model.UnitsMetric), "21°C"},
		{"imperial temp", FormatTemp(70.2, model.UnitsImperial), "70°F"},
		{"standard temp", FormatTemp(294.1, model.UnitsStandard), "294K"},
		{"default units", FormatTemp(-3.7, ""), "-3°C"},
		{"degrees", FormatDegrees(17.6), "17°"},
		{"metric wind", FormatWind(4.2, model.UnitsMetric), "15km/h"},
		{"imperial wind", FormatWind(9.8, model.UnitsImperial), "9mph"},
		{"percent", FormatPercent(0.375), "38%"},
		{"coords", FormatCoords(-26.2041, 28.0473), "-26.2041, 28.0473"},
		{"truncate", TruncateString("Johannesburg", 8), "Johan..."},
		{"no truncate", TruncateString("Cairo", 8), "Cairo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestWindKmh(t *testing.T) {
	if got := WindKmh(10); got != 36 {
		t.Fatalf("WindKmh(10) = %d, want 36", got)
	}
	if got := WindKmh(0.9); got != 3 {
		t.Fatalf("WindKmh(0.9) = %d, want 3", got)
	}
}

func TestDayNameAndClock(t *testing.T) {
	now := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC) // Monday
	if got := DayName(now, 0); got != "Mon" {
		t.Errorf("DayName(0) = %q", got)
	}
	if got := DayName(now, 6); got != "Sun" {
		t.Errorf("DayName(6) = %q", got)
	}

	ts := time.Unix(1709542800, 0) // 2024-03-04 09:00 UTC
	if got := FormatClock(ts, 7200); got != "11:00" {
		t.Errorf("FormatClock() = %q, want 11:00", got)
	}
	if got := FormatClock(time.Time{}, 0); got != "--:--" {
		t.Errorf("FormatClock(zero) = %q", got)
	}
}

func TestTemperatureRange(t *testing.T) {
	lo, hi := TemperatureRange(nil)
	if lo != 0 || hi != 30 {
		t.Fatalf("empty range = %v..%v, want 0..30", lo, hi)
	}
	lo, hi = TemperatureRange([]float64{12, 4.5, 19, 7})
	if lo != 4.5 || hi != 19 {
		t.Fatalf("range = %v..%v, want 4.5..19", lo, hi)
	}
}

func TestTemperatureCurve(t *testing.T) {
	t.Run("too few points", func(t *testing.T) {
		if got := TemperatureCurve([]float64{10}, 100, 50, 5); got != nil {
			t.Fatalf("curve = %v, want nil", got)
		}
	})

	t.Run("normalized", func(t *testing.T) {
		pts := TemperatureCurve([]float64{10, 20, 15}, 100, 50, 5)
		if len(pts) != 3 {
			t.Fatalf("len = %d, want 3", len(pts))
		}
		want := []Point{{0, 45}, {50, 5}, {100, 25}}
		for i := range want {
			if pts[i] != want[i] {
				t.Errorf("point %d = %v, want %v", i, pts[i], want[i])
			}
		}
	})

	t.Run("flat series at mid height", func(t *testing.T) {
		for _, p := range TemperatureCurve([]float64{18, 18, 18}, 60, 40, 4) {
			if p.Y != 20 {
				t.Fatalf("Y = %v, want 20", p.Y)
			}
		}
	})

	t.Run("capped to first eight", func(t *testing.T) {
		temps := make([]float64, 24)
		for i := range temps {
			temps[i] = float64(i)
		}
		pts := TemperatureCurve(temps, 70, 10, 0)
		if len(pts) != CurvePoints {
			t.Fatalf("len = %d, want %d", len(pts), CurvePoints)
		}
		if pts[len(pts)-1].X != 70 {
			t.Fatalf("last X = %v, want 70", pts[len(pts)-1].X)
		}
	})
}
