package util

import "math"

// CurvePoints is the number of hourly samples drawn on the temperature curve.
const CurvePoints = 8

// Point is a position on the temperature chart. Y grows downwards.
type Point struct {
	X, Y float64
}

// TemperatureRange returns the lowest and highest temperature. Empty input
// yields 0 and 30.
func TemperatureRange(temps []float64) (lo, hi float64) {
	if len(temps) == 0 {
		return 0, 30
	}
	lo, hi = temps[0], temps[0]
	for _, t := range temps[1:] {
		lo = math.Min(lo, t)
		hi = math.Max(hi, t)
	}
	return lo, hi
}

// TemperatureCurve lays out the first CurvePoints temperatures on a
// width x height chart. Points are evenly spaced and their heights are
// normalized into [padding, height-padding]. A flat series sits at
// mid-height. Fewer than two temperatures give no curve.
func TemperatureCurve(temps []float64, width, height, padding float64) []Point {
	if len(temps) > CurvePoints {
		temps = temps[:CurvePoints]
	}
	if len(temps) < 2 {
		return nil
	}

	lo, hi := TemperatureRange(temps)
	spacing := width / float64(len(temps)-1)
	points := make([]Point, len(temps))
	for i, t := range temps {
		norm := 0.5
		if hi > lo {
			norm = clamp((t-lo)/(hi-lo), 0, 1)
		}
		points[i] = Point{
			X: float64(i) * spacing,
			Y: height - padding - norm*(height-2*padding),
		}
	}
	return points
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
