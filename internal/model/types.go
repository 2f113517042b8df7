package model

import "time"

// Unit systems accepted by the weather service.
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
	UnitsStandard = "standard"
)

// WeatherQuery identifies a single forecast lookup.
type WeatherQuery struct {
	Lat     float64
	Lon     float64
	Units   string   // metric, imperial or standard; empty means metric
	Exclude []string // optional parts to drop: current, minutely, hourly, daily, alerts
}

// WeatherCondition describes one weather condition entry.
type WeatherCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CurrentWeather holds the conditions at query time.
type CurrentWeather struct {
	Time       time.Time          `json:"time"`
	Sunrise    time.Time          `json:"sunrise"`
	Sunset     time.Time          `json:"sunset"`
	Temp       float64            `json:"temp"`
	FeelsLike  float64            `json:"feels_like"`
	Pressure   int                `json:"pressure"`
	Humidity   int                `json:"humidity"`
	DewPoint   float64            `json:"dew_point"`
	UVI        float64            `json:"uvi"`
	Clouds     int                `json:"clouds"`
	Visibility int                `json:"visibility"`
	WindSpeed  float64            `json:"wind_speed"`
	WindDeg    int                `json:"wind_deg"`
	WindGust   float64            `json:"wind_gust"`
	Conditions []WeatherCondition `json:"conditions"`
}

// Condition returns the primary condition, if any.
func (c CurrentWeather) Condition() (WeatherCondition, bool) {
	if len(c.Conditions) == 0 {
		return WeatherCondition{}, false
	}
	return c.Conditions[0], true
}

// HourlyWeather is one point of the hourly series.
type HourlyWeather struct {
	Time       time.Time          `json:"time"`
	Temp       float64            `json:"temp"`
	FeelsLike  float64            `json:"feels_like"`
	Humidity   int                `json:"humidity"`
	WindSpeed  float64            `json:"wind_speed"`
	Pop        float64            `json:"pop"`
	Conditions []WeatherCondition `json:"conditions"`
}

// DailyTemperature is the temperature breakdown of one day.
type DailyTemperature struct {
	Day   float64 `json:"day"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`
}

// DailyWeather is one point of the daily series.
type DailyWeather struct {
	Time       time.Time          `json:"time"`
	Summary    string             `json:"summary,omitempty"`
	Temp       *DailyTemperature  `json:"temp,omitempty"`
	Humidity   int                `json:"humidity"`
	WindSpeed  float64            `json:"wind_speed"`
	Pop        float64            `json:"pop"`
	Rain       float64            `json:"rain"`
	Conditions []WeatherCondition `json:"conditions"`
}

// WeatherAlert is a government weather alert for the queried area.
type WeatherAlert struct {
	Sender      string    `json:"sender"`
	Event       string    `json:"event"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags,omitempty"`
}

// WeatherQueryResult is the payload of a successful forecast lookup.
// Every section is optional; a nil Current or an empty series is valid.
type WeatherQueryResult struct {
	Lat            float64         `json:"lat"`
	Lon            float64         `json:"lon"`
	Timezone       string          `json:"timezone"`
	TimezoneOffset int             `json:"timezone_offset"`
	Current        *CurrentWeather `json:"current,omitempty"`
	Hourly         []HourlyWeather `json:"hourly,omitempty"`
	Daily          []DailyWeather  `json:"daily,omitempty"`
	Alerts         []WeatherAlert  `json:"alerts,omitempty"`
}

// LocationCandidate is one geocoding match. Candidates have no id; two
// entries with the same name are told apart by Country and State.
type LocationCandidate struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
}

// DisplayName renders the candidate as "Name, State, Country".
func (l LocationCandidate) DisplayName() string {
	name := l.Name
	if l.State != "" {
		name += ", " + l.State
	}
	if l.Country != "" {
		name += ", " + l.Country
	}
	return name
}

// Place is a saved location.
type Place struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Country   string    `json:"country"`
	State     string    `json:"state,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPlace represents data for creating a new saved place.
type NewPlace struct {
	Name    string
	Lat     float64
	Lon     float64
	Country string
	State   string
}

// PlaceFromCandidate converts a search match into a place to save.
func PlaceFromCandidate(c LocationCandidate) NewPlace {
	return NewPlace{
		Name:    c.Name,
		Lat:     c.Lat,
		Lon:     c.Lon,
		Country: c.Country,
		State:   c.State,
	}
}

// DisplayName renders the place as "Name, State, Country".
func (p Place) DisplayName() string {
	return LocationCandidate{Name: p.Name, Country: p.Country, State: p.State}.DisplayName()
}
