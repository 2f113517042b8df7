package weather

import (
	"time"

	"nimbus/internal/model"
)

// API response types

type errorResponse struct {
	Message string `json:"message"`
}

type oneCallResponse struct {
	Lat            float64       `json:"lat"`
	Lon            float64       `json:"lon"`
	Timezone       string        `json:"timezone"`
	TimezoneOffset int           `json:"timezone_offset"`
	Current        *currentBlock `json:"current"`
	Hourly         []hourlyBlock `json:"hourly"`
	Daily          []dailyBlock  `json:"daily"`
	Alerts         []alertBlock  `json:"alerts"`
}

type conditionBlock struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type currentBlock struct {
	Dt         int64            `json:"dt"`
	Sunrise    int64            `json:"sunrise"`
	Sunset     int64            `json:"sunset"`
	Temp       float64          `json:"temp"`
	FeelsLike  float64          `json:"feels_like"`
	Pressure   int              `json:"pressure"`
	Humidity   int              `json:"humidity"`
	DewPoint   float64          `json:"dew_point"`
	UVI        float64          `json:"uvi"`
	Clouds     int              `json:"clouds"`
	Visibility int              `json:"visibility"`
	WindSpeed  float64          `json:"wind_speed"`
	WindDeg    int              `json:"wind_deg"`
	WindGust   float64          `json:"wind_gust"`
	Weather    []conditionBlock `json:"weather"`
}

type hourlyBlock struct {
	Dt        int64            `json:"dt"`
	Temp      float64          `json:"temp"`
	FeelsLike float64          `json:"feels_like"`
	Humidity  int              `json:"humidity"`
	WindSpeed float64          `json:"wind_speed"`
	Pop       float64          `json:"pop"`
	Weather   []conditionBlock `json:"weather"`
}

type dailyTempBlock struct {
	Day   float64 `json:"day"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`
}

type dailyBlock struct {
	Dt        int64            `json:"dt"`
	Summary   string           `json:"summary"`
	Temp      *dailyTempBlock  `json:"temp"`
	Humidity  int              `json:"humidity"`
	WindSpeed float64          `json:"wind_speed"`
	Pop       float64          `json:"pop"`
	Rain      float64          `json:"rain"`
	Weather   []conditionBlock `json:"weather"`
}

type alertBlock struct {
	SenderName  string   `json:"sender_name"`
	Event       string   `json:"event"`
	Start       int64    `json:"start"`
	End         int64    `json:"end"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type geoLocation struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func toConditions(blocks []conditionBlock) []model.WeatherCondition {
	if len(blocks) == 0 {
		return nil
	}
	out := make([]model.WeatherCondition, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, model.WeatherCondition{
			ID:          b.ID,
			Main:        b.Main,
			Description: b.Description,
			Icon:        b.Icon,
		})
	}
	return out
}

func (r oneCallResponse) toModel() model.WeatherQueryResult {
	result := model.WeatherQueryResult{
		Lat:            r.Lat,
		Lon:            r.Lon,
		Timezone:       r.Timezone,
		TimezoneOffset: r.TimezoneOffset,
	}

	if c := r.Current; c != nil {
		result.Current = &model.CurrentWeather{
			Time:       unixTime(c.Dt),
			Sunrise:    unixTime(c.Sunrise),
			Sunset:     unixTime(c.Sunset),
			Temp:       c.Temp,
			FeelsLike:  c.FeelsLike,
			Pressure:   c.Pressure,
			Humidity:   c.Humidity,
			DewPoint:   c.DewPoint,
			UVI:        c.UVI,
			Clouds:     c.Clouds,
			Visibility: c.Visibility,
			WindSpeed:  c.WindSpeed,
			WindDeg:    c.WindDeg,
			WindGust:   c.WindGust,
			Conditions: toConditions(c.Weather),
		}
	}

	if len(r.Hourly) > 0 {
		result.Hourly = make([]model.HourlyWeather, 0, len(r.Hourly))
		for _, h := range r.Hourly {
			result.Hourly = append(result.Hourly, model.HourlyWeather{
				Time:       unixTime(h.Dt),
				Temp:       h.Temp,
				FeelsLike:  h.FeelsLike,
				Humidity:   h.Humidity,
				WindSpeed:  h.WindSpeed,
				Pop:        h.Pop,
				Conditions: toConditions(h.Weather),
			})
		}
	}

	if len(r.Daily) > 0 {
		result.Daily = make([]model.DailyWeather, 0, len(r.Daily))
		for _, d := range r.Daily {
			day := model.DailyWeather{
				Time:       unixTime(d.Dt),
				Summary:    d.Summary,
				Humidity:   d.Humidity,
				WindSpeed:  d.WindSpeed,
				Pop:        d.Pop,
				Rain:       d.Rain,
				Conditions: toConditions(d.Weather),
			}
			if d.Temp != nil {
				day.Temp = &model.DailyTemperature{
					Day:   d.Temp.Day,
					Min:   d.Temp.Min,
					Max:   d.Temp.Max,
					Night: d.Temp.Night,
					Eve:   d.Temp.Eve,
					Morn:  d.Temp.Morn,
				}
			}
			result.Daily = append(result.Daily, day)
		}
	}

	if len(r.Alerts) > 0 {
		result.Alerts = make([]model.WeatherAlert, 0, len(r.Alerts))
		for _, a := range r.Alerts {
			result.Alerts = append(result.Alerts, model.WeatherAlert{
				Sender:      a.SenderName,
				Event:       a.Event,
				Start:       unixTime(a.Start),
				End:         unixTime(a.End),
				Description: a.Description,
				Tags:        a.Tags,
			})
		}
	}

	return result
}

func (g geoLocation) toModel() model.LocationCandidate {
	return model.LocationCandidate{
		Name:    g.Name,
		Lat:     g.Lat,
		Lon:     g.Lon,
		Country: g.Country,
		State:   g.State,
	}
}
