package viewstate

import (
	"context"
	"errors"

	"nimbus/internal/model"
	"nimbus/internal/resource"

	"github.com/rs/zerolog"
)

// Default location used until the user picks one.
const (
	DefaultLat      = -26.2041
	DefaultLon      = 28.0473
	DefaultCityName = "Johannesburg, South Africa"
)

// errNoLocator is logged when current location is asked for without a
// locator.
var errNoLocator = errors.New("viewstate: no locator configured")

// WeatherSource issues forecast reads.
type WeatherSource interface {
	GetWeather(ctx context.Context, q model.WeatherQuery) <-chan resource.Resource[model.WeatherQueryResult]
}

// Locator resolves the user's current location.
type Locator interface {
	Locate(ctx context.Context) (model.Place, error)
}

// WeatherRequest is the last forecast request. Retry re-issues it.
type WeatherRequest struct {
	Lat      float64
	Lon      float64
	CityName string
	Units    string
}

// Query converts the request into a client query.
func (r WeatherRequest) Query() model.WeatherQuery {
	return model.WeatherQuery{Lat: r.Lat, Lon: r.Lon, Units: r.Units}
}

// DefaultRequest is the request used before any location is chosen.
func DefaultRequest() WeatherRequest {
	return WeatherRequest{
		Lat:      DefaultLat,
		Lon:      DefaultLon,
		CityName: DefaultCityName,
		Units:    model.UnitsMetric,
	}
}

// WeatherState is the forecast screen state.
type WeatherState struct {
	Request   WeatherRequest
	IsLoading bool
	Weather   *model.WeatherQueryResult
	Error     string
}

// WeatherHolder owns the forecast state.
type WeatherHolder struct {
	*holder[WeatherState]
	source  WeatherSource
	exclude []string
	log     zerolog.Logger
}

// WeatherOption configures a WeatherHolder.
type WeatherOption func(*WeatherHolder)

// WithExclude drops forecast sections from every request.
func WithExclude(parts []string) WeatherOption {
	return func(h *WeatherHolder) { h.exclude = append([]string(nil), parts...) }
}

// WithInitialRequest sets the request Retry uses before anything else ran.
func WithInitialRequest(r WeatherRequest) WeatherOption {
	return func(h *WeatherHolder) { h.holder.state.Request = r }
}

// WithWeatherLogger sets the holder logger.
func WithWeatherLogger(l zerolog.Logger) WeatherOption {
	return func(h *WeatherHolder) { h.log = l }
}

// NewWeatherHolder creates a holder reading from source.
func NewWeatherHolder(source WeatherSource, opts ...WeatherOption) *WeatherHolder {
	h := &WeatherHolder{
		holder: newHolder(WeatherState{Request: DefaultRequest()}),
		source: source,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetWeather requests the forecast for a coordinate, keeping the current
// unit system.
func (h *WeatherHolder) GetWeather(lat, lon float64, cityName string) {
	h.fetch(func(last WeatherRequest) WeatherRequest {
		return WeatherRequest{Lat: lat, Lon: lon, CityName: cityName, Units: last.Units}
	})
}

// Retry re-issues the last request.
func (h *WeatherHolder) Retry() {
	h.fetch(func(last WeatherRequest) WeatherRequest { return last })
}

// SetUnits re-issues the last request in another unit system.
func (h *WeatherHolder) SetUnits(units string) {
	if h.State().Request.Units == units {
		return
	}
	h.fetch(func(last WeatherRequest) WeatherRequest {
		last.Units = units
		return last
	})
}

// CurrentLocationWeather asks the locator for the current location and
// requests its forecast. When the location is unknown it falls back to the
// last request.
//
// The lookup counts as the current request: it starts loading at once, and
// a request issued while the locator is still working replaces it.
func (h *WeatherHolder) CurrentLocationWeather(ctx context.Context, loc Locator) {
	reqCtx, seq, ok := h.begin(func(s WeatherState) WeatherState {
		return WeatherState{Request: s.Request, IsLoading: true}
	})
	if !ok {
		return
	}

	var (
		place model.Place
		err   = errNoLocator
	)
	if loc != nil {
		lookupCtx, cancel := context.WithCancel(ctx)
		stop := context.AfterFunc(reqCtx, cancel)
		place, err = loc.Locate(lookupCtx)
		stop()
		cancel()
	}
	if err != nil {
		h.log.Debug().Err(err).Msg("current location unavailable, using last location")
	}

	var req WeatherRequest
	current := h.apply(seq, func(s WeatherState) WeatherState {
		req = s.Request
		if err == nil {
			req.Lat, req.Lon, req.CityName = place.Lat, place.Lon, place.DisplayName()
			if req.CityName == "" {
				req.CityName = "Current Location"
			}
		}
		if req.Units == "" {
			req.Units = model.UnitsMetric
		}
		s.Request = req
		return s
	})
	if !current {
		h.wg.Done()
		h.log.Debug().Msg("current location superseded by a newer request")
		return
	}
	h.query(reqCtx, seq, req)
}

// fetch starts a request built from the last one. next runs under the
// holder lock, so it sees the request that is current at that moment.
func (h *WeatherHolder) fetch(next func(last WeatherRequest) WeatherRequest) {
	var req WeatherRequest
	ctx, seq, ok := h.begin(func(s WeatherState) WeatherState {
		req = next(s.Request)
		if req.Units == "" {
			req.Units = model.UnitsMetric
		}
		s.Request = req
		return s
	})
	if !ok {
		return
	}
	h.query(ctx, seq, req)
}

// query sends req to the source and folds its sequence. seq must come
// from begin.
func (h *WeatherHolder) query(ctx context.Context, seq uint64, req WeatherRequest) {
	q := req.Query()
	q.Exclude = h.exclude
	follow(h.holder, seq, h.source.GetWeather(ctx, q), foldWeather)
}

func foldWeather(s WeatherState, r resource.Resource[model.WeatherQueryResult]) WeatherState {
	switch v := r.(type) {
	case resource.Loading[model.WeatherQueryResult]:
		return WeatherState{Request: s.Request, IsLoading: true}
	case resource.Success[model.WeatherQueryResult]:
		data := v.Data
		return WeatherState{Request: s.Request, Weather: &data}
	case resource.Error[model.WeatherQueryResult]:
		return WeatherState{Request: s.Request, Error: v.Message}
	}
	return s
}
