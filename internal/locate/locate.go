// Package locate resolves the user's home location.
package locate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"nimbus/internal/model"

	"github.com/kelvins/geocoder"
	"github.com/rs/zerolog"
)

// ErrNoHomeLocation is returned when neither a home address nor home
// coordinates are configured.
var ErrNoHomeLocation = errors.New("no home location configured")

// Home is the configured home location.
type Home struct {
	City    string
	State   string
	Country string

	// Lat and Lon are used as-is when HasCoords is set.
	Lat       float64
	Lon       float64
	HasCoords bool
}

func (h Home) hasAddress() bool {
	return strings.TrimSpace(h.City) != ""
}

// GeocodeFunc turns an address into coordinates.
type GeocodeFunc func(ctx context.Context, h Home) (lat, lon float64, err error)

// Locator geocodes the home address once and remembers the answer.
type Locator struct {
	home    Home
	geocode GeocodeFunc
	log     zerolog.Logger

	mu     sync.Mutex
	cached *model.Place
}

// Option configures a Locator.
type Option func(*Locator)

// WithGeocoder replaces the geocoding backend.
func WithGeocoder(fn GeocodeFunc) Option {
	return func(l *Locator) { l.geocode = fn }
}

// WithLogger sets the locator logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Locator) { l.log = log }
}

// New creates a Locator for home. apiKey is the Google Geocoding key; without
// one the address is never geocoded and only configured coordinates are used.
func New(home Home, apiKey string, opts ...Option) *Locator {
	l := &Locator{home: home, log: zerolog.Nop()}
	if apiKey != "" {
		l.geocode = googleGeocoder(apiKey)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate returns the home place.
func (l *Locator) Locate(ctx context.Context) (model.Place, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cached != nil {
		return *l.cached, nil
	}

	place := model.Place{Name: l.home.City, State: l.home.State, Country: l.home.Country}
	switch {
	case l.home.HasCoords:
		place.Lat, place.Lon = l.home.Lat, l.home.Lon
	case l.home.hasAddress() && l.geocode != nil:
		lat, lon, err := l.geocode(ctx, l.home)
		if err != nil {
			return model.Place{}, fmt.Errorf("geocode %q: %w", place.DisplayName(), err)
		}
		place.Lat, place.Lon = lat, lon
		l.log.Debug().Str("home", place.DisplayName()).Float64("lat", lat).Float64("lon", lon).Msg("geocoded home location")
	default:
		return model.Place{}, ErrNoHomeLocation
	}

	l.cached = &place
	return place, nil
}

var geocoderMu sync.Mutex

// googleGeocoder uses the package-level key of kelvins/geocoder, so calls are
// serialized.
func googleGeocoder(apiKey string) GeocodeFunc {
	return func(ctx context.Context, h Home) (float64, float64, error) {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}
		geocoderMu.Lock()
		defer geocoderMu.Unlock()

		geocoder.ApiKey = apiKey
		loc, err := geocoder.Geocoding(geocoder.Address{
			City:    h.City,
			State:   h.State,
			Country: h.Country,
		})
		if err != nil {
			return 0, 0, err
		}
		return loc.Latitude, loc.Longitude, nil
	}
}
