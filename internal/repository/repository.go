// Package repository turns data client calls into resource sequences.
package repository

import (
	"context"
	"strings"
	"time"

	"nimbus/internal/model"
	"nimbus/internal/resource"
	"nimbus/internal/weather"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// User-facing messages for failed reads.
const (
	MsgConnectivity = "Couldn't reach server. Check your internet connection."
	MsgUnexpected   = "An unexpected error occurred"
)

// DataClient is the network boundary the repository drives.
type DataClient interface {
	FetchWeather(ctx context.Context, q model.WeatherQuery) (model.WeatherQueryResult, error)
	SearchLocations(ctx context.Context, query string, limit int) ([]model.LocationCandidate, error)
}

// Repository wraps every client call in a Loading then Success or Error
// sequence. It owns the single client instance for the process.
type Repository struct {
	client      DataClient
	log         zerolog.Logger
	searchLimit int
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the repository logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Repository) { r.log = l }
}

// WithSearchLimit sets how many candidates a search asks for.
func WithSearchLimit(n int) Option {
	return func(r *Repository) {
		if n > 0 {
			r.searchLimit = n
		}
	}
}

// New creates a repository around client.
func New(client DataClient, opts ...Option) *Repository {
	r := &Repository{
		client:      client,
		log:         zerolog.Nop(),
		searchLimit: weather.DefaultSearchLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetWeather fetches the forecast for q. The returned channel yields Loading,
// then one terminal value, then closes.
func (r *Repository) GetWeather(ctx context.Context, q model.WeatherQuery) <-chan resource.Resource[model.WeatherQueryResult] {
	log := r.log.With().
		Str("op", "weather").
		Str("request_id", uuid.NewString()).
		Float64("lat", q.Lat).
		Float64("lon", q.Lon).
		Logger()

	return emit(ctx, log, func(ctx context.Context) (model.WeatherQueryResult, error) {
		return r.client.FetchWeather(ctx, q)
	})
}

// SearchLocations geocodes query. The returned channel yields Loading, then
// one terminal value, then closes.
func (r *Repository) SearchLocations(ctx context.Context, query string) <-chan resource.Resource[[]model.LocationCandidate] {
	log := r.log.With().
		Str("op", "search").
		Str("request_id", uuid.NewString()).
		Str("query", query).
		Logger()

	return emit(ctx, log, func(ctx context.Context) ([]model.LocationCandidate, error) {
		return r.client.SearchLocations(ctx, query, r.searchLimit)
	})
}

// emit runs call on its own goroutine. The channel has room for both values
// so the goroutine never blocks on a consumer that has gone away.
func emit[T any](ctx context.Context, log zerolog.Logger, call func(context.Context) (T, error)) <-chan resource.Resource[T] {
	out := make(chan resource.Resource[T], 2)
	out <- resource.Loading[T]{}

	go func() {
		defer close(out)
		start := time.Now()

		data, err := call(ctx)
		if err != nil {
			msg := ErrorMessage(err)
			log.Warn().Err(err).Dur("took", time.Since(start)).Str("message", msg).Msg("request failed")
			out <- resource.Error[T]{Message: msg}
			return
		}

		log.Debug().Dur("took", time.Since(start)).Msg("request succeeded")
		out <- resource.Success[T]{Data: data}
	}()

	return out
}

// ErrorMessage translates a client error into the text shown to the user.
func ErrorMessage(err error) string {
	if weather.IsTransport(err) {
		return MsgConnectivity
	}
	if se, ok := weather.AsService(err); ok {
		if msg := strings.TrimSpace(se.Message); msg != "" {
			return msg
		}
	}
	return MsgUnexpected
}
