package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nimbus/internal/model"

	"github.com/sony/gobreaker"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/3.0"
	DefaultGeoURL  = "https://api.openweathermap.org/geo/1.0"
	DefaultIconURL = "https://openweathermap.org/img/wn/%s@2x.png"

	// DefaultTimeout bounds every request made by the client.
	DefaultTimeout = 10 * time.Second

	// DefaultSearchLimit is the number of geocoding candidates requested.
	DefaultSearchLimit = 5
)

// Config holds client settings. Zero values fall back to the defaults.
type Config struct {
	APIKey     string
	BaseURL    string
	GeoURL     string
	IconURL    string
	Timeout    time.Duration
	HTTPClient *http.Client

	// BreakerThreshold is the number of consecutive upstream failures that
	// open the breaker. Zero means 5.
	BreakerThreshold uint32
	// BreakerCooldown is how long the breaker stays open. Zero means 30s.
	BreakerCooldown time.Duration
}

// Client wraps the OpenWeather One Call and geocoding APIs.
// It is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	geoURL     string
	iconURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a new OpenWeather client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.GeoURL == "" {
		cfg.GeoURL = DefaultGeoURL
	}
	if cfg.IconURL == "" {
		cfg.IconURL = DefaultIconURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.BreakerThreshold == 0 {
		cfg.BreakerThreshold = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	threshold := cfg.BreakerThreshold
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		geoURL:     strings.TrimRight(cfg.GeoURL, "/"),
		iconURL:    cfg.IconURL,
		httpClient: cfg.HTTPClient,
		breaker:    cb,
	}
}

// FetchWeather fetches current conditions plus hourly and daily forecasts for
// a coordinate. Missing sections in the response are not an error.
func (c *Client) FetchWeather(ctx context.Context, q model.WeatherQuery) (model.WeatherQueryResult, error) {
	units := q.Units
	if units == "" {
		units = model.UnitsMetric
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(q.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(q.Lon, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", units)
	if len(q.Exclude) > 0 {
		params.Set("exclude", strings.Join(q.Exclude, ","))
	}

	reqURL := fmt.Sprintf("%s/onecall?%s", c.baseURL, params.Encode())

	var resp oneCallResponse
	if err := c.getJSON(ctx, "fetch weather", reqURL, &resp); err != nil {
		return model.WeatherQueryResult{}, err
	}
	return resp.toModel(), nil
}

// SearchLocations geocodes a free-text query. Results keep the service's
// order and are never de-duplicated. A limit <= 0 means DefaultSearchLimit.
func (c *Client) SearchLocations(ctx context.Context, query string, limit int) ([]model.LocationCandidate, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("appid", c.apiKey)

	reqURL := fmt.Sprintf("%s/direct?%s", c.geoURL, params.Encode())

	var results []geoLocation
	if err := c.getJSON(ctx, "search locations", reqURL, &results); err != nil {
		return []model.LocationCandidate{}, err
	}

	candidates := make([]model.LocationCandidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, r.toModel())
	}
	return candidates, nil
}

// FetchIcon downloads the PNG for a condition icon code such as "10d".
func (c *Client) FetchIcon(ctx context.Context, code string) (image.Image, error) {
	if code == "" {
		return nil, fmt.Errorf("fetch icon: empty icon code")
	}
	reqURL := fmt.Sprintf(c.iconURL, url.PathEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch icon: request creation failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "fetch icon", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServiceError{StatusCode: resp.StatusCode}
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch icon: decode image: %w", err)
	}
	return img, nil
}

// getJSON runs one GET through the breaker and decodes the body into out.
// Only transport failures and 5xx responses count against the breaker;
// a cancelled caller never does.
func (c *Client) getJSON(ctx context.Context, op, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%s: request creation failed: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	var callErr error
	_, err = c.breaker.Execute(func() (interface{}, error) {
		callErr = c.do(req, op, out)
		if countsAsFailure(ctx, callErr) {
			return nil, callErr
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errBreakerOpen
	}
	return callErr
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServiceError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty body on a 2xx is an empty result.
			return nil
		}
		return fmt.Errorf("%s: JSON decode error: %w", op, err)
	}
	return nil
}

func countsAsFailure(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	if IsTransport(err) {
		return true
	}
	if se, ok := AsService(err); ok {
		return se.StatusCode >= 500
	}
	return false
}

// readErrorMessage pulls the "message" field out of an error body such as
// {"cod":401,"message":"Invalid API key"}.
func readErrorMessage(body io.Reader) string {
	var e errorResponse
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&e); err != nil {
		return ""
	}
	return strings.TrimSpace(e.Message)
}
