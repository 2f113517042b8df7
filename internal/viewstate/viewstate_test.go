package viewstate

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"sync"
	"testing"
	"time"

	"nimbus/internal/model"
	"nimbus/internal/repository"
	"nimbus/internal/resource"
	"nimbus/internal/weather"
)

// countingClient is a DataClient with canned answers.
type countingClient struct {
	mu sync.Mutex

	weather     model.WeatherQueryResult
	weatherErrs []error // consumed in order; nil entries succeed
	locations   []model.LocationCandidate
	searchErr   error

	weatherCalls int
	searchCalls  int
	lastQuery    model.WeatherQuery
}

func (c *countingClient) FetchWeather(ctx context.Context, q model.WeatherQuery) (model.WeatherQueryResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.weatherCalls++
	c.lastQuery = q
	if len(c.weatherErrs) > 0 {
		err := c.weatherErrs[0]
		c.weatherErrs = c.weatherErrs[1:]
		if err != nil {
			return model.WeatherQueryResult{}, err
		}
	}
	return c.weather, nil
}

func (c *countingClient) SearchLocations(ctx context.Context, query string, limit int) ([]model.LocationCandidate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchCalls++
	return c.locations, c.searchErr
}

func (c *countingClient) calls() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weatherCalls, c.searchCalls
}

// manualSource hands out channels the test feeds by hand.
type manualSource struct {
	mu      sync.Mutex
	weather []manualCall[model.WeatherQueryResult]
	search  []manualCall[[]model.LocationCandidate]
}

type manualCall[T any] struct {
	ctx   context.Context
	query string
	q     model.WeatherQuery
	ch    chan resource.Resource[T]
}

func (m *manualSource) GetWeather(ctx context.Context, q model.WeatherQuery) <-chan resource.Resource[model.WeatherQueryResult] {
	ch := make(chan resource.Resource[model.WeatherQueryResult], 2)
	m.mu.Lock()
	m.weather = append(m.weather, manualCall[model.WeatherQueryResult]{ctx: ctx, q: q, ch: ch})
	m.mu.Unlock()
	return ch
}

func (m *manualSource) SearchLocations(ctx context.Context, query string) <-chan resource.Resource[[]model.LocationCandidate] {
	ch := make(chan resource.Resource[[]model.LocationCandidate], 2)
	m.mu.Lock()
	m.search = append(m.search, manualCall[[]model.LocationCandidate]{ctx: ctx, query: query, ch: ch})
	m.mu.Unlock()
	return ch
}

func (m *manualSource) weatherCall(i int) manualCall[model.WeatherQueryResult] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.weather[i]
}

func (m *manualSource) searchCall(i int) manualCall[[]model.LocationCandidate] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.search[i]
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func fixedResult() model.WeatherQueryResult {
	return model.WeatherQueryResult{
		Lat:      51.5,
		Lon:      -0.12,
		Timezone: "Europe/London",
		Current: &model.CurrentWeather{
			Temp:       14.2,
			Humidity:   70,
			WindSpeed:  3.5,
			Conditions: []model.WeatherCondition{{ID: 801, Main: "Clouds", Icon: "02d"}},
		},
		Hourly: []model.HourlyWeather{{Temp: 14.2}, {Temp: 15.0}},
	}
}

func TestWeatherHolderSuccess(t *testing.T) {
	result := fixedResult()
	client := &countingClient{weather: result}
	h := NewWeatherHolder(repository.New(client))
	defer h.Close()

	h.GetWeather(51.5, -0.12, "London, England, GB")
	h.Wait()

	s := h.State()
	if s.IsLoading {
		t.Error("IsLoading = true, want false")
	}
	if s.Error != "" {
		t.Errorf("Error = %q, want empty", s.Error)
	}
	if s.Weather == nil || !reflect.DeepEqual(*s.Weather, result) {
		t.Fatalf("Weather = %+v, want %+v", s.Weather, result)
	}
	want := WeatherRequest{Lat: 51.5, Lon: -0.12, CityName: "London, England, GB", Units: model.UnitsMetric}
	if s.Request != want {
		t.Errorf("Request = %+v, want %+v", s.Request, want)
	}
}

func TestWeatherHolderErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"transport", &weather.TransportError{Op: "fetch weather", Err: errors.New("no route to host")}, repository.MsgConnectivity},
		{"service", &weather.ServiceError{StatusCode: http.StatusNotFound, Message: "Not Found"}, "Not Found"},
		{"service generic", &weather.ServiceError{StatusCode: http.StatusBadGateway}, repository.MsgUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &countingClient{weatherErrs: []error{tt.err}}
			h := NewWeatherHolder(repository.New(client))
			defer h.Close()

			h.GetWeather(1, 2, "Somewhere")
			h.Wait()

			s := h.State()
			if s.IsLoading {
				t.Error("IsLoading = true")
			}
			if s.Error != tt.want {
				t.Errorf("Error = %q, want %q", s.Error, tt.want)
			}
			if s.Weather != nil {
				t.Errorf("Weather = %+v, want nil", s.Weather)
			}
		})
	}
}

func TestWeatherHolderLoadingClearsPayload(t *testing.T) {
	src := &manualSource{}
	h := NewWeatherHolder(src)
	defer h.Close()

	h.GetWeather(1, 1, "First")
	first := src.weatherCall(0)
	first.ch <- resource.Loading[model.WeatherQueryResult]{}
	first.ch <- resource.Success[model.WeatherQueryResult]{Data: fixedResult()}
	close(first.ch)
	h.Wait()

	h.GetWeather(2, 2, "Second")
	second := src.weatherCall(1)
	second.ch <- resource.Loading[model.WeatherQueryResult]{}

	eventually(t, func() bool { return h.State().IsLoading })
	s := h.State()
	if s.Weather != nil || s.Error != "" {
		t.Fatalf("loading state = %+v, want cleared payload and error", s)
	}
	if s.Request.CityName != "Second" {
		t.Fatalf("Request.CityName = %q, want Second", s.Request.CityName)
	}
	close(second.ch)
}

func TestWeatherHolderDropsStaleResponse(t *testing.T) {
	src := &manualSource{}
	h := NewWeatherHolder(src)
	defer h.Close()

	h.GetWeather(1, 1, "Old")
	h.GetWeather(2, 2, "New")

	old := src.weatherCall(0)
	cur := src.weatherCall(1)

	if old.ctx.Err() == nil {
		t.Fatal("first request context not cancelled by the second request")
	}
	if cur.ctx.Err() != nil {
		t.Fatal("current request context cancelled")
	}

	newer := model.WeatherQueryResult{Timezone: "new"}
	cur.ch <- resource.Loading[model.WeatherQueryResult]{}
	cur.ch <- resource.Success[model.WeatherQueryResult]{Data: newer}
	close(cur.ch)

	// The older response lands last and must be ignored.
	old.ch <- resource.Loading[model.WeatherQueryResult]{}
	old.ch <- resource.Success[model.WeatherQueryResult]{Data: model.WeatherQueryResult{Timezone: "old"}}
	close(old.ch)

	h.Wait()
	s := h.State()
	if s.Weather == nil || s.Weather.Timezone != "new" {
		t.Fatalf("Weather = %+v, want the newer response", s.Weather)
	}
	if s.Request.CityName != "New" {
		t.Fatalf("Request.CityName = %q, want New", s.Request.CityName)
	}
}

func TestWeatherHolderRetryAfterError(t *testing.T) {
	src := &manualSource{}
	h := NewWeatherHolder(src)
	defer h.Close()

	h.GetWeather(-33.92, 18.42, "Cape Town")
	first := src.weatherCall(0)
	first.ch <- resource.Loading[model.WeatherQueryResult]{}
	first.ch <- resource.Error[model.WeatherQueryResult]{Message: repository.MsgConnectivity}
	close(first.ch)
	h.Wait()

	if got := h.State().Error; got != repository.MsgConnectivity {
		t.Fatalf("Error = %q", got)
	}

	updates, unsubscribe := h.Subscribe()
	defer unsubscribe()
	<-updates // current state

	h.Retry()
	retry := src.weatherCall(1)
	if retry.q.Lat != -33.92 || retry.q.Lon != 18.42 {
		t.Fatalf("retry query = %+v, want the last coordinates", retry.q)
	}

	retry.ch <- resource.Loading[model.WeatherQueryResult]{}
	eventually(t, func() bool { return h.State().IsLoading })
	if h.State().Error != "" {
		t.Fatalf("Error = %q while loading, want empty", h.State().Error)
	}

	retry.ch <- resource.Success[model.WeatherQueryResult]{Data: fixedResult()}
	close(retry.ch)
	h.Wait()

	s := h.State()
	if s.IsLoading || s.Error != "" || s.Weather == nil {
		t.Fatalf("state after retry = %+v", s)
	}
	if s.Request.CityName != "Cape Town" {
		t.Fatalf("Request.CityName = %q", s.Request.CityName)
	}

	var last WeatherState
	eventually(t, func() bool {
		select {
		case last = <-updates:
		default:
		}
		return last.Weather != nil
	})
}

func TestWeatherHolderRetryWithRepository(t *testing.T) {
	client := &countingClient{
		weather:     fixedResult(),
		weatherErrs: []error{&weather.TransportError{Op: "fetch weather", Err: errors.New("offline")}},
	}
	h := NewWeatherHolder(repository.New(client))
	defer h.Close()

	h.GetWeather(10, 20, "Nairobi")
	h.Wait()
	if h.State().Error == "" {
		t.Fatal("expected error after first request")
	}

	h.Retry()
	h.Wait()

	s := h.State()
	if s.Error != "" || s.Weather == nil {
		t.Fatalf("state after retry = %+v", s)
	}
	if calls, _ := client.calls(); calls != 2 {
		t.Fatalf("weather calls = %d, want 2", calls)
	}
	if client.lastQuery.Lat != 10 || client.lastQuery.Lon != 20 {
		t.Fatalf("retry query = %+v", client.lastQuery)
	}
}

func TestWeatherHolderRetryBeforeAnyRequestUsesDefault(t *testing.T) {
	client := &countingClient{weather: fixedResult()}
	h := NewWeatherHolder(repository.New(client))
	defer h.Close()

	h.Retry()
	h.Wait()

	if client.lastQuery.Lat != DefaultLat || client.lastQuery.Lon != DefaultLon {
		t.Fatalf("query = %+v, want default location", client.lastQuery)
	}
	if h.State().Request.CityName != DefaultCityName {
		t.Fatalf("CityName = %q", h.State().Request.CityName)
	}
}

func TestWeatherHolderSetUnits(t *testing.T) {
	client := &countingClient{weather: fixedResult()}
	h := NewWeatherHolder(repository.New(client), WithExclude([]string{"minutely"}))
	defer h.Close()

	h.GetWeather(1, 2, "X")
	h.Wait()
	h.SetUnits(model.UnitsImperial)
	h.Wait()

	if client.lastQuery.Units != model.UnitsImperial {
		t.Fatalf("Units = %q, want imperial", client.lastQuery.Units)
	}
	if !reflect.DeepEqual(client.lastQuery.Exclude, []string{"minutely"}) {
		t.Fatalf("Exclude = %v", client.lastQuery.Exclude)
	}
	if h.State().Request.Units != model.UnitsImperial {
		t.Fatalf("Request.Units = %q", h.State().Request.Units)
	}

	h.SetUnits(model.UnitsImperial)
	h.Wait()
	if calls, _ := client.calls(); calls != 2 {
		t.Fatalf("weather calls = %d, want 2", calls)
	}
}

type fakeLocator struct {
	place model.Place
	err   error
}

func (f fakeLocator) Locate(ctx context.Context) (model.Place, error) {
	return f.place, f.err
}

func TestCurrentLocationWeather(t *testing.T) {
	tests := []struct {
		name     string
		locator  Locator
		wantLat  float64
		wantCity string
	}{
		{"located", fakeLocator{place: model.Place{Name: "Durban", Country: "ZA", Lat: -29.85, Lon: 31.02}}, -29.85, "Durban, ZA"},
		{"unknown location falls back", fakeLocator{err: errors.New("no home")}, DefaultLat, DefaultCityName},
		{"no locator", nil, DefaultLat, DefaultCityName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &countingClient{weather: fixedResult()}
			h := NewWeatherHolder(repository.New(client))
			defer h.Close()

			h.CurrentLocationWeather(context.Background(), tt.locator)
			h.Wait()

			if client.lastQuery.Lat != tt.wantLat {
				t.Errorf("Lat = %v, want %v", client.lastQuery.Lat, tt.wantLat)
			}
			if got := h.State().Request.CityName; got != tt.wantCity {
				t.Errorf("CityName = %q, want %q", got, tt.wantCity)
			}
		})
	}
}

// gatedLocator blocks in Locate until released or cancelled.
type gatedLocator struct {
	place   model.Place
	started chan struct{}
	release chan struct{}
}

func newGatedLocator(place model.Place) *gatedLocator {
	return &gatedLocator{place: place, started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedLocator) Locate(ctx context.Context) (model.Place, error) {
	close(g.started)
	select {
	case <-g.release:
		return g.place, nil
	case <-ctx.Done():
		return model.Place{}, ctx.Err()
	}
}

func (m *manualSource) weatherCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.weather)
}

func TestCurrentLocationWeatherYieldsToNewerRequest(t *testing.T) {
	src := &manualSource{}
	h := NewWeatherHolder(src, WithInitialRequest(WeatherRequest{Lat: 1, Lon: 2, CityName: "Home", Units: model.UnitsImperial}))
	defer h.Close()

	loc := newGatedLocator(model.Place{Name: "Durban", Lat: -29.85, Lon: 31.02})
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.CurrentLocationWeather(context.Background(), loc)
	}()

	<-loc.started
	if !h.State().IsLoading {
		t.Fatal("IsLoading = false while the location lookup runs")
	}

	h.GetWeather(51.5, -0.12, "London")
	close(loc.release)
	<-done

	if n := src.weatherCalls(); n != 1 {
		t.Fatalf("weather calls = %d, want only the London request", n)
	}
	london := src.weatherCall(0)
	if london.q.Lat != 51.5 || london.q.Units != model.UnitsImperial {
		t.Fatalf("query = %+v, want London in imperial", london.q)
	}
	london.ch <- resource.Loading[model.WeatherQueryResult]{}
	london.ch <- resource.Success[model.WeatherQueryResult]{Data: fixedResult()}
	close(london.ch)
	h.Wait()

	s := h.State()
	if s.Request.CityName != "London" || s.Request.Lat != 51.5 {
		t.Fatalf("Request = %+v, want London", s.Request)
	}
	if s.IsLoading || s.Weather == nil {
		t.Fatalf("state = %+v, want London loaded", s)
	}
}

func TestCloseCancelsLocationLookup(t *testing.T) {
	src := &manualSource{}
	h := NewWeatherHolder(src)

	loc := newGatedLocator(model.Place{Name: "Durban"})
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.CurrentLocationWeather(context.Background(), loc)
	}()

	<-loc.started
	h.Close()
	<-done

	if n := src.weatherCalls(); n != 0 {
		t.Fatalf("weather calls = %d after Close, want 0", n)
	}
}

func TestGetWeatherKeepsUnitsSetConcurrently(t *testing.T) {
	client := &countingClient{weather: fixedResult()}
	h := NewWeatherHolder(repository.New(client))
	defer h.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.GetWeather(float64(i), 0, "Spot")
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.SetUnits(model.UnitsImperial)
	}()
	wg.Wait()
	h.Wait()

	if got := h.State().Request.Units; got != model.UnitsImperial {
		t.Fatalf("Request.Units = %q, want imperial", got)
	}
}

func TestSearchShortQueryShortCircuits(t *testing.T) {
	for _, q := range []string{"", "L", "Lo", "  Lo  ", "日本"} {
		t.Run(q, func(t *testing.T) {
			client := &countingClient{}
			h := NewSearchHolder(repository.New(client))
			defer h.Close()

			h.Search(q)
			h.Wait()

			s := h.State()
			if s.Locations == nil || len(s.Locations) != 0 {
				t.Errorf("Locations = %#v, want empty", s.Locations)
			}
			if s.Error != "" || s.IsLoading {
				t.Errorf("state = %+v", s)
			}
			if s.SearchQuery != q {
				t.Errorf("SearchQuery = %q, want %q", s.SearchQuery, q)
			}
			if _, calls := client.calls(); calls != 0 {
				t.Errorf("search calls = %d, want 0", calls)
			}
		})
	}
}

func TestSearchKeepsDuplicatesInOrder(t *testing.T) {
	london := []model.LocationCandidate{
		{Name: "London", Lat: 51.5, Lon: -0.12, Country: "GB", State: "England"},
		{Name: "London", Lat: 42.98, Lon: -81.24, Country: "CA", State: "Ontario"},
	}
	client := &countingClient{locations: london}
	h := NewSearchHolder(repository.New(client))
	defer h.Close()

	h.Search("London")
	h.Wait()

	s := h.State()
	if !reflect.DeepEqual(s.Locations, london) {
		t.Fatalf("Locations = %+v, want %+v", s.Locations, london)
	}
	if s.SearchQuery != "London" || s.Error != "" || s.IsLoading {
		t.Fatalf("state = %+v", s)
	}
}

func TestSearchErrorKeepsLocations(t *testing.T) {
	src := &manualSource{}
	h := NewSearchHolder(src)
	defer h.Close()

	paris := []model.LocationCandidate{{Name: "Paris", Country: "FR"}}
	h.Search("Paris")
	c := src.searchCall(0)
	c.ch <- resource.Loading[[]model.LocationCandidate]{}
	c.ch <- resource.Success[[]model.LocationCandidate]{Data: paris}
	close(c.ch)
	h.Wait()

	h.Search("Parisx")
	c = src.searchCall(1)
	c.ch <- resource.Loading[[]model.LocationCandidate]{}
	c.ch <- resource.Error[[]model.LocationCandidate]{Message: "Not Found"}
	close(c.ch)
	h.Wait()

	s := h.State()
	if s.Error != "Not Found" || s.IsLoading {
		t.Fatalf("state = %+v", s)
	}
	if !reflect.DeepEqual(s.Locations, paris) {
		t.Fatalf("Locations = %+v, want previous results", s.Locations)
	}
	if s.SearchQuery != "Parisx" {
		t.Fatalf("SearchQuery = %q", s.SearchQuery)
	}
}

func TestSearchShortQueryCancelsInFlight(t *testing.T) {
	src := &manualSource{}
	h := NewSearchHolder(src)
	defer h.Close()

	h.Search("Berlin")
	inflight := src.searchCall(0)
	h.Search("Be")

	if inflight.ctx.Err() == nil {
		t.Fatal("in-flight search not cancelled")
	}
	inflight.ch <- resource.Loading[[]model.LocationCandidate]{}
	inflight.ch <- resource.Success[[]model.LocationCandidate]{Data: []model.LocationCandidate{{Name: "Berlin"}}}
	close(inflight.ch)
	h.Wait()

	s := h.State()
	if len(s.Locations) != 0 || s.SearchQuery != "Be" {
		t.Fatalf("state = %+v, want reset short-query state", s)
	}
}

func TestSearchClear(t *testing.T) {
	client := &countingClient{locations: []model.LocationCandidate{{Name: "Lagos", Country: "NG"}}}
	h := NewSearchHolder(repository.New(client))
	defer h.Close()

	h.Search("Lagos")
	h.Wait()
	h.Clear()

	if s := h.State(); !reflect.DeepEqual(s, SearchState{}) {
		t.Fatalf("state = %+v, want zero", s)
	}
}

func TestSubscribeAndClose(t *testing.T) {
	client := &countingClient{weather: fixedResult()}
	h := NewWeatherHolder(repository.New(client))

	updates, unsubscribe := h.Subscribe()
	defer unsubscribe()

	initial := <-updates
	if initial.Request != DefaultRequest() {
		t.Fatalf("initial Request = %+v", initial.Request)
	}

	h.GetWeather(1, 2, "Y")
	h.Wait()
	h.Close()

	var last WeatherState
	for s := range updates {
		last = s
	}
	if last.Weather == nil {
		t.Fatalf("last published state = %+v, want loaded weather", last)
	}

	h.GetWeather(3, 4, "Z")
	if calls, _ := client.calls(); calls != 1 {
		t.Fatalf("weather calls after Close = %d, want 1", calls)
	}
}
