// Package cmd wires configuration, services and the nimbus entry points.
package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"nimbus/internal/config"
	"nimbus/internal/db"
	"nimbus/internal/locate"
	"nimbus/internal/logging"
	"nimbus/internal/model"
	"nimbus/internal/repository"
	"nimbus/internal/ui"
	"nimbus/internal/viewstate"
	"nimbus/internal/weather"
)

var exampleUsage = strings.TrimSpace(`
  nimbus --api-key <openweather-key>
  nimbus --units imperial --home-city Austin --home-country US
  nimbus serve --listen 127.0.0.1:8080
`)

// options holds flag state shared by every command.
type options struct {
	cfg     config.Config
	cfgPath string
	homeLat float64
	homeLon float64
	changed map[string]bool
}

// Execute runs the nimbus command line.
func Execute(version string) error {
	opts := &options{cfg: config.DefaultConfig()}

	root := &cobra.Command{
		Use:           "nimbus",
		Short:         "Weather in your terminal",
		Long:          "nimbus shows current conditions and a 7-day forecast from OpenWeather.",
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", version, runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.load(cmd, true); err != nil {
				return err
			}
			return runTUI(opts)
		},
	}

	bindFlags(root.PersistentFlags(), opts)
	root.AddCommand(newServeCommand(opts))

	return root.Execute()
}

func bindFlags(fs *pflag.FlagSet, o *options) {
	c := &o.cfg
	fs.StringVar(&o.cfgPath, "config", "", "Path to config file (default: ~/.nimbus/config.toml)")
	fs.StringVar(&c.APIKey, "api-key", c.APIKey, "OpenWeather API key (or NIMBUS_API_KEY / OPENWEATHER_API_KEY)")
	fs.StringVar(&c.BaseURL, "base-url", c.BaseURL, "One Call API base URL")
	fs.StringVar(&c.GeoURL, "geo-url", c.GeoURL, "Geocoding API base URL")
	fs.StringVar(&c.IconURL, "icon-url", c.IconURL, "Condition icon URL pattern")
	fs.StringVar(&c.Units, "units", c.Units, "Units: metric, imperial or standard")
	fs.StringSliceVar(&c.Exclude, "exclude", c.Exclude, "Forecast parts to skip: current, minutely, hourly, daily, alerts")
	fs.DurationVar(&c.HTTPTimeout, "timeout", c.HTTPTimeout, "Timeout for each upstream request")
	fs.IntVar(&c.SearchLimit, "search-limit", c.SearchLimit, "Number of location search results (1-5)")
	fs.StringVar(&c.HomeCity, "home-city", "", "Home city used as the current location")
	fs.StringVar(&c.HomeState, "home-state", "", "Home state or region")
	fs.StringVar(&c.HomeCountry, "home-country", "", "Home country")
	fs.Float64Var(&o.homeLat, "home-lat", 0, "Home latitude (skips geocoding)")
	fs.Float64Var(&o.homeLon, "home-lon", 0, "Home longitude (skips geocoding)")
	fs.StringVar(&c.GeocodingKey, "geocoding-key", "", "Google Geocoding API key for the home address")
	fs.BoolVar(&c.ASCIIIcons, "ascii-icons", c.ASCIIIcons, "Draw condition icons as ASCII art")
	fs.StringVar(&c.DBPath, "db", c.DBPath, "Path to SQLite database file")
	fs.StringVar(&c.LogPath, "log-file", c.LogPath, "Log file used while the TUI runs")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: trace, debug, info, warn, error")
	fs.StringVar(&c.Listen, "listen", c.Listen, "Address for nimbus serve")
}

// load layers the config file, environment and flags, then validates.
// Flags win over the environment, which wins over the file.
func (o *options) load(cmd *cobra.Command, interactive bool) error {
	loadDotEnv(".env", ".env.local")

	o.changed = map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { o.changed[f.Name] = true })
	if o.changed["home-lat"] {
		lat := o.homeLat
		o.cfg.HomeLat = &lat
	}
	if o.changed["home-lon"] {
		lon := o.homeLon
		o.cfg.HomeLon = &lon
	}

	if path := o.configPath(); config.FileExists(path) {
		fc, err := config.LoadFileConfig(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := config.ApplyFileConfig(&o.cfg, fc, o.changed); err != nil {
			return err
		}
	}
	if err := config.ApplyEnvConfig(&o.cfg, o.changed); err != nil {
		return err
	}

	if o.cfg.APIKey == "" {
		key, err := resolveAPIKey(config.DefaultDir(), interactive)
		if err != nil {
			return err
		}
		o.cfg.APIKey = key
	}

	return o.cfg.Validate()
}

func (o *options) configPath() string {
	if o.cfgPath != "" {
		return o.cfgPath
	}
	return config.DefaultConfigPath()
}

// loadDotEnv reads each file that exists. Values already in the environment
// are kept, and earlier files win over later ones.
func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if config.FileExists(p) {
			_ = godotenv.Load(p)
		}
	}
}

// services are the long-lived collaborators shared by the TUI and the API.
type services struct {
	client  *weather.Client
	repo    *repository.Repository
	db      *sql.DB
	locator *locate.Locator
}

func newServices(cfg config.Config, log zerolog.Logger) (*services, error) {
	client := weather.NewClient(weather.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		GeoURL:  cfg.GeoURL,
		IconURL: cfg.IconURL,
		Timeout: cfg.HTTPTimeout,
	})

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	home := locate.Home{City: cfg.HomeCity, State: cfg.HomeState, Country: cfg.HomeCountry}
	if cfg.HasHomeCoords() {
		home.Lat, home.Lon, home.HasCoords = *cfg.HomeLat, *cfg.HomeLon, true
	}

	return &services{
		client:  client,
		repo:    repository.New(client, repository.WithLogger(log), repository.WithSearchLimit(cfg.SearchLimit)),
		db:      database,
		locator: locate.New(home, cfg.GeocodingKey, locate.WithLogger(log)),
	}, nil
}

func (s *services) Close() error {
	return s.db.Close()
}

func runTUI(o *options) error {
	cfg := o.cfg

	log := zerolog.Nop()
	if cfg.LogPath != "" {
		fileLog, closer, err := logging.NewFile(cfg.LogPath, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer closer.Close()
		log = fileLog
	}
	log.Info().Interface("config", cfg.Redacted()).Msg("configuration")

	svc, err := newServices(cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	initial := viewstate.DefaultRequest()
	initial.Units = cfg.Units

	weatherHolder := viewstate.NewWeatherHolder(svc.repo,
		viewstate.WithExclude(cfg.Exclude),
		viewstate.WithInitialRequest(initial),
		viewstate.WithWeatherLogger(log),
	)
	defer weatherHolder.Close()
	searchHolder := viewstate.NewSearchHolder(svc.repo)
	defer searchHolder.Close()

	var icons ui.IconFetcher
	if cfg.ASCIIIcons {
		icons = svc.client
	}

	m := ui.New(ui.Options{
		DB:        svc.db,
		Weather:   weatherHolder,
		Search:    searchHolder,
		Locator:   svc.locator,
		Icons:     icons,
		TermCaps:  ui.DetectTerminalCapabilities(),
		PrefsPath: ui.PrefsPath(config.DefaultDir()),
		Log:       log,
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if path := o.configPath(); config.FileExists(path) {
		w := config.NewWatcher(path, log, func(fc config.FileConfig) {
			if o.changed["units"] {
				return
			}
			units := strings.ToLower(strings.TrimSpace(fc.Units))
			switch units {
			case model.UnitsMetric, model.UnitsImperial, model.UnitsStandard:
				p.Send(model.ConfigReloadedMsg{Units: units})
			}
		})
		go func() {
			if err := w.Run(ctx); err != nil {
				log.Warn().Err(err).Msg("config watcher stopped")
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
