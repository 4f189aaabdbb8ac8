// Package config assembles the configuration of both widgets from compiled in
// defaults, an optional config file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"homewidgets/internal/kvg"
	"homewidgets/internal/presenter"
	"homewidgets/internal/widget"
	"homewidgets/internal/youpickit"
	"homewidgets/lib/configutil"
	configsqlite "homewidgets/lib/configutil/sqlite"
	"homewidgets/lib/telemetry"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultPath is read when no config file is given explicitly.
const DefaultPath = "widgets.json5"

// EnvPrefix prefixes every environment override, ex. WIDGETS_STOP_ID.
const EnvPrefix = "widgets"

type ColorsConfig struct {
	Background string `json:"background" yaml:"background" validate:"required,hexcolor,len=7"`
	Text       string `json:"text" yaml:"text" validate:"required,hexcolor,len=7"`
	Primary    string `json:"primary" yaml:"primary" validate:"required,hexcolor,len=7"`
	Secondary  string `json:"secondary" yaml:"secondary" validate:"required,hexcolor,len=7"`
	Error      string `json:"error" yaml:"error" validate:"required,hexcolor,len=7"`
}

func colorsOf(theme presenter.Theme) ColorsConfig {
	return ColorsConfig{
		Background: theme.Background.Hex,
		Text:       theme.Text.Hex,
		Primary:    theme.Primary.Hex,
		Secondary:  theme.Secondary.Hex,
		Error:      theme.Error.Hex,
	}
}

// Theme returns base with its colors replaced by the configured ones.
func (c ColorsConfig) Theme(base presenter.Theme) (presenter.Theme, error) {
	targets := []struct {
		hex string
		out *widget.Color
	}{
		{c.Background, &base.Background},
		{c.Text, &base.Text},
		{c.Primary, &base.Primary},
		{c.Secondary, &base.Secondary},
		{c.Error, &base.Error},
	}
	for _, t := range targets {
		color, err := widget.ParseColor(t.hex)
		if err != nil {
			return presenter.Theme{}, err
		}
		*t.out = color
	}
	return base, nil
}

type DeparturesConfig struct {
	StopID           string       `json:"stop_id" yaml:"stop_id" validate:"required,numeric"`
	Endpoint         string       `json:"endpoint" yaml:"endpoint" validate:"required,url"`
	MaxEntries       int          `json:"max_entries" yaml:"max_entries" validate:"gte=1,lte=50"`
	LineWidth        int          `json:"line_width" yaml:"line_width" validate:"gte=1"`
	DestinationWidth int          `json:"destination_width" yaml:"destination_width" validate:"gte=1"`
	TimeWidth        int          `json:"time_width" yaml:"time_width" validate:"gte=1"`
	Colors           ColorsConfig `json:"colors" yaml:"colors"`
}

func (c DeparturesConfig) Layout() presenter.DepartureLayout {
	return presenter.DepartureLayout{
		LineWidth:        c.LineWidth,
		DestinationWidth: c.DestinationWidth,
		TimeWidth:        c.TimeWidth,
		MaxEntries:       c.MaxEntries,
	}
}

type LocationConfig struct {
	Latitude  string `json:"latitude" yaml:"latitude" validate:"required"`
	Longitude string `json:"longitude" yaml:"longitude" validate:"required"`
	// Perimeter is in kilometers.
	Perimeter string `json:"perimeter" yaml:"perimeter" validate:"required,numeric"`
	Address   string `json:"address" yaml:"address" validate:"required"`
}

type PricesConfig struct {
	ProductURL string            `json:"product_url" yaml:"product_url" validate:"required,url"`
	Location   LocationConfig    `json:"location" yaml:"location"`
	Logos      map[string]string `json:"logos" yaml:"logos" validate:"dive,keys,required,endkeys,url"`
	Extractor  string            `json:"extractor" yaml:"extractor" validate:"oneof=regex dom"`

	RespectRobots    bool `json:"respect_robots" yaml:"respect_robots"`
	BypassCloudflare bool `json:"bypass_cloudflare" yaml:"bypass_cloudflare"`

	PriceWidth   int `json:"price_width" yaml:"price_width" validate:"gte=1"`
	AddressWidth int `json:"address_width" yaml:"address_width" validate:"gte=2"`
	MaxEntries   int `json:"max_entries" yaml:"max_entries" validate:"gte=0,lte=20"`

	Colors ColorsConfig `json:"colors" yaml:"colors"`

	// History is optional, every run is recorded when History.File is set.
	History configsqlite.Struct `json:"history" yaml:"history"`
}

func (c PricesConfig) Layout() presenter.PriceLayout {
	return presenter.PriceLayout{
		PriceWidth:   c.PriceWidth,
		AddressWidth: c.AddressWidth,
		MaxEntries:   c.MaxEntries,
	}
}

func (c PricesConfig) SearchLocation() youpickit.Location {
	return youpickit.Location{
		Latitude:  c.Location.Latitude,
		Longitude: c.Location.Longitude,
		Perimeter: c.Location.Perimeter,
		Address:   c.Location.Address,
	}
}

type Config struct {
	// Timezone is an IANA name, it decides the time shown in the footers.
	Timezone    string           `json:"timezone" yaml:"timezone" validate:"required,timezone"`
	HttpTimeout string           `json:"http_timeout" yaml:"http_timeout" validate:"required,duration"`
	Departures  DeparturesConfig `json:"departures" yaml:"departures"`
	Prices      PricesConfig     `json:"prices" yaml:"prices"`
	Telemetry   telemetry.Config `json:"telemetry" yaml:"telemetry"`
}

func (c Config) Timeout() time.Duration {
	timeout, err := time.ParseDuration(c.HttpTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return timeout
}

func Default() Config {
	return Config{
		Timezone:    "Europe/Berlin",
		HttpTimeout: "30s",
		Departures: DeparturesConfig{
			StopID:           "1643",
			Endpoint:         kvg.DefaultEndpoint,
			MaxEntries:       presenter.DefaultDepartureLayout.MaxEntries,
			LineWidth:        presenter.DefaultDepartureLayout.LineWidth,
			DestinationWidth: presenter.DefaultDepartureLayout.DestinationWidth,
			TimeWidth:        presenter.DefaultDepartureLayout.TimeWidth,
			Colors:           colorsOf(presenter.DepartureTheme),
		},
		Prices: PricesConfig{
			ProductURL: youpickit.DefaultProductURL,
			Location: LocationConfig{
				Latitude:  "54,35",
				Longitude: "10,12",
				Perimeter: "5",
				Address:   "Kiel",
			},
			Logos: map[string]string{
				"Netto":     "https://upload.wikimedia.org/wikipedia/commons/thumb/c/c5/Netto_logo.svg/594px-Netto_logo.svg.png",
				"Rewe":      "https://upload.wikimedia.org/wikipedia/commons/thumb/4/4c/Logo_REWE.svg/320px-Logo_REWE.svg.png",
				"Edeka":     "https://upload.wikimedia.org/wikipedia/de/thumb/9/97/Edeka-wez-logo-2023.svg/320px-Edeka-wez-logo-2023.svg.png",
				"Aldi Nord": "https://upload.wikimedia.org/wikipedia/commons/thumb/2/2c/Aldi_Nord_201x_logo.svg/230px-Aldi_Nord_201x_logo.svg.png",
				"Lidl":      "https://upload.wikimedia.org/wikipedia/commons/thumb/9/91/Lidl-Logo.svg/240px-Lidl-Logo.svg.png",
			},
			Extractor:    youpickit.ExtractorRegex,
			PriceWidth:   presenter.DefaultPriceLayout.PriceWidth,
			AddressWidth: presenter.DefaultPriceLayout.AddressWidth,
			MaxEntries:   presenter.DefaultPriceLayout.MaxEntries,
			Colors:       colorsOf(presenter.PriceTheme),
		},
	}
}

type env struct {
	StopID      string `envconfig:"STOP_ID"`
	KvgEndpoint string `envconfig:"KVG_ENDPOINT"`
	ProductURL  string `envconfig:"PRODUCT_URL"`
	Timezone    string `envconfig:"TIMEZONE"`
	HistoryFile string `envconfig:"HISTORY_FILE"`
	Extractor   string `envconfig:"EXTRACTOR"`
	HttpTimeout string `envconfig:"HTTP_TIMEOUT"`
}

func (e env) apply(c *Config) {
	overrides := []struct {
		value string
		out   *string
	}{
		{e.StopID, &c.Departures.StopID},
		{e.KvgEndpoint, &c.Departures.Endpoint},
		{e.ProductURL, &c.Prices.ProductURL},
		{e.Timezone, &c.Timezone},
		{e.HistoryFile, &c.Prices.History.File},
		{e.Extractor, &c.Prices.Extractor},
		{e.HttpTimeout, &c.HttpTimeout},
	}
	for _, o := range overrides {
		if o.value != "" {
			*o.out = o.value
		}
	}
}

// Load merges the following, later sources win:
// 1. the defaults
// 2. the config file at path and its .local variant
// 3. the environment, with a .env file in the working directory loaded first
//
// A missing config file is only an error when optional is false. An optional
// bare file name is also looked up in the parent directories.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()

	if path != "" {
		fileCfg, err := readFile(path, optional, cfg)
		switch {
		case errors.Is(err, os.ErrNotExist) && optional:
			slog.Debug("no config file found, using defaults", "path", path)
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			cfg = fileCfg
		}
	}

	err := godotenv.Load()
	if err != nil {
		if _, statErr := os.Stat(".env"); statErr == nil {
			slog.Warn(".env file found but could not be loaded", "err", err)
		}
	}

	var overrides env
	err = envconfig.Process(EnvPrefix, &overrides)
	if err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	overrides.apply(&cfg)

	err = Validate(cfg)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, optional bool, base Config) (Config, error) {
	if !optional || filepath.Base(path) != path {
		return configutil.ReadConfig(path, base)
	}
	cfg, found, err := configutil.Find(path, base)
	if err == nil {
		slog.Debug("using config file", "path", found)
	}
	return cfg, err
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d > 0
	})
	if err != nil {
		panic(err)
	}
	return v
}

var validate = newValidator()

func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
