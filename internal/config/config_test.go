package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"homewidgets/internal/presenter"
	"homewidgets/internal/widget"

	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with none of the overrides set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{
		"WIDGETS_STOP_ID",
		"WIDGETS_KVG_ENDPOINT",
		"WIDGETS_PRODUCT_URL",
		"WIDGETS_TIMEZONE",
		"WIDGETS_HISTORY_FILE",
		"WIDGETS_EXTRACTOR",
		"WIDGETS_HTTP_TIMEOUT",
	} {
		// Setenv restores the variable after the test, Unsetenv makes it look
		// like it was never set.
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	require.Equal(t, "1643", cfg.Departures.StopID)
	require.Equal(t, presenter.DefaultDepartureLayout, cfg.Departures.Layout())
	require.Equal(t, presenter.DefaultPriceLayout, cfg.Prices.Layout())
	require.Len(t, cfg.Prices.Logos, 5)
	require.Equal(t, "CookiesEnabled=1; PersistentCookiesEnabled=1; YpiLocation2=latitude=54,35&longitude=10,12&perimeter=5&address=Kiel;", cfg.Prices.SearchLocation().Cookie())

	theme, err := cfg.Prices.Colors.Theme(presenter.PriceTheme)
	require.NoError(t, err)
	require.Equal(t, presenter.PriceTheme, theme)
}

func TestLoadMissingFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, DefaultPath)

	cfg, err := Load(path, true)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	_, err = Load(path, false)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadJSON5(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "widgets.json5")
	writeFile(t, path, `{
		// a different stop
		departures: {
			stop_id: "2001",
			max_entries: 4,
			colors: {background: "#101010", text: "#EEEEEE", primary: "#FFFFFF", secondary: "#FFFFFF", error: "#FF0000"},
		},
		prices: {
			extractor: "dom",
			logos: {Penny: "https://logos/penny.png"},
		},
	}`)
	writeFile(t, filepath.Join(dir, "widgets.local.json5"), `{
		timezone: "UTC",
		departures: {max_entries: 3},
	}`)

	cfg, err := Load(path, false)
	require.NoError(t, err)

	require.Equal(t, "2001", cfg.Departures.StopID)
	require.Equal(t, 3, cfg.Departures.MaxEntries)
	require.Equal(t, "UTC", cfg.Timezone)
	require.Equal(t, "dom", cfg.Prices.Extractor)
	// a logos map in the file replaces the defaults
	require.Len(t, cfg.Prices.Logos, 1)
	require.Equal(t, "https://logos/penny.png", cfg.Prices.Logos["Penny"])
	// untouched values keep their defaults
	require.Equal(t, 14, cfg.Departures.DestinationWidth)

	theme, err := cfg.Departures.Colors.Theme(presenter.DepartureTheme)
	require.NoError(t, err)
	require.Equal(t, widget.MustParseColor("#101010"), theme.Background)
	require.Equal(t, "Menlo", theme.LineFont.Name)
}

func TestLoadYAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "widgets.yml")
	writeFile(t, path, `
http_timeout: 5s
prices:
  respect_robots: true
  location:
    address: Flensburg
  history:
    file: history.db
telemetry:
  otlp:
    traces:
      http_endpoint: localhost:4318
`)

	cfg, err := Load(path, false)
	require.NoError(t, err)
	require.Equal(t, "5s", cfg.HttpTimeout)
	require.Equal(t, 5*time.Second, cfg.Timeout())
	require.True(t, cfg.Prices.RespectRobots)
	require.Equal(t, "Flensburg", cfg.Prices.Location.Address)
	require.Equal(t, "54,35", cfg.Prices.Location.Latitude)
	require.Equal(t, "history.db", cfg.Prices.History.File)
	require.True(t, cfg.Telemetry.Otlp.Traces.Enabled())
	require.False(t, cfg.Telemetry.Otlp.Metrics.Enabled())
}

func TestLoadEnv(t *testing.T) {
	isolate(t)
	t.Setenv("WIDGETS_STOP_ID", "3003")
	t.Setenv("WIDGETS_EXTRACTOR", "dom")
	t.Setenv("WIDGETS_TIMEZONE", "America/New_York")

	cfg, err := Load("", true)
	require.NoError(t, err)
	require.Equal(t, "3003", cfg.Departures.StopID)
	require.Equal(t, "dom", cfg.Prices.Extractor)
	require.Equal(t, "America/New_York", cfg.Timezone)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "WIDGETS_HISTORY_FILE=prices.db\nWIDGETS_HTTP_TIMEOUT=10s\n")

	cfg, err := Load("", true)
	require.NoError(t, err)
	require.Equal(t, "prices.db", cfg.Prices.History.File)
	require.Equal(t, "10s", cfg.HttpTimeout)
}

func TestLoadInvalid(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		val  string
	}{
		{name: "stop id", key: "WIDGETS_STOP_ID", val: "hbf"},
		{name: "extractor", key: "WIDGETS_EXTRACTOR", val: "xpath"},
		{name: "timezone", key: "WIDGETS_TIMEZONE", val: "Mars/Olympus"},
		{name: "endpoint", key: "WIDGETS_KVG_ENDPOINT", val: "not a url"},
		{name: "timeout", key: "WIDGETS_HTTP_TIMEOUT", val: "soon"},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(test.key, test.val)

			_, err := Load("", true)
			require.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestValidateColors(t *testing.T) {
	cfg := Default()
	cfg.Prices.Colors.Primary = "#07F"
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.Departures.MaxEntries = 0
	require.Error(t, Validate(cfg))
}

func TestLoadFindsConfigInParent(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, DefaultPath), `{ departures: { stop_id: "1999" } }`)
	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(nested, 0777))
	t.Chdir(nested)

	cfg, err := Load(DefaultPath, true)
	require.NoError(t, err)
	require.Equal(t, "1999", cfg.Departures.StopID)
}

func TestLoadZeroValuesOverrideDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "widgets.json5")
	writeFile(t, path, `{ prices: { max_entries: 0, logos: {}, respect_robots: true } }`)
	writeFile(t, filepath.Join(dir, "widgets.local.json5"), `{ prices: { respect_robots: false } }`)

	cfg, err := Load(path, false)
	require.NoError(t, err)
	require.Equal(t, 0, cfg.Prices.MaxEntries)
	require.Equal(t, 0, cfg.Prices.Layout().MaxEntries)
	require.Empty(t, cfg.Prices.Logos)
	require.False(t, cfg.Prices.RespectRobots)
	require.Equal(t, presenter.DefaultPriceLayout.PriceWidth, cfg.Prices.PriceWidth)
}
