package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testSection struct {
	Enabled bool              `json:"enabled" yaml:"enabled"`
	Headers map[string]string `json:"headers" yaml:"headers"`
}

type testConfig struct {
	Name    string            `json:"name" yaml:"name"`
	Count   int               `json:"count" yaml:"count"`
	Entries map[string]string `json:"entries" yaml:"entries"`
	Section testSection       `json:"section" yaml:"section"`
}

func testBase() testConfig {
	return testConfig{
		Name:    "default",
		Count:   3,
		Entries: map[string]string{"a": "1", "b": "2"},
		Section: testSection{
			Enabled: true,
			Headers: map[string]string{"x": "1"},
		},
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfigJson5WithLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "widgets.json5"), `{
		// comments are allowed
		name: "base",
		count: 3,
		entries: { a: "1" },
	}`)
	writeFile(t, filepath.Join(dir, "widgets.local.json5"), `{ count: 7, entries: { b: "2" } }`)

	cfg, err := ReadConfig(filepath.Join(dir, "widgets.json5"), testConfig{})
	require.NoError(t, err)
	require.Equal(t, "base", cfg.Name)
	require.Equal(t, 7, cfg.Count)
	// a map set by the local file replaces the one below it
	require.Equal(t, map[string]string{"b": "2"}, cfg.Entries)
}

func TestReadConfigYaml(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "widgets.yml"), "name: yaml\ncount: 2\n")

	cfg, err := ReadConfig(filepath.Join(dir, "widgets.yml"), testConfig{})
	require.NoError(t, err)
	require.Equal(t, testConfig{Name: "yaml", Count: 2}, cfg)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "widgets.json5"), testConfig{})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "widgets.toml"), "name = 'x'")

	_, err := ReadConfig(filepath.Join(dir, "widgets.toml"), testConfig{})
	require.Error(t, err)
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, "widgets.local.json5", LocalPath("widgets.json5"))
	require.Equal(t, filepath.Join("config", "widgets.local.yaml"), LocalPath(filepath.Join("config", "widgets.yaml")))
	require.Equal(t, "noext.local", LocalPath("noext"))
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "widgets.local.json5"), `{ name: "local" }`)

	cfg, err := ReadConfig(filepath.Join(dir, "widgets.json5"), testConfig{})
	require.NoError(t, err)
	require.Equal(t, "local", cfg.Name)
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0777))
	writeFile(t, filepath.Join(root, "widgets.json5"), `{ name: "root" }`)
	t.Chdir(nested)

	cfg, path, err := Find("widgets.json5", testConfig{})
	require.NoError(t, err)
	require.Equal(t, "root", cfg.Name)
	require.Equal(t, "widgets.json5", filepath.Base(path))

	_, _, err = Find("missing-widgets-config.json5", testConfig{})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigOverBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "widgets.json5"), `{ count: 0, entries: {}, section: { headers: { y: "2" } } }`)
	writeFile(t, filepath.Join(dir, "widgets.local.json5"), `{ section: { enabled: false } }`)

	base := testBase()
	cfg, err := ReadConfig(filepath.Join(dir, "widgets.json5"), base)
	require.NoError(t, err)
	require.Equal(t, testConfig{
		Name:    "default",
		Count:   0,
		Entries: map[string]string{},
		Section: testSection{
			Enabled: false,
			Headers: map[string]string{"y": "2"},
		},
	}, cfg)

	// the base is left untouched
	require.Equal(t, testBase(), base)
}

func TestReadConfigOverBaseYaml(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "widgets.yaml"), "count: 0\nentries: {}\nsection:\n  enabled: false\n")

	cfg, err := ReadConfig(filepath.Join(dir, "widgets.yaml"), testBase())
	require.NoError(t, err)
	require.Equal(t, 0, cfg.Count)
	require.Equal(t, "default", cfg.Name)
	require.Empty(t, cfg.Entries)
	require.False(t, cfg.Section.Enabled)
	require.Equal(t, map[string]string{"x": "1"}, cfg.Section.Headers)
}
