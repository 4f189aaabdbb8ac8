// Package configutil reads layered config files in json5 or yaml.
package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"
)

type format struct {
	// tag is the struct tag that names the keys of this format
	tag    string
	decode func(data []byte, out any) error
}

func formatOf(path string) (format, error) {
	switch ext := filepath.Ext(path); ext {
	case ".yml", ".yaml":
		return format{tag: "yaml", decode: yaml.Unmarshal}, nil
	case ".json", ".json5":
		return format{tag: "json", decode: json5.Unmarshal}, nil
	default:
		return format{}, fmt.Errorf("unsupported config format %q", ext)
	}
}

// LocalPath returns the path of the uncommitted override of a config file,
// "widgets.json5" becomes "widgets.local.json5".
func LocalPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

func keyOf(field reflect.StructField, tag string) string {
	name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
	if name == "" {
		return field.Name
	}
	return name
}

// clearMaps empties every map field of v that the layer sets, decoders merge
// into an existing map and a layer must replace it instead.
func clearMaps(v reflect.Value, layer map[string]any, tag string) {
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		key := keyOf(field, tag)
		if key == "-" {
			continue
		}
		value, ok := layer[key]
		if !ok {
			continue
		}
		switch field.Type.Kind() {
		case reflect.Map:
			v.Field(i).Set(reflect.Zero(field.Type))
		case reflect.Struct:
			nested, ok := value.(map[string]any)
			if ok {
				clearMaps(v.Field(i), nested, tag)
			}
		}
	}
}

// readLayer decodes the file at path over out, every key the file sets
// replaces the value in out, zero values included. ok is false when the file
// does not exist.
func readLayer[T any](path string, f format, out *T) (ok bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}

	var layer map[string]any
	err = f.decode(data, &layer)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	clearMaps(reflect.ValueOf(out).Elem(), layer, f.tag)

	err = f.decode(data, out)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	return true, nil
}

// ReadConfig decodes the config file at path over base, then its local
// override on top of that, see LocalPath. The extension decides the format.
// Struct sections are merged key by key, maps and everything else set in a
// file replace the value below it.
//
// It returns os.ErrNotExist when neither file exists.
func ReadConfig[T any](path string, base T) (T, error) {
	f, err := formatOf(path)
	if err != nil {
		return base, err
	}

	out := base
	found, err := readLayer(path, f, &out)
	if err != nil {
		return base, err
	}

	localPath := LocalPath(path)
	foundLocal, err := readLayer(localPath, f, &out)
	if err != nil {
		return base, err
	}
	if foundLocal {
		slog.Debug("merged local config overrides", "path", localPath)
	}

	if !found && !foundLocal {
		return base, os.ErrNotExist
	}
	return out, nil
}

// Find looks for name in the working directory and each of its parents,
// reading the first one that exists with ReadConfig.
func Find[T any](name string, base T) (T, string, error) {
	current, err := os.Getwd()
	if err != nil {
		return base, "", err
	}
	for {
		path := filepath.Join(current, name)
		cfg, err := ReadConfig(path, base)
		if err == nil {
			return cfg, path, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return base, "", err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return base, "", os.ErrNotExist
		}
		current = parent
	}
}
