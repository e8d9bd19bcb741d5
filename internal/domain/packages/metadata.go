package packages

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pelletier/go-toml/v2"
)

// Manifest is one package's metadata document. It is kept as a generic map
// so unknown fields reach the client unchanged.
type Manifest map[string]any

// Metadata file names, in lookup order.
var metadataNames = []string{"metadata.json", "metadata.yaml", "metadata.yml", "metadata.toml"}

var descriptionPolicy = bluemonday.StrictPolicy()

// Name returns the manifest's "name" field.
func (m Manifest) Name() string {
	s, _ := m["name"].(string)
	return s
}

// Groups returns the groups the package is restricted to.
func (m Manifest) Groups() []string {
	var groups []string
	switch v := m["groups"].(type) {
	case []any:
		for _, g := range v {
			if s, ok := g.(string); ok {
				groups = append(groups, s)
			}
		}
	case []string:
		groups = v
	}
	return groups
}

// VisibleTo reports whether a user in groups may see the package.
func (m Manifest) VisibleTo(groups []string) bool {
	restricted := m.Groups()
	if len(restricted) == 0 {
		return true
	}
	for _, g := range restricted {
		if slices.Contains(groups, g) {
			return true
		}
	}
	return false
}

// sanitize strips markup from the description, which is either a string or
// a map of locale to string.
func (m Manifest) sanitize() {
	switch v := m["description"].(type) {
	case string:
		m["description"] = descriptionPolicy.Sanitize(v)
	case map[string]any:
		for locale, text := range v {
			if s, ok := text.(string); ok {
				v[locale] = descriptionPolicy.Sanitize(s)
			}
		}
	}
}

// findMetadata returns the metadata file inside dir.
func findMetadata(dir string) (string, bool) {
	for _, name := range metadataNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// LoadMetadata reads the metadata file of the package in dir.
func LoadMetadata(dir string) (Manifest, error) {
	p, ok := findMetadata(dir)
	if !ok {
		return nil, fmt.Errorf("%s: %w", dir, fs.ErrNotExist)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return decodeMetadata(p, data)
}

func decodeMetadata(name string, data []byte) (Manifest, error) {
	var m map[string]any
	var err error

	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		err = sonic.Unmarshal(data, &m)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	case ".toml":
		err = toml.Unmarshal(data, &m)
	default:
		return nil, fmt.Errorf("unsupported metadata format %q", filepath.Ext(name))
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(name), err)
	}
	if m == nil {
		return nil, fmt.Errorf("parse %s: empty document", filepath.Base(name))
	}

	return Manifest(normalize(m).(map[string]any)), nil
}

// normalize turns map[any]any values produced by YAML into map[string]any
// so every decoder yields JSON-compatible trees.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	}
	return v
}

// readManifestFile reads a JSON array of manifests. A missing file is an
// empty list.
func readManifestFile(path string) ([]Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Manifest{}, nil
	}
	if err != nil {
		return nil, err
	}

	var list []Manifest
	if err := sonic.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if list == nil {
		list = []Manifest{}
	}
	return list, nil
}

// writeJSONFile replaces path atomically with the indented JSON of v.
func writeJSONFile(path string, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
