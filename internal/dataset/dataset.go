// Package dataset loads the rows a grid displays.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/gridstate/internal/log"
)

// Row is one record. Nested objects are reachable with dotted properties.
type Row map[string]any

// Get resolves a property such as "address.city". ok is false when any
// segment is missing.
func Get(r Row, property string) (any, bool) {
	var cur any = map[string]any(r)
	for _, seg := range strings.Split(property, ".") {
		m, isMap := asMap(cur)
		if !isMap {
			return nil, false
		}
		v, ok := m[seg]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Row:
		return m, true
	}
	return nil, false
}

// Properties lists the top-level properties of rows in order of first
// appearance, each row's own keys sorted.
func Properties(rows []Row) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		keys := make([]string, 0, len(r))
		for k := range r {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)
		for _, k := range keys {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// Load reads a JSON or YAML array of objects. The format follows the file
// extension; anything other than .yaml/.yml is read as JSON.
func Load(path string) ([]Row, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from config or flags
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	rows, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	log.Debug(log.CatItems, "Loaded dataset", "path", path, "rows", len(rows))
	return rows, nil
}

// Parse decodes rows; ext selects YAML for ".yaml" and ".yml".
func Parse(data []byte, ext string) ([]Row, error) {
	var rows []Row
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rows); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, err
		}
	}
	return rows, nil
}
