package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/gridstate/internal/log"
)

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# gridstate configuration

# Dataset to display: a JSON or YAML array of objects.
# data_file: ./people.json

# Saved views database (default: ~/.config/gridstate/views.db)
# views_db: ./views.db

# Rows per page; 0 shows every row on one page.
page_size: 20

# Columns shown, in order. Leave empty to derive one column per property
# of the dataset.
#
# Column options:
#   name: Header text (default: property)
#   property: Dotted path into a row, e.g. address.city (required)
#   filter: string (default), list, number-interval, date-interval, color or none
#   values: Options for list and color filters
#   width: Max cell width (0 = renderer default)
#
# columns:
#   - name: Name
#     property: name
#   - name: Age
#     property: age
#     filter: number-interval
#   - name: Status
#     property: status
#     filter: list
#     values: [active, inactive, pending]
#   - name: Color
#     property: color
#     filter: color
#     values: [red, green, blue]

# Sort applied when no saved view or flag overrides it.
# default_sort:
#   by: name
#   reverse: false

# Cache of filtered and sorted row order, keyed by grid state.
cache:
  ttl: 10m
  cleanup_interval: 30m

# Dataset file watcher used by 'gridstate watch'.
watch:
  debounce: 250ms

# Tracing of state writes
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/gridstate/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Debug log (enabled with --debug or GRIDSTATE_DEBUG=1)
# log:
#   path: debug.log
#   level: debug
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

// SaveColumns replaces the columns section of the config file, creating the
// file if needed. Comments in other sections are preserved.
func SaveColumns(configPath string, columns []ColumnConfig) error {
	node, err := toNode(columns)
	if err != nil {
		return fmt.Errorf("building columns node: %w", err)
	}
	return saveKey(configPath, "columns", node)
}

// SaveDefaultSort replaces the default_sort section of the config file.
func SaveDefaultSort(configPath string, s SortConfig) error {
	node, err := toNode(s)
	if err != nil {
		return fmt.Errorf("building default_sort node: %w", err)
	}
	return saveKey(configPath, "default_sort", node)
}

// SaveDataFile sets data_file in the config file.
func SaveDataFile(configPath, dataFile string) error {
	node, err := toNode(dataFile)
	if err != nil {
		return fmt.Errorf("building data_file node: %w", err)
	}
	return saveKey(configPath, "data_file", node)
}

func toNode(v any) (*yaml.Node, error) {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return nil, err
	}
	return &node, nil
}

func saveKey(configPath, key string, value *yaml.Node) error {
	data, err := os.ReadFile(configPath) // #nosec G304 -- path from flag or default location
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level is not a mapping")
	}
	setMappingKey(doc.Content[0], key, value)

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := writeAtomic(configPath, buf.Bytes()); err != nil {
		return err
	}
	log.Debug(log.CatConfig, "Saved config section", "path", configPath, "key", key)
	return nil
}

func setMappingKey(root *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i < len(root.Content)-1; i += 2 {
		if root.Content[i].Value == key {
			root.Content[i+1] = value
			return
		}
	}
	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		value,
	)
}

// writeAtomic writes to a temp file in the same directory, then renames.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".gridstate.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
