// Package config provides configuration types and defaults for gridstate.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/gridstate/internal/filter"
	"github.com/zjrosen/gridstate/internal/log"
	"github.com/zjrosen/gridstate/internal/tracing"
)

// ColumnConfig defines one displayed column and the filter bound to it.
type ColumnConfig struct {
	Name     string   `mapstructure:"name" yaml:"name"`
	Property string   `mapstructure:"property" yaml:"property"`       // dotted path into a row, e.g. address.city
	Filter   string   `mapstructure:"filter" yaml:"filter,omitempty"` // filter kind; empty = string, "none" = no filter
	Values   []string `mapstructure:"values" yaml:"values,omitempty"` // options for list and color filters
	Width    int      `mapstructure:"width" yaml:"width,omitempty"`   // max cell width; 0 = renderer default
}

// NoFilter disables filtering on a column.
const NoFilter = "none"

// SortConfig is the sort applied when no view or flag overrides it.
type SortConfig struct {
	By      string `mapstructure:"by" yaml:"by,omitempty"`
	Reverse bool   `mapstructure:"reverse" yaml:"reverse,omitempty"`
}

// CacheConfig tunes the displayed-order cache.
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl" yaml:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
}

// WatchConfig tunes the dataset file watcher.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// LogConfig controls the debug log.
type LogConfig struct {
	Path  string `mapstructure:"path" yaml:"path,omitempty"`
	Level string `mapstructure:"level" yaml:"level,omitempty"`
}

// Config holds all configuration options for gridstate.
type Config struct {
	DataFile    string         `mapstructure:"data_file" yaml:"data_file,omitempty"`
	ViewsDB     string         `mapstructure:"views_db" yaml:"views_db,omitempty"`
	PageSize    int            `mapstructure:"page_size" yaml:"page_size"` // 0 shows every row
	Columns     []ColumnConfig `mapstructure:"columns" yaml:"columns,omitempty"`
	DefaultSort SortConfig     `mapstructure:"default_sort" yaml:"default_sort,omitempty"`
	Cache       CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Watch       WatchConfig    `mapstructure:"watch" yaml:"watch"`
	Tracing     tracing.Config `mapstructure:"tracing" yaml:"tracing"`
	Log         LogConfig      `mapstructure:"log" yaml:"log,omitempty"`
}

// DefaultViewsDBPath returns ~/.config/gridstate/views.db, or views.db in
// the working directory when the home directory is unavailable.
func DefaultViewsDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "views.db"
	}
	return filepath.Join(home, ".config", "gridstate", "views.db")
}

// DefaultTracesFilePath returns ~/.config/gridstate/traces/traces.jsonl or
// empty string if the home dir is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gridstate", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		ViewsDB:  DefaultViewsDBPath(),
		PageSize: 20,
		Cache: CacheConfig{
			TTL:             10 * time.Minute,
			CleanupInterval: 30 * time.Minute,
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
		Tracing: tracing.DefaultConfig(),
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Kind returns the filter kind bound to the column. ok is false for
// NoFilter.
func (c ColumnConfig) Kind() (kind filter.Kind, ok bool, err error) {
	switch c.Filter {
	case NoFilter:
		return "", false, nil
	case "":
		return filter.KindString, true, nil
	}
	kind, err = filter.ParseKind(c.Filter)
	if err != nil {
		return "", false, err
	}
	return kind, true, nil
}

// Title is the header shown for the column.
func (c ColumnConfig) Title() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Property
}

// FilterState returns the inactive initial state of the column's filter.
// Non-string filters are identified by the column title.
func (c ColumnConfig) FilterState() (filter.State, bool) {
	kind, ok, err := c.Kind()
	if err != nil || !ok {
		return filter.State{}, false
	}
	s := filter.State{Kind: kind, Property: c.Property}
	if kind != filter.KindString {
		s.ID = c.Title()
	}
	switch kind {
	case filter.KindList:
		s.Values = append([]string(nil), c.Values...)
	case filter.KindColor:
		s.AllColors = append([]string(nil), c.Values...)
	}
	return s, true
}

// ColumnsFor derives one string-filtered column per property.
func ColumnsFor(properties []string) []ColumnConfig {
	cols := make([]ColumnConfig, 0, len(properties))
	for _, p := range properties {
		cols = append(cols, ColumnConfig{Name: p, Property: p})
	}
	return cols
}

// ValidateColumns checks column configuration for errors.
// Returns nil if columns are empty (derived from the dataset).
func ValidateColumns(cols []ColumnConfig) error {
	seen := make(map[string]int, len(cols))
	for i, col := range cols {
		if col.Property == "" {
			return fmt.Errorf("column %d: property is required", i)
		}
		title := col.Title()
		if j, dup := seen[title]; dup {
			return fmt.Errorf("column %d: duplicate column %q (also column %d)", i, title, j)
		}
		seen[title] = i

		kind, ok, err := col.Kind()
		if err != nil {
			return fmt.Errorf("column %d (%s): %w", i, title, err)
		}
		if ok && kind == filter.KindColor && len(col.Values) == 0 {
			return fmt.Errorf("column %d (%s): color filter needs values", i, title)
		}
		if col.Width < 0 {
			return fmt.Errorf("column %d (%s): width must be >= 0", i, title)
		}
	}
	return nil
}

// ValidateSort checks the default sort against the configured columns.
func ValidateSort(s SortConfig, cols []ColumnConfig) error {
	if s.By == "" {
		if s.Reverse {
			return errors.New("default_sort: reverse requires by")
		}
		return nil
	}
	if len(cols) == 0 {
		return nil
	}
	for _, col := range cols {
		if col.Property == s.By {
			return nil
		}
	}
	return fmt.Errorf("default_sort: %q is not a column property", s.By)
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(t tracing.Config) error {
	if !t.Enabled {
		return nil
	}
	switch t.Exporter {
	case "", tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
	default:
		return fmt.Errorf("tracing.exporter must be one of none, file, stdout, otlp (got %q)", t.Exporter)
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0 (got %v)", t.SampleRate)
	}
	return nil
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if c.PageSize < 0 {
		return fmt.Errorf("page_size must be >= 0 (got %d)", c.PageSize)
	}
	if err := ValidateColumns(c.Columns); err != nil {
		return err
	}
	if err := ValidateSort(c.DefaultSort, c.Columns); err != nil {
		return err
	}
	if c.Cache.TTL < 0 || c.Cache.CleanupInterval < 0 {
		return errors.New("cache durations must be >= 0")
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		return err
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
	log.Debug(log.CatConfig, "Config valid", "columns", len(c.Columns), "page_size", c.PageSize)
	return nil
}

// TracingConfig returns the tracing settings with the file path defaulted.
func (c Config) TracingConfig() tracing.Config {
	t := c.Tracing
	if t.Exporter == tracing.ExporterFile && t.FilePath == "" {
		t.FilePath = DefaultTracesFilePath()
	}
	return t
}
