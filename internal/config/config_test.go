package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/gridstate/internal/filter"
	"github.com/zjrosen/gridstate/internal/tracing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, 20, cfg.PageSize)
	require.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	require.Equal(t, 30*time.Minute, cfg.Cache.CleanupInterval)
	require.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	require.False(t, cfg.Tracing.Enabled)
	require.NotEmpty(t, cfg.ViewsDB)
	require.NoError(t, cfg.Validate())
}

func TestValidateColumns_Empty(t *testing.T) {
	require.NoError(t, ValidateColumns(nil), "empty columns are derived from the dataset")
}

func TestValidateColumns(t *testing.T) {
	tests := []struct {
		name    string
		cols    []ColumnConfig
		wantErr string
	}{
		{
			name: "valid",
			cols: []ColumnConfig{
				{Name: "Name", Property: "name"},
				{Name: "Age", Property: "age", Filter: "number-interval"},
				{Name: "Status", Property: "status", Filter: "list", Values: []string{"active"}},
				{Name: "Joined", Property: "joined", Filter: "date-interval"},
				{Name: "Color", Property: "color", Filter: "color", Values: []string{"red"}},
				{Property: "address.city", Filter: NoFilter},
			},
		},
		{
			name:    "missing property",
			cols:    []ColumnConfig{{Name: "Name"}},
			wantErr: "column 0: property is required",
		},
		{
			name:    "duplicate title",
			cols:    []ColumnConfig{{Property: "name"}, {Name: "name", Property: "title"}},
			wantErr: `column 1: duplicate column "name"`,
		},
		{
			name:    "unknown filter",
			cols:    []ColumnConfig{{Property: "age", Filter: "range"}},
			wantErr: "column 0 (age)",
		},
		{
			name:    "color without values",
			cols:    []ColumnConfig{{Property: "color", Filter: "color"}},
			wantErr: "color filter needs values",
		},
		{
			name:    "negative width",
			cols:    []ColumnConfig{{Property: "name", Width: -1}},
			wantErr: "width must be >= 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColumns(tt.cols)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateColumns_UnknownKindIsMatchable(t *testing.T) {
	err := ValidateColumns([]ColumnConfig{{Property: "age", Filter: "range"}})
	require.True(t, errors.Is(err, filter.ErrUnknownKind))
}

func TestValidateSort(t *testing.T) {
	cols := []ColumnConfig{{Property: "name"}, {Property: "age"}}

	require.NoError(t, ValidateSort(SortConfig{}, cols))
	require.NoError(t, ValidateSort(SortConfig{By: "age", Reverse: true}, cols))
	require.NoError(t, ValidateSort(SortConfig{By: "anything"}, nil), "unchecked without columns")

	require.ErrorContains(t, ValidateSort(SortConfig{Reverse: true}, cols), "reverse requires by")
	require.ErrorContains(t, ValidateSort(SortConfig{By: "city"}, cols), `"city" is not a column property`)
}

func TestValidateTracing(t *testing.T) {
	require.NoError(t, ValidateTracing(tracing.Config{Enabled: false, Exporter: "bogus"}))
	require.NoError(t, ValidateTracing(tracing.Config{Enabled: true, Exporter: tracing.ExporterOTLP, SampleRate: 0.5}))

	require.ErrorContains(t, ValidateTracing(tracing.Config{Enabled: true, Exporter: "jaeger"}), "tracing.exporter")
	require.ErrorContains(t, ValidateTracing(tracing.Config{Enabled: true, SampleRate: 1.5}), "tracing.sample_rate")
}

func TestConfig_Validate(t *testing.T) {
	cfg := Defaults()
	cfg.PageSize = -1
	require.ErrorContains(t, cfg.Validate(), "page_size")

	cfg = Defaults()
	cfg.Log.Level = "loud"
	require.ErrorContains(t, cfg.Validate(), "log.level")

	cfg = Defaults()
	cfg.Cache.TTL = -time.Second
	require.ErrorContains(t, cfg.Validate(), "cache durations")
}

func TestColumnConfig_FilterState(t *testing.T) {
	s, ok := ColumnConfig{Property: "name"}.FilterState()
	require.True(t, ok)
	require.Equal(t, filter.State{Kind: filter.KindString, Property: "name"}, s)

	s, ok = ColumnConfig{Name: "Status", Property: "status", Filter: "list", Values: []string{"a", "b"}}.FilterState()
	require.True(t, ok)
	require.Equal(t, "Status", s.ID)
	require.Equal(t, []string{"a", "b"}, s.Values)

	s, ok = ColumnConfig{Name: "Color", Property: "color", Filter: "color", Values: []string{"red"}}.FilterState()
	require.True(t, ok)
	require.Equal(t, []string{"red"}, s.AllColors)

	_, ok = ColumnConfig{Property: "city", Filter: NoFilter}.FilterState()
	require.False(t, ok)
}

func TestColumnsFor(t *testing.T) {
	cols := ColumnsFor([]string{"name", "age"})
	require.Equal(t, []ColumnConfig{{Name: "name", Property: "name"}, {Name: "age", Property: "age"}}, cols)
	require.NoError(t, ValidateColumns(cols))
}

func TestConfig_TracingConfigDefaultsFilePath(t *testing.T) {
	cfg := Defaults()
	require.Equal(t, DefaultTracesFilePath(), cfg.TracingConfig().FilePath)

	cfg.Tracing.FilePath = "/tmp/t.jsonl"
	require.Equal(t, "/tmp/t.jsonl", cfg.TracingConfig().FilePath)
}
