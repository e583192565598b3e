// Package testutil builds datasets and views databases for tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/gridstate/internal/dataset"
)

// Builder accumulates rows in insertion order.
type Builder struct {
	t    *testing.T
	rows []rowData
}

// NewBuilder creates an empty builder.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// WithRow adds a row with optional configuration.
func (b *Builder) WithRow(id string, opts ...RowOption) *Builder {
	row := defaultRow(id)
	for _, opt := range opts {
		opt(&row)
	}
	b.rows = append(b.rows, row)
	return b
}

// Build returns the rows shaped like a decoded dataset file.
func (b *Builder) Build() []dataset.Row {
	out := make([]dataset.Row, 0, len(b.rows))
	for _, r := range b.rows {
		out = append(out, r.toRow())
	}
	return out
}

// WriteJSON writes the rows to dir/name and returns the path.
func (b *Builder) WriteJSON(dir, name string) string {
	b.t.Helper()
	data, err := json.MarshalIndent(b.Build(), "", "  ")
	require.NoError(b.t, err)
	return b.write(dir, name, data)
}

// WriteYAML writes the rows to dir/name and returns the path.
func (b *Builder) WriteYAML(dir, name string) string {
	b.t.Helper()
	data, err := yaml.Marshal(b.Build())
	require.NoError(b.t, err)
	return b.write(dir, name, data)
}

func (b *Builder) write(dir, name string, data []byte) string {
	b.t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(b.t, os.WriteFile(path, data, 0600))
	return path
}

func (r rowData) toRow() dataset.Row {
	row := dataset.Row{
		"id":     r.id,
		"name":   r.name,
		"age":    r.age,
		"joined": r.joined.Format(time.RFC3339),
		"status": r.status,
	}
	if r.color != "" {
		row["color"] = r.color
	}
	if r.city != "" {
		row["address"] = map[string]any{"city": r.city}
	}
	if len(r.tags) > 0 {
		tags := make([]any, len(r.tags))
		for i, tag := range r.tags {
			tags[i] = tag
		}
		row["tags"] = tags
	}
	for k, v := range r.extra {
		row[k] = v
	}
	return row
}
