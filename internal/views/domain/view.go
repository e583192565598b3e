// Package domain defines saved grid views and their repository contract.
//
// A view is a named snapshot of a grid's state (page, sort and filters)
// that can be listed, re-applied and compared later. The package holds no
// infrastructure code.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/zjrosen/gridstate/internal/snapshot"
)

// View is a saved, named grid state.
type View struct {
	id          int64
	guid        string
	name        string
	description string
	dataset     string
	snapshot    snapshot.Snapshot
	createdAt   time.Time
	updatedAt   time.Time
}

// NewView creates an unsaved view.
func NewView(guid, name, dataset string, s snapshot.Snapshot) *View {
	now := time.Now()
	return &View{
		guid:      guid,
		name:      name,
		dataset:   dataset,
		snapshot:  s,
		createdAt: now,
		updatedAt: now,
	}
}

// Reconstitute rebuilds a view from storage. It is meant for repositories.
func Reconstitute(id int64, guid, name, description, dataset string, s snapshot.Snapshot, createdAt, updatedAt time.Time) *View {
	return &View{
		id:          id,
		guid:        guid,
		name:        name,
		description: description,
		dataset:     dataset,
		snapshot:    s,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (v *View) ID() int64                   { return v.id }
func (v *View) GUID() string                { return v.guid }
func (v *View) Name() string                { return v.name }
func (v *View) Description() string         { return v.description }
func (v *View) Dataset() string             { return v.dataset }
func (v *View) Snapshot() snapshot.Snapshot { return v.snapshot }
func (v *View) CreatedAt() time.Time        { return v.createdAt }
func (v *View) UpdatedAt() time.Time        { return v.updatedAt }

// SetID is called by repositories after the first insert.
func (v *View) SetID(id int64) {
	v.id = id
}

func (v *View) SetDescription(d string) {
	v.description = d
	v.touch()
}

// Replace stores a new snapshot under the same name.
func (v *View) Replace(s snapshot.Snapshot) {
	v.snapshot = s
	v.touch()
}

func (v *View) touch() {
	v.updatedAt = time.Now()
}

// ValidateName rejects names that cannot be typed back on a command line.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &InvalidViewNameError{Name: name, Reason: "empty"}
	}
	if strings.ContainsAny(name, "\n\t") {
		return &InvalidViewNameError{Name: name, Reason: "contains control characters"}
	}
	return nil
}

// ViewNotFoundError is returned when no view matches a lookup.
type ViewNotFoundError struct {
	Name string
}

func (e *ViewNotFoundError) Error() string {
	return fmt.Sprintf("view not found: %s", e.Name)
}

// InvalidViewNameError is returned for unusable view names.
type InvalidViewNameError struct {
	Name   string
	Reason string
}

func (e *InvalidViewNameError) Error() string {
	return fmt.Sprintf("invalid view name %q: %s", e.Name, e.Reason)
}
