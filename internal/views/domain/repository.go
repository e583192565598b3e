package domain

// ListFilter narrows a view listing.
type ListFilter struct {
	// Dataset keeps views saved against one dataset. Empty means all.
	Dataset string

	// FilterKind keeps views carrying at least one filter of this kind.
	FilterKind string

	// FilterKey keeps views carrying the filter with this key, in its
	// "kind/id" form (e.g. "number-interval/Age" or "string/name").
	FilterKey string

	// Limit caps the number of views returned; 0 means no limit.
	Limit int
}

// ViewRepository persists views. Names are unique.
type ViewRepository interface {
	// Save inserts a new view (ID == 0) or updates an existing one.
	// Saving a new view under a taken name replaces the stored snapshot.
	Save(view *View) error

	// FindByName returns ViewNotFoundError when no view has that name.
	FindByName(name string) (*View, error)

	// Delete returns ViewNotFoundError when no view has that name.
	Delete(name string) error

	// List returns views ordered by name.
	List(filter ListFilter) ([]*View, error)

	Close() error
}
