package tracing

// Span names.
const (
	SpanApplyState = "gridstate.apply"
	SpanLoadRows   = "dataset.load"
)

// Attribute keys.
const (
	AttrPageSize    = "page.size"
	AttrPageFrom    = "page.from"
	AttrSortBy      = "sort.by"
	AttrSortReverse = "sort.reverse"
	AttrFilterCount = "filters.count"
	AttrFilterKey   = "filter.key"
	AttrFilterKind  = "filter.kind"
	AttrDatasetPath = "dataset.path"
	AttrDatasetRows = "dataset.rows"
)

// Span event names.
const (
	EventFilterAdded   = "filter.added"
	EventFilterUpdated = "filter.updated"
	EventFilterRemoved = "filter.removed"
	EventSortApplied   = "sort.applied"
	EventPageApplied   = "page.applied"
)
