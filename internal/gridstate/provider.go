// Package gridstate aggregates the page, sort and filter providers of a grid
// into one canonical State, and applies a State back onto them.
//
// All providers share one debouncer. Changes fires once per settled batch,
// so a state write touching the page, the sort and several filters is seen
// downstream as a single change.
package gridstate

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/gridstate/internal/debounce"
	"github.com/zjrosen/gridstate/internal/filter"
	"github.com/zjrosen/gridstate/internal/log"
	"github.com/zjrosen/gridstate/internal/paging"
	"github.com/zjrosen/gridstate/internal/pubsub"
	"github.com/zjrosen/gridstate/internal/registry"
	"github.com/zjrosen/gridstate/internal/sorting"
	"github.com/zjrosen/gridstate/internal/tracing"
)

// Option configures a Provider.
type Option func(*options)

type options struct {
	tracer trace.Tracer
}

// WithTracer records every state write as a span.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// Provider owns a grid's page, sort and filter registry.
type Provider[T any] struct {
	accessor  filter.Accessor[T]
	debouncer *debounce.Debouncer
	page      *paging.Page
	sort      *sorting.Sort[T]
	filters   *registry.Registry[T]
	tracer    trace.Tracer
	broker    *pubsub.Broker[State[T]]
	unobserve func()
}

// New wires a fresh set of providers around one debouncer. accessor resolves
// item properties for property comparators and compact string filters.
func New[T any](accessor filter.Accessor[T], opts ...Option) *Provider[T] {
	o := options{tracer: noop.NewTracerProvider().Tracer("gridstate")}
	for _, opt := range opts {
		opt(&o)
	}

	d := debounce.New()
	page := paging.New(d)
	p := &Provider[T]{
		accessor:  accessor,
		debouncer: d,
		page:      page,
		sort:      sorting.New[T](d, page),
		filters:   registry.New[T](registry.WithDebouncer(d), registry.WithPage(page)),
		tracer:    o.tracer,
		broker:    pubsub.NewBroker[State[T]](),
	}
	p.unobserve = d.Changes().Observe(func(pubsub.Event[struct{}]) {
		p.broker.Publish(pubsub.UpdatedEvent, p.State())
	})
	return p
}

func (p *Provider[T]) Page() *paging.Page                   { return p.page }
func (p *Provider[T]) Sort() *sorting.Sort[T]               { return p.sort }
func (p *Provider[T]) Filters() *registry.Registry[T]       { return p.filters }
func (p *Provider[T]) Debouncer() *debounce.Debouncer       { return p.debouncer }
func (p *Provider[T]) Accessor() filter.Accessor[T]         { return p.accessor }
func (p *Provider[T]) Changes() pubsub.Observable[State[T]] { return p.broker }

// State reads the current snapshot. The page is reported only when a size
// is set, the sort only when a comparator is installed, and filters only
// when at least one is active. Built-in string filters are projected to
// their compact {property, value} shape; other kinds are passed as the live
// filter.
func (p *Provider[T]) State() State[T] {
	var st State[T]

	if size := p.page.Size(); size > 0 {
		st.Page = &PageState{From: p.page.FirstItem(), To: p.page.LastItem(), Size: size}
	}

	if c := p.sort.Comparator(); c != nil {
		by := ByComparator(c)
		if pc, ok := c.(*sorting.PropertyComparator[T]); ok {
			by = ByProperty[T](pc.Property())
		}
		st.Sort = &SortState[T]{By: by, Reverse: p.sort.Reverse()}
	}

	for _, f := range p.filters.ActiveFilters() {
		if fs := f.State(); fs.Kind == filter.KindString {
			st.Filters = append(st.Filters, Compact[T](fs.Property, fs.Value))
			continue
		}
		st.Filters = append(st.Filters, Live(f))
	}
	return st
}

// SetState applies s onto the providers as one change.
//
// Filters are reconciled by identity: an incoming entry matching a
// registered filter is kept and receives the incoming state, unmatched
// entries are registered, and active filters without an incoming match are
// removed. Reading a State and writing it back is therefore a no-op. The
// page is applied last so that resets caused by sort and filter changes do
// not override it.
func (p *Provider[T]) SetState(ctx context.Context, s State[T]) {
	_, span := p.tracer.Start(ctx, tracing.SpanApplyState)
	defer span.End()

	p.debouncer.Scoped(func() {
		if s.Sort != nil {
			p.applySort(span, *s.Sort)
		}
		if s.Filters != nil {
			p.applyFilters(span, s.Filters)
		}
		if s.Page != nil {
			p.applyPage(span, *s.Page)
		}
	})
	span.SetAttributes(attribute.Int(tracing.AttrFilterCount, len(p.filters.ActiveFilters())))
}

func (p *Provider[T]) applySort(span trace.Span, ss SortState[T]) {
	if ss.By.Property == "" {
		p.sort.SetComparator(ss.By.Comparator)
		p.sort.SetReverse(ss.Reverse)
		span.AddEvent(tracing.EventSortApplied, trace.WithAttributes(
			attribute.Bool(tracing.AttrSortReverse, ss.Reverse),
		))
		return
	}

	pc, ok := p.sort.Comparator().(*sorting.PropertyComparator[T])
	if !ok || pc.Property() != ss.By.Property {
		pc = sorting.NewPropertyComparator(ss.By.Property, p.accessor)
		p.sort.SetComparator(pc)
	}
	if p.sort.Reverse() != ss.Reverse {
		p.sort.Toggle(pc)
	}
	span.AddEvent(tracing.EventSortApplied, trace.WithAttributes(
		attribute.String(tracing.AttrSortBy, ss.By.Property),
		attribute.Bool(tracing.AttrSortReverse, ss.Reverse),
	))
}

func (p *Provider[T]) applyFilters(span trace.Span, entries []FilterEntry[T]) {
	active := p.filters.ActiveFilters()
	keep := make(map[filter.Key]bool, len(entries))

	for _, e := range entries {
		key := e.Key()
		keep[key] = true

		if reg, ok := p.filters.Registered(p.probe(e)); ok {
			existing := reg.Filter()
			if filter.Same(existing, e.Filter) {
				continue
			}
			existing.SetState(p.incomingState(existing, e))
			span.AddEvent(tracing.EventFilterUpdated, filterAttrs(key))
			continue
		}

		f := e.Filter
		if e.IsCompact() {
			sf := filter.NewStringFilter(e.Property, p.accessor)
			sf.SetValue(e.Value)
			f = sf
		}
		p.filters.Add(f)
		span.AddEvent(tracing.EventFilterAdded, filterAttrs(key))
	}

	for _, f := range active {
		if keep[f.Key()] {
			continue
		}
		p.filters.Remove(f)
		span.AddEvent(tracing.EventFilterRemoved, filterAttrs(f.Key()))
	}
	log.Debug(log.CatState, "Applied filters", "incoming", len(entries), "active", len(p.filters.ActiveFilters()))
}

// probe returns a filter carrying e's identity for registry lookups.
func (p *Provider[T]) probe(e FilterEntry[T]) filter.Serializable[T] {
	if e.IsCompact() {
		return filter.NewStringFilter(e.Property, p.accessor)
	}
	return e.Filter
}

// incomingState is the state a registered filter takes from e. Compact
// entries only carry a value, so the rest of the filter's state is kept.
func (p *Provider[T]) incomingState(existing filter.Serializable[T], e FilterEntry[T]) filter.State {
	if !e.IsCompact() {
		return e.Filter.State()
	}
	st := existing.State()
	st.Value = e.Value
	return st
}

func (p *Provider[T]) applyPage(span trace.Span, ps PageState) {
	p.page.SetSize(ps.Size)
	if ps.Size > 0 {
		from := max(ps.From, 0)
		p.page.SetCurrent((from+ps.Size-1)/ps.Size + 1)
	}
	span.AddEvent(tracing.EventPageApplied, trace.WithAttributes(
		attribute.Int(tracing.AttrPageSize, ps.Size),
		attribute.Int(tracing.AttrPageFrom, ps.From),
	))
}

// Close releases every provider and subscriber.
func (p *Provider[T]) Close() {
	p.unobserve()
	p.filters.Close()
	p.sort.Close()
	p.page.Close()
	p.debouncer.Close()
	p.broker.Close()
}

func filterAttrs(k filter.Key) trace.SpanStartEventOption {
	return trace.WithAttributes(
		attribute.String(tracing.AttrFilterKey, k.String()),
		attribute.String(tracing.AttrFilterKind, string(k.Kind)),
	)
}
