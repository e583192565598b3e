// Package items turns a grid state into the rows to display: filter, then
// sort, then cut the current page.
//
// The filtered and sorted order is cached per state fingerprint, so paging
// through a result set does not re-run the filters.
package items

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/zjrosen/gridstate/internal/cachemanager"
	"github.com/zjrosen/gridstate/internal/gridstate"
	"github.com/zjrosen/gridstate/internal/log"
	"github.com/zjrosen/gridstate/internal/pubsub"
	"github.com/zjrosen/gridstate/internal/snapshot"
)

// Items keeps the displayed page of a grid up to date.
type Items[T any] struct {
	grid *gridstate.Provider[T]
	ttl  time.Duration

	mu        sync.Mutex
	all       []T
	version   uint64
	displayed []T
	total     int

	order     *cachemanager.ReadThroughCache[string, []int, []T]
	broker    *pubsub.Broker[[]T]
	unobserve func()
}

// New binds rows to grid. Every settled grid change recomputes the page.
// ttl bounds how long a computed order is reused.
func New[T any](grid *gridstate.Provider[T], rows []T, cache cachemanager.CacheManager[string, []int], ttl time.Duration) *Items[T] {
	it := &Items[T]{
		grid:   grid,
		ttl:    ttl,
		all:    rows,
		broker: pubsub.NewBroker[[]T](),
	}
	it.order = cachemanager.NewReadThroughCache(cache, it.computeOrder, false)
	it.unobserve = grid.Changes().Observe(func(pubsub.Event[gridstate.State[T]]) {
		it.Refresh(context.Background())
	})
	it.Refresh(context.Background())
	return it
}

// SetRows replaces the row set and recomputes.
func (it *Items[T]) SetRows(ctx context.Context, rows []T) {
	it.mu.Lock()
	it.all = rows
	it.version++
	it.mu.Unlock()
	it.order.Invalidate(ctx)
	it.Refresh(ctx)
}

// Refresh recomputes the displayed page from the current grid state.
func (it *Items[T]) Refresh(ctx context.Context) {
	it.mu.Lock()
	rows, version := it.all, it.version
	it.mu.Unlock()

	order, err := it.orderFor(ctx, rows, version)
	if err != nil {
		log.ErrorErr(log.CatItems, "Computing displayed items failed", err)
		return
	}

	page := it.grid.Page()
	page.SetTotalItems(len(order))

	var displayed []T
	if len(order) > 0 {
		first := max(page.FirstItem(), 0)
		last := min(page.LastItem(), len(order)-1)
		for i := first; i <= last; i++ {
			displayed = append(displayed, rows[order[i]])
		}
	}

	it.mu.Lock()
	if it.version != version {
		it.mu.Unlock()
		return
	}
	it.displayed = displayed
	it.total = len(order)
	it.mu.Unlock()

	log.Debug(log.CatItems, "Displayed items", "total", len(order), "page", page.Current(), "shown", len(displayed))
	it.broker.Publish(pubsub.UpdatedEvent, displayed)
}

func (it *Items[T]) orderFor(ctx context.Context, rows []T, version uint64) ([]int, error) {
	if st := it.grid.State(); st.Sort != nil && st.Sort.By.Property == "" {
		// Custom comparators have no fingerprint.
		return it.computeOrder(ctx, rows)
	}
	s := snapshot.FromProvider(it.grid)
	s.Page = nil
	key := fmt.Sprintf("%d:%s", version, s.FingerprintHex())
	return it.order.GetWithRefresh(ctx, key, rows, it.ttl)
}

func (it *Items[T]) computeOrder(_ context.Context, rows []T) ([]int, error) {
	filters := it.grid.Filters()
	order := make([]int, 0, len(rows))
	for i, r := range rows {
		if filters.Accepts(r) {
			order = append(order, i)
		}
	}
	sorter := it.grid.Sort()
	slices.SortStableFunc(order, func(a, b int) int {
		return sorter.Compare(rows[a], rows[b])
	})
	return order, nil
}

// Displayed returns the rows of the current page.
func (it *Items[T]) Displayed() []T {
	it.mu.Lock()
	defer it.mu.Unlock()
	return slices.Clone(it.displayed)
}

// Total returns how many rows pass the filters.
func (it *Items[T]) Total() int {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.total
}

// Rows returns the unfiltered row set.
func (it *Items[T]) Rows() []T {
	it.mu.Lock()
	defer it.mu.Unlock()
	return slices.Clone(it.all)
}

// Changes carries the displayed page after every recomputation.
func (it *Items[T]) Changes() pubsub.Observable[[]T] {
	return it.broker
}

// Close stops following the grid.
func (it *Items[T]) Close() {
	it.unobserve()
	it.broker.Close()
}
