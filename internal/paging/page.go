// Package paging tracks the grid's page window.
package paging

import (
	"sync"

	"github.com/zjrosen/gridstate/internal/debounce"
	"github.com/zjrosen/gridstate/internal/log"
	"github.com/zjrosen/gridstate/internal/pubsub"
)

// Page is the pagination provider. Pages are 1-based; a size of 0 means
// everything fits on one page. Every mutation is bracketed by the shared
// debouncer.
type Page struct {
	mu         sync.Mutex
	size       int
	current    int
	totalItems int
	last       int
	debouncer  *debounce.Debouncer
	broker     *pubsub.Broker[int]
}

// New creates a provider on page 1 with no size.
func New(d *debounce.Debouncer) *Page {
	if d == nil {
		d = debounce.New()
	}
	return &Page{
		current:   1,
		debouncer: d,
		broker:    pubsub.NewBroker[int](),
	}
}

// Changes carries the current page after every change of the window.
func (p *Page) Changes() pubsub.Observable[int] {
	return p.broker
}

func (p *Page) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// SetSize changes the page size, moving to the page that still shows the
// first item of the previous page.
func (p *Page) SetSize(size int) {
	if size < 0 {
		size = 0
	}
	p.mu.Lock()
	old := p.size
	if size == old {
		p.mu.Unlock()
		return
	}
	p.size = size
	if size == 0 {
		p.current = 1
	} else {
		p.current = old*(p.current-1)/size + 1
	}
	current := p.current
	p.mu.Unlock()

	log.Debug(log.CatPage, "Page size changed", "size", size, "current", current)
	p.publish(current)
}

func (p *Page) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// SetCurrent moves to page n. Setting the current page again is a no-op.
func (p *Page) SetCurrent(n int) {
	if n < 1 {
		n = 1
	}
	p.mu.Lock()
	if n == p.current {
		p.mu.Unlock()
		return
	}
	p.current = n
	p.mu.Unlock()

	log.Debug(log.CatPage, "Page changed", "current", n)
	p.publish(n)
}

func (p *Page) TotalItems() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalItems
}

// SetTotalItems records how many items the grid holds and clamps the
// current page to the last one.
func (p *Page) SetTotalItems(total int) {
	if total < 0 {
		total = 0
	}
	p.mu.Lock()
	p.totalItems = total
	last := p.lastLocked()
	clamp := p.current > last
	p.mu.Unlock()

	if clamp {
		p.SetCurrent(last)
	}
}

// Last returns the explicit last page if one was set, otherwise the page
// count derived from the total and the size.
func (p *Page) Last() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastLocked()
}

// SetLast overrides the derived page count; 0 clears the override.
func (p *Page) SetLast(last int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = max(last, 0)
}

func (p *Page) lastLocked() int {
	if p.last > 0 {
		return p.last
	}
	if p.size > 0 && p.totalItems > 0 {
		return (p.totalItems + p.size - 1) / p.size
	}
	return 1
}

// FirstItem returns the zero-based index of the first item on the page.
func (p *Page) FirstItem() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.size == 0 {
		return 0
	}
	return (p.current - 1) * p.size
}

// LastItem returns the zero-based index of the last item on the page.
func (p *Page) LastItem() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.size == 0 {
		return p.totalItems - 1
	}
	last := p.current*p.size - 1
	if p.totalItems > 0 {
		last = min(last, p.totalItems-1)
	}
	return last
}

// Next moves forward unless already on the last page.
func (p *Page) Next() {
	current, last := p.Current(), p.Last()
	if current < last {
		p.SetCurrent(current + 1)
	}
}

// Previous moves back unless already on the first page.
func (p *Page) Previous() {
	if current := p.Current(); current > 1 {
		p.SetCurrent(current - 1)
	}
}

// Reset goes back to the first page.
func (p *Page) Reset() {
	p.SetCurrent(1)
}

// Close releases all subscribers.
func (p *Page) Close() {
	p.broker.Close()
}

func (p *Page) publish(current int) {
	p.debouncer.Scoped(func() {
		p.broker.Publish(pubsub.UpdatedEvent, current)
	})
}
