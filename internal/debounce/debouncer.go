// Package debounce coalesces the sub-changes of one logical grid update into
// a single notification.
//
// Every provider brackets its own mutation with ChangeStart/ChangeDone. When
// a caller wraps several mutations in an outer scope (a state write that sets
// the page, the sort and three filters), the inner pairs only move the
// counter, and Changes fires once when the outermost scope closes.
package debounce

import (
	"sync"

	"github.com/zjrosen/gridstate/internal/log"
	"github.com/zjrosen/gridstate/internal/pubsub"
)

// Debouncer is a reference-counted change coalescer.
type Debouncer struct {
	mu        sync.Mutex
	nbChanges int
	broker    *pubsub.Broker[struct{}]
}

// New creates an idle debouncer.
func New() *Debouncer {
	return &Debouncer{broker: pubsub.NewBroker[struct{}]()}
}

// ChangeStart opens a change scope.
func (d *Debouncer) ChangeStart() {
	d.mu.Lock()
	d.nbChanges++
	d.mu.Unlock()
}

// ChangeDone closes a change scope. When the last open scope closes,
// exactly one notification is published. An unmatched call is ignored.
func (d *Debouncer) ChangeDone() {
	d.mu.Lock()
	if d.nbChanges == 0 {
		d.mu.Unlock()
		log.Warn(log.CatState, "ChangeDone without matching ChangeStart")
		return
	}
	d.nbChanges--
	settled := d.nbChanges == 0
	d.mu.Unlock()

	if settled {
		d.broker.Publish(pubsub.UpdatedEvent, struct{}{})
	}
}

// Scoped runs fn inside a change scope. The scope is closed even if fn panics.
func (d *Debouncer) Scoped(fn func()) {
	d.ChangeStart()
	defer d.ChangeDone()
	fn()
}

// InFlight reports the number of open change scopes.
func (d *Debouncer) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nbChanges
}

// Changes fires once per settled batch of changes.
func (d *Debouncer) Changes() pubsub.Observable[struct{}] {
	return d.broker
}

// Close releases all subscribers.
func (d *Debouncer) Close() {
	d.broker.Close()
}
