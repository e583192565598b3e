package registry

import (
	"github.com/zjrosen/gridstate/internal/filter"
	"github.com/zjrosen/gridstate/internal/log"
)

// Registrar lets one owner (a column, a filter widget) hold at most one
// registration in a Registry. Owners must call Close on teardown.
type Registrar[T any] struct {
	registry *Registry[T]
	reg      *Registration[T]
}

// NewRegistrar creates a registrar with nothing registered.
func NewRegistrar[T any](r *Registry[T]) *Registrar[T] {
	return &Registrar[T]{registry: r}
}

// SetFilter replaces the owner's filter with f. If an equal filter is
// registered by someone else, f takes over its state and the other entry is
// removed before f is added. The whole swap produces one notification.
func (r *Registrar[T]) SetFilter(f filter.Serializable[T]) {
	r.registry.Debouncer().Scoped(func() {
		r.DeleteFilter()
		if existing, ok := r.registry.Registered(f); ok && !filter.Same(existing.Filter(), f) {
			log.Debug(log.CatRegistry, "Transplanting filter state", "key", f.Key().String())
			f.SetState(existing.Filter().State())
			existing.Unregister()
		}
		r.reg = r.registry.Add(f)
	})
}

// SetRegistration adopts an existing registration, dropping the current one.
func (r *Registrar[T]) SetRegistration(reg *Registration[T]) {
	r.DeleteFilter()
	r.reg = reg
}

// Filter returns the owner's registered filter, or nil.
func (r *Registrar[T]) Filter() filter.Serializable[T] {
	if r.reg == nil || !r.reg.Active() {
		return nil
	}
	return r.reg.Filter()
}

// DeleteFilter unregisters the owner's filter, if any.
func (r *Registrar[T]) DeleteFilter() {
	if r.reg == nil {
		return
	}
	r.reg.Unregister()
	r.reg = nil
}

// Close releases the owner's registration.
func (r *Registrar[T]) Close() {
	r.DeleteFilter()
}
