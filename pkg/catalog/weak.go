package catalog

// Weak is a non-owning handle to a world object.
//
// A Weak is a plain value and may be copied across goroutines. Resolving it
// with Get must happen on the goroutine that owns the World; a handle whose
// object has been destroyed or collected resolves to (zero, false).
type Weak[T Object] struct {
	id ID
}

// WeakOf returns a weak handle to o.
func WeakOf[T Object](o T) Weak[T] {
	return Weak[T]{id: o.ObjectID()}
}

// ID returns the identifier the handle points at, valid or not.
func (r Weak[T]) ID() ID { return r.id }

// IsZero reports whether the handle was never set.
func (r Weak[T]) IsZero() bool { return r.id == 0 }

// Get resolves the handle.
func (r Weak[T]) Get(w *World) (T, bool) {
	var zero T
	if r.id == 0 || w == nil {
		return zero, false
	}
	o, ok := w.objects[r.id]
	if !ok {
		return zero, false
	}
	t, ok := o.(T)
	return t, ok
}

// IsValid reports whether the handle still resolves.
func (r Weak[T]) IsValid(w *World) bool {
	_, ok := r.Get(w)
	return ok
}
