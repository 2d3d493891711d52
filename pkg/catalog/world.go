package catalog

// ID identifies an object within a World. IDs are never reused.
type ID uint64

// Object is anything registered in a World.
type Object interface {
	ObjectID() ID
	ObjectName() string
}

// outered is implemented by objects owned by another object.
// An owned transient object stays alive for as long as its outer does.
type outered interface {
	Outer() Object
}

type object struct {
	id   ID
	name string
}

// ObjectID returns the object's world identifier.
func (o *object) ObjectID() ID { return o.id }

// ObjectName returns the object's name.
func (o *object) ObjectName() string { return o.name }

// World is the registry of live objects.
//
// A World is confined to one goroutine. It tracks GC roots and transient
// objects; [World.Collect] destroys transient objects that are neither
// rooted nor reachable through a rooted outer.
type World struct {
	objects   map[ID]Object
	roots     map[ID]int
	transient map[ID]bool
	nextID    ID
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		objects:   make(map[ID]Object),
		roots:     make(map[ID]int),
		transient: make(map[ID]bool),
	}
}

func (w *World) allocate() ID {
	w.nextID++
	return w.nextID
}

func (w *World) add(o Object, transient bool) {
	w.objects[o.ObjectID()] = o
	if transient {
		w.transient[o.ObjectID()] = true
	}
}

// IsValid reports whether the object with the given id is still alive.
func (w *World) IsValid(id ID) bool {
	_, ok := w.objects[id]
	return ok
}

// Len returns the number of live objects.
func (w *World) Len() int { return len(w.objects) }

// AddToRoot protects o from collection. Calls nest.
func (w *World) AddToRoot(o Object) {
	if o == nil || !w.IsValid(o.ObjectID()) {
		return
	}
	w.roots[o.ObjectID()]++
}

// RemoveFromRoot undoes one AddToRoot call.
func (w *World) RemoveFromRoot(o Object) {
	if o == nil {
		return
	}
	id := o.ObjectID()
	if w.roots[id] <= 1 {
		delete(w.roots, id)
		return
	}
	w.roots[id]--
}

// IsRooted reports whether o is currently rooted.
func (w *World) IsRooted(o Object) bool {
	return w.roots[o.ObjectID()] > 0
}

// Destroy invalidates o immediately, rooted or not.
// Weak handles to o stop resolving.
func (w *World) Destroy(o Object) {
	if o == nil {
		return
	}
	id := o.ObjectID()
	delete(w.objects, id)
	delete(w.roots, id)
	delete(w.transient, id)
}

// Collect destroys unreachable transient objects and returns how many were
// destroyed.
func (w *World) Collect() int {
	var dead []ID
	for id := range w.transient {
		if !w.reachable(id, 0) {
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		delete(w.objects, id)
		delete(w.transient, id)
		delete(w.roots, id)
	}
	return len(dead)
}

func (w *World) reachable(id ID, depth int) bool {
	if depth > 32 {
		return false
	}
	if w.roots[id] > 0 || !w.transient[id] {
		_, ok := w.objects[id]
		return ok
	}
	o, ok := w.objects[id]
	if !ok {
		return false
	}
	if inner, ok := o.(outered); ok {
		if outer := inner.Outer(); outer != nil {
			return w.reachable(outer.ObjectID(), depth+1)
		}
	}
	return false
}
