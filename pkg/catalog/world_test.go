package catalog

import "testing"

func newTestObject(w *World, name string, transient bool) *Module {
	m := &Module{object: object{id: w.allocate(), name: name}}
	w.add(m, transient)
	return m
}

func TestWorldCollect(t *testing.T) {
	w := NewWorld()
	persistent := newTestObject(w, "persistent", false)
	loose := newTestObject(w, "loose", true)
	rooted := newTestObject(w, "rooted", true)
	w.AddToRoot(rooted)

	if got := w.Collect(); got != 1 {
		t.Errorf("Collect() = %d, want 1", got)
	}
	if !w.IsValid(persistent.ObjectID()) {
		t.Error("persistent object was collected")
	}
	if w.IsValid(loose.ObjectID()) {
		t.Error("unrooted transient object survived")
	}
	if !w.IsValid(rooted.ObjectID()) {
		t.Error("rooted transient object was collected")
	}

	w.RemoveFromRoot(rooted)
	w.Collect()
	if w.IsValid(rooted.ObjectID()) {
		t.Error("object survived after its root was removed")
	}
}

func TestWorldRootsNest(t *testing.T) {
	w := NewWorld()
	o := newTestObject(w, "o", true)
	w.AddToRoot(o)
	w.AddToRoot(o)
	w.RemoveFromRoot(o)

	if !w.IsRooted(o) {
		t.Fatal("IsRooted() = false after two adds and one remove")
	}
	w.RemoveFromRoot(o)
	if w.IsRooted(o) {
		t.Error("IsRooted() = true after matching removes")
	}
}

func TestWorldCollectFollowsOuter(t *testing.T) {
	c := newCatalog()
	g, err := c.NewGraph("")
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	w := c.World()
	w.AddToRoot(g.Blueprint)

	fn := &Spawner{object: object{id: w.allocate(), name: "Spawn"}, Template: Template{Title: "Spawn", DocID: "Spawn"}, world: w}
	n := fn.Invoke(g)
	if n == nil {
		t.Fatal("Invoke() = nil")
	}

	w.Collect()
	if !w.IsValid(n.ObjectID()) {
		t.Error("node in a rooted graph was collected")
	}

	g.RemoveNode(n)
	w.Collect()
	if w.IsValid(n.ObjectID()) {
		t.Error("detached node survived collection")
	}

	w.RemoveFromRoot(g.Blueprint)
	w.Collect()
	if w.IsValid(g.ObjectID()) || w.IsValid(g.Blueprint.ObjectID()) {
		t.Error("scratch graph survived after unrooting")
	}
}

func TestWeak(t *testing.T) {
	w := NewWorld()
	o := newTestObject(w, "o", false)
	ref := WeakOf(o)

	got, ok := ref.Get(w)
	if !ok || got != o {
		t.Fatalf("Get() = %v, %v, want %v, true", got, ok, o)
	}
	if ref.ID() != o.ObjectID() {
		t.Errorf("ID() = %d, want %d", ref.ID(), o.ObjectID())
	}

	w.Destroy(o)
	if ref.IsValid(w) {
		t.Error("IsValid() = true after Destroy")
	}

	var zero Weak[*Module]
	if !zero.IsZero() {
		t.Error("zero handle IsZero() = false")
	}
	if _, ok := zero.Get(w); ok {
		t.Error("zero handle resolved")
	}
}

func TestWeakWrongType(t *testing.T) {
	w := NewWorld()
	o := newTestObject(w, "o", false)
	ref := Weak[*Class]{id: o.ObjectID()}
	if _, ok := ref.Get(w); ok {
		t.Error("handle resolved to an object of another type")
	}
}
