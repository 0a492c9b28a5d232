package tree

import (
	"math/rand"
	"testing"

	"github.com/benbjohnson/immutable"
)

var intHasher = immutable.NewHasher[int](int(0))

// collideHasher forces every key into one leaf, so the collision
// handling gets exercised on small inputs.
type collideHasher struct{}

func (collideHasher) Hash(int) uint32     { return 42 }
func (collideHasher) Equal(a, b int) bool { return a == b }

func expectHit(t *testing.T, tr Tree[int, string], key int, want string) {
	t.Helper()
	got, found := tr.Lookup(key)
	if !found {
		t.Errorf("Lookup(%d) missed, expected %q", key, want)
	} else if got != want {
		t.Errorf("Lookup(%d) = %q, expected %q", key, got, want)
	}
}

func expectMiss(t *testing.T, tr Tree[int, string], key int) {
	t.Helper()
	if got, found := tr.Lookup(key); found {
		t.Errorf("Lookup(%d) = %q, expected a miss", key, got)
	}
}

func TestPersistence(t *testing.T) {
	for _, hasher := range []immutable.Hasher[int]{intHasher, collideHasher{}} {
		t0 := NewTree[int, string](hasher)
		t1 := t0.Insert(1, "a")
		t2 := t1.Insert(1, "b")
		t3 := t2.Insert(2, "c")

		// Every iterate keeps its own view.
		expectMiss(t, t0, 1)
		expectHit(t, t1, 1, "a")
		expectHit(t, t2, 1, "b")
		expectMiss(t, t2, 2)
		expectHit(t, t3, 1, "b")
		expectHit(t, t3, 2, "c")
	}
}

func TestRemove(t *testing.T) {
	for _, hasher := range []immutable.Hasher[int]{intHasher, collideHasher{}} {
		tr := NewTree[int, string](hasher).Insert(1, "a").Insert(2, "b")
		rm := tr.Remove(1)

		expectMiss(t, rm, 1)
		expectHit(t, rm, 2, "b")
		expectHit(t, tr, 1, "a")

		if got := rm.Remove(7).Size(); got != 1 {
			t.Errorf("removing an absent key changed the size: %d", got)
		}
	}
}

func joinStr(a, b string) (string, bool) {
	if a == b {
		return a, true
	}
	if a > b {
		return a, false
	}
	return b, false
}

func TestInsertOrMerge(t *testing.T) {
	tr := NewTree[int, string](intHasher).Insert(1, "b")

	merged := tr.InsertOrMerge(1, "a", joinStr)
	expectHit(t, merged, 1, "b")

	grown := tr.InsertOrMerge(1, "c", joinStr)
	expectHit(t, grown, 1, "c")

	// An insert that changes nothing must return a shared result, so
	// later Equal calls can short-circuit on pointer equality.
	if merged.root != tr.root {
		t.Errorf("no-op merge rebuilt the tree")
	}
}

func TestMergeJoins(t *testing.T) {
	a := NewTree[int, string](intHasher).Insert(1, "a").Insert(2, "x")
	b := NewTree[int, string](intHasher).Insert(2, "y").Insert(3, "c")

	m := a.Merge(b, joinStr)
	expectHit(t, m, 1, "a")
	expectHit(t, m, 2, "y")
	expectHit(t, m, 3, "c")

	if got := m.Size(); got != 3 {
		t.Errorf("merge produced %d bindings, expected 3", got)
	}

	// Merging a tree with itself reuses the whole structure.
	if self := a.Merge(a, joinStr); self.root != a.root {
		t.Errorf("self-merge rebuilt the tree")
	}
}

func TestEqualModuloValues(t *testing.T) {
	eq := func(a, b string) bool { return a == b }

	a := NewTree[int, string](intHasher).Insert(1, "a").Insert(2, "b")
	b := NewTree[int, string](intHasher).Insert(2, "b").Insert(1, "a")
	if !a.Equal(b, eq) {
		t.Errorf("insertion order leaked into equality")
	}

	c := b.Insert(2, "z")
	if a.Equal(c, eq) {
		t.Errorf("trees with different values compare equal")
	}
	if a.Equal(a.Remove(2), eq) {
		t.Errorf("trees with different domains compare equal")
	}
}

// TestAgainstMap drives a random workload against a builtin map. The
// hash range is kept narrow so collisions happen regularly.
func TestAgainstMap(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	hashes := map[int]uint32{}
	hasher := funcHasher(func(k int) uint32 {
		if h, ok := hashes[k]; ok {
			return h
		}
		h := uint32(rng.Intn(20))
		hashes[k] = h
		return h
	})

	tr := NewTree[int, string](hasher)
	ref := map[int]string{}

	for i := 0; i < 2000; i++ {
		k := rng.Intn(100)
		if rng.Intn(4) == 0 {
			tr = tr.Remove(k)
			delete(ref, k)
		} else {
			v := string(rune('a' + rng.Intn(26)))
			tr = tr.Insert(k, v)
			ref[k] = v
		}
	}

	if tr.Size() != len(ref) {
		t.Fatalf("size = %d, reference holds %d", tr.Size(), len(ref))
	}
	tr.ForEach(func(k int, v string) {
		if ref[k] != v {
			t.Errorf("binding %d ↦ %q, reference has %q", k, v, ref[k])
		}
	})
}

type funcHasher func(int) uint32

func (f funcHasher) Hash(k int) uint32 { return f(k) }
func (funcHasher) Equal(a, b int) bool { return a == b }
