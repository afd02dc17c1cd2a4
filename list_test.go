package blist

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

type intCmp struct{}

func (intCmp) Equal(a, b int) (bool, error) { return a == b, nil }
func (intCmp) Less(a, b int) (bool, error)  { return a < b, nil }

func intConfig() Config[int] {
	return Config[int]{Compare: intCmp{}}
}

type sortPair struct{ key, seq int }

type sortPairCmp struct{}

func (sortPairCmp) Equal(a, b sortPair) (bool, error) { return a.key == b.key, nil }
func (sortPairCmp) Less(a, b sortPair) (bool, error)  { return a.key < b.key, nil }

func buildInts(t *testing.T, vs ...int) *List[int] {
	t.Helper()
	l, err := New[int](intConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for _, v := range vs {
		if err := l.Append(v); err != nil {
			t.Fatalf("Append(%d) failed: %v", v, err)
		}
	}
	return l
}

func mustSlice(t *testing.T, l *List[int]) []int {
	t.Helper()
	out, err := l.GetSlice(0, l.Len())
	if err != nil {
		t.Fatalf("GetSlice failed: %v", err)
	}
	return out
}

func equalSlices(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestEmptyListPopFails is spec §8 scenario 1.
func TestEmptyListPopFails(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blist")
	defer teardown()

	l, err := New[int](intConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", l.Len())
	}
	if _, err := l.Pop(); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("Pop() on empty list = %v, want ErrIndexOutOfRange", err)
	}
}

// TestDeleteRangeScenario is spec §8 scenario 2.
func TestDeleteRangeScenario(t *testing.T) {
	l, err := New[int](intConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	vs := make([]int, 10000)
	for i := range vs {
		vs[i] = i
	}
	if err := l.Extend(vs); err != nil {
		t.Fatalf("Extend failed: %v", err)
	}
	v, err := l.Get(7777)
	if err != nil || v != 7777 {
		t.Fatalf("Get(7777) = %d, %v, want 7777, nil", v, err)
	}
	if err := l.SetSlice(0, 5000, nil); err != nil {
		t.Fatalf("SetSlice(delete) failed: %v", err)
	}
	v, err = l.Get(0)
	if err != nil || v != 5000 {
		t.Fatalf("Get(0) = %d, %v, want 5000, nil", v, err)
	}
	if l.Len() != 5000 {
		t.Fatalf("Len() = %d, want 5000", l.Len())
	}
}

// TestSortAscending is spec §8 scenario 3.
func TestSortAscending(t *testing.T) {
	l := buildInts(t, 3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5)
	if err := l.Sort(false); err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	want := []int{1, 1, 2, 3, 3, 4, 5, 5, 5, 6, 9}
	if got := mustSlice(t, l); !equalSlices(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// TestSortDescendingStable is spec §8 scenario 4.
func TestSortDescendingStable(t *testing.T) {
	l := buildInts(t, 5, 4, 3, 2, 1)
	if err := l.Sort(true); err != nil {
		t.Fatalf("Sort(reverse) failed: %v", err)
	}
	want := []int{5, 4, 3, 2, 1}
	if got := mustSlice(t, l); !equalSlices(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// TestSortDescendingStableWithTies guards against implementing Sort(true)
// by negating the comparator: two elements with equal keys have
// Less(a,b) == Less(b,a) == false, and negation makes both true, which a
// gallop-sort run detector reads as a strictly descending pair and
// reverses — swapping the tie. A descending sort must leave ties in their
// original relative order instead (Testable Property #8).
func TestSortDescendingStableWithTies(t *testing.T) {
	l, err := New[sortPair](Config[sortPair]{Compare: sortPairCmp{}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	keys := []int{1, 2, 2, 1, 2, 1, 2}
	for i, k := range keys {
		if err := l.Append(sortPair{key: k, seq: i}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if err := l.Sort(true); err != nil {
		t.Fatalf("Sort(reverse) failed: %v", err)
	}
	got, err := l.GetSlice(0, l.Len())
	if err != nil {
		t.Fatalf("GetSlice failed: %v", err)
	}
	lastSeqByKey := map[int]int{}
	for _, p := range got {
		if prev, ok := lastSeqByKey[p.key]; ok && prev > p.seq {
			t.Fatalf("stability violated under reverse: key %d saw seq %d after %d", p.key, p.seq, prev)
		}
		lastSeqByKey[p.key] = p.seq
	}
	if got[0].key != 2 || got[len(got)-1].key != 1 {
		t.Fatalf("expected descending key order, got %v", got)
	}
}

// TestRepeatDoesNotMutateOriginal is spec §8 scenario 5 and the repeat law
// (property 7) / shared-subtree isolation (property 9).
func TestRepeatDoesNotMutateOriginal(t *testing.T) {
	a := buildInts(t, 1, 2)
	b, err := a.Repeat(3)
	if err != nil {
		t.Fatalf("Repeat failed: %v", err)
	}
	want := []int{1, 2, 1, 2, 1, 2}
	if got := mustSlice(t, b); !equalSlices(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got := mustSlice(t, a); !equalSlices(got, []int{1, 2}) {
		t.Fatalf("original mutated by Repeat: got %v", got)
	}
	if err := b.Set(0, 99); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := mustSlice(t, a); !equalSlices(got, []int{1, 2}) {
		t.Fatalf("mutating repeated list leaked into original: got %v", got)
	}
}

// TestSetCleanExercisesDirtyIndex is spec §8 scenario 6.
func TestSetCleanExercisesDirtyIndex(t *testing.T) {
	a := buildInts(t, 0)
	l, err := a.Repeat(10)
	if err != nil {
		t.Fatalf("Repeat failed: %v", err)
	}
	if err := l.Set(4, 99); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	want := []int{0, 0, 0, 0, 99, 0, 0, 0, 0, 0}
	if got := mustSlice(t, l); !equalSlices(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// TestForcesTwoThenThreeLevelTree is spec §8 scenario 7.
func TestForcesTwoThenThreeLevelTree(t *testing.T) {
	cfg := Config[int]{Limit: 8}
	l, err := New[int](cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	n := 8 * 8 * 3
	for i := 0; i < n; i++ {
		if err := l.Append(i); err != nil {
			t.Fatalf("Append(%d) failed: %v", i, err)
		}
	}
	for i := 0; i < n; i++ {
		v, err := l.Get(i)
		if err != nil || v != i {
			t.Fatalf("Get(%d) = %d, %v, want %d, nil", i, v, err, i)
		}
	}
	if err := l.CheckInvariants(); err != nil {
		t.Fatalf("CheckInvariants failed: %v", err)
	}
}

// TestInsertClampsOutOfRangeIndex is spec §8 scenario 8.
func TestInsertClampsOutOfRangeIndex(t *testing.T) {
	l, err := New[int](intConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	vs := make([]int, 100)
	for i := range vs {
		vs[i] = i
	}
	if err := l.Extend(vs); err != nil {
		t.Fatalf("Extend failed: %v", err)
	}
	if err := l.Insert(-1000000, -1); err != nil {
		t.Fatalf("Insert with very negative index failed: %v", err)
	}
	v, err := l.Get(0)
	if err != nil || v != -1 {
		t.Fatalf("Get(0) = %d, %v, want -1, nil", v, err)
	}
	if err := l.Insert(1000000000, -2); err != nil {
		t.Fatalf("Insert with very large index failed: %v", err)
	}
	v, err = l.Get(-1)
	if err != nil || v != -2 {
		t.Fatalf("Get(-1) = %d, %v, want -2, nil", v, err)
	}
}

func TestIndexRemoveCountContains(t *testing.T) {
	l := buildInts(t, 10, 20, 30, 20, 40)
	idx, err := l.Index(20, 0, l.Len())
	if err != nil || idx != 1 {
		t.Fatalf("Index(20) = %d, %v, want 1, nil", idx, err)
	}
	n, err := l.Count(20)
	if err != nil || n != 2 {
		t.Fatalf("Count(20) = %d, %v, want 2, nil", n, err)
	}
	ok, err := l.Contains(99)
	if err != nil || ok {
		t.Fatalf("Contains(99) = %v, %v, want false, nil", ok, err)
	}
	if err := l.Remove(20); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	want := []int{10, 30, 20, 40}
	if got := mustSlice(t, l); !equalSlices(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if err := l.Remove(404); !errors.Is(err, ErrValueError) {
		t.Fatalf("Remove(404) = %v, want ErrValueError", err)
	}
}

func TestNegativeIndexing(t *testing.T) {
	l := buildInts(t, 1, 2, 3, 4, 5)
	v, err := l.Get(-1)
	if err != nil || v != 5 {
		t.Fatalf("Get(-1) = %d, %v, want 5, nil", v, err)
	}
	if err := l.Set(-2, 99); err != nil {
		t.Fatalf("Set(-2) failed: %v", err)
	}
	want := []int{1, 2, 3, 99, 5}
	if got := mustSlice(t, l); !equalSlices(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtendedSliceGetAndSet(t *testing.T) {
	l := buildInts(t, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	got, err := l.ExtendedSlice(0, 10, 2)
	if err != nil {
		t.Fatalf("ExtendedSlice failed: %v", err)
	}
	if !equalSlices(got, []int{0, 2, 4, 6, 8}) {
		t.Fatalf("got %v, want [0 2 4 6 8]", got)
	}
	if err := l.SetExtendedSlice(0, 10, 2, []int{100, 102, 104, 106, 108}); err != nil {
		t.Fatalf("SetExtendedSlice failed: %v", err)
	}
	want := []int{100, 1, 102, 3, 104, 5, 106, 7, 108, 9}
	if got := mustSlice(t, l); !equalSlices(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if err := l.SetExtendedSlice(0, 10, 2, []int{1, 2}); !errors.Is(err, ErrValueError) {
		t.Fatalf("SetExtendedSlice with mismatched length = %v, want ErrValueError", err)
	}
}

func TestConcatAdditivity(t *testing.T) {
	a := buildInts(t, 1, 2, 3)
	b := buildInts(t, 4, 5)
	c := a.Concat(b)
	if c.Len() != a.Len()+b.Len() {
		t.Fatalf("Concat len = %d, want %d", c.Len(), a.Len()+b.Len())
	}
	if got := mustSlice(t, c); !equalSlices(got, []int{1, 2, 3, 4, 5}) {
		t.Fatalf("got %v", got)
	}
	if got := mustSlice(t, a); !equalSlices(got, []int{1, 2, 3}) {
		t.Fatalf("Concat mutated a: got %v", got)
	}
}

func TestRepeatNonPositiveYieldsEmpty(t *testing.T) {
	a := buildInts(t, 1, 2, 3)
	for _, n := range []int{0, -1, -100} {
		b, err := a.Repeat(n)
		if err != nil {
			t.Fatalf("Repeat(%d) failed: %v", n, err)
		}
		if b.Len() != 0 {
			t.Fatalf("Repeat(%d).Len() = %d, want 0", n, b.Len())
		}
	}
}

func TestBuilderProducesSameResultAsIncrementalAppend(t *testing.T) {
	b := NewBuilder[int](intConfig())
	for i := 0; i < 500; i++ {
		if err := b.Append(i); err != nil {
			t.Fatalf("Builder.Append failed: %v", err)
		}
	}
	built := b.List()
	if built.Len() != 500 {
		t.Fatalf("Len() = %d, want 500", built.Len())
	}
	for i := 0; i < 500; i++ {
		v, err := built.Get(i)
		if err != nil || v != i {
			t.Fatalf("Get(%d) = %d, %v, want %d, nil", i, v, err, i)
		}
	}
	// A second call to List must not panic and must return an
	// independently mutable List (builder.go's documented "may be called
	// multiple times" contract).
	again := b.List()
	if err := again.Set(0, -1); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, err := built.Get(0)
	if err != nil || v != 0 {
		t.Fatalf("first List() result mutated by a later independent List(): Get(0) = %d, %v", v, err)
	}
}

type refcountedElem struct {
	id int
}

type countingRefcounter struct {
	retained, released int
}

func (c *countingRefcounter) Retain(refcountedElem)  { c.retained++ }
func (c *countingRefcounter) Release(refcountedElem) { c.released++ }

func TestSetReleasesDisplacedElement(t *testing.T) {
	rc := &countingRefcounter{}
	cfg := Config[refcountedElem]{Refcount: rc}
	l, err := New[refcountedElem](cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := l.Append(refcountedElem{id: 1}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := l.Set(0, refcountedElem{id: 2}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if rc.released != 1 {
		t.Fatalf("released = %d, want 1 (the displaced element)", rc.released)
	}
}

func TestCheckInvariantsOnBuiltList(t *testing.T) {
	l, err := New[int](btreeConfigForTest())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for i := 0; i < 1000; i++ {
		if err := l.Append(i); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if err := l.CheckInvariants(); err != nil {
		t.Fatalf("CheckInvariants failed: %v", err)
	}
}

func btreeConfigForTest() Config[int] {
	return Config[int]{Limit: 16}
}
