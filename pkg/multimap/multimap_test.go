package multimap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPutAndGet(t *testing.T) {
	m := New[string, int]()
	m.Put("a", 1)
	m.Put("a", 2)
	m.Put("b", 3)

	if diff := cmp.Diff([]int{1, 2}, m.Get("a")); diff != "" {
		t.Errorf("Get(a) mismatch (-want +got):\n%s", diff)
	}
	if got := m.Get("missing"); got == nil || len(got) != 0 {
		t.Errorf("Get(missing) = %v, want empty non-nil slice", got)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestPutAll_CopiesInput(t *testing.T) {
	m := New[string, int]()
	m.Put("a", 9)

	in := []int{1, 2, 3}
	m.PutAll("a", in)
	in[0] = 100

	if diff := cmp.Diff([]int{1, 2, 3}, m.Get("a")); diff != "" {
		t.Errorf("Get(a) mismatch (-want +got):\n%s", diff)
	}

	m.PutAll("empty", nil)
	if !m.ContainsKey("empty") {
		t.Error("PutAll(nil) should still register the key")
	}
}

func TestRemove(t *testing.T) {
	m := New[string, int]()
	m.Put("a", 1)
	m.Put("b", 2)

	values, ok := m.Remove("a")
	if !ok || len(values) != 1 || values[0] != 1 {
		t.Errorf("Remove(a) = (%v, %v), want ([1], true)", values, ok)
	}
	if m.ContainsKey("a") {
		t.Error("a should be gone after Remove")
	}
	if _, ok := m.Remove("a"); ok {
		t.Error("second Remove(a) should report absent")
	}
	if diff := cmp.Diff([]string{"b"}, m.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestKeysValuesFlat(t *testing.T) {
	m := New[string, int]()
	m.Put("z", 1)
	m.Put("y", 2)
	m.Put("z", 3)

	if diff := cmp.Diff([]string{"z", "y"}, m.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]int{{1, 3}, {2}}, m.Values()); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 3, 2}, m.FlatValues()); diff != "" {
		t.Errorf("FlatValues() mismatch (-want +got):\n%s", diff)
	}

	m.Clear()
	if m.Len() != 0 || len(m.Keys()) != 0 {
		t.Error("Clear should remove every key")
	}
}

func TestEqual(t *testing.T) {
	a := New[string, int]()
	b := New[string, int]()
	a.Put("x", 1)
	a.Put("y", 2)
	b.Put("y", 2)
	b.Put("x", 1)

	if !Equal(a, b) {
		t.Error("maps with same contents in different order should be equal")
	}

	b.Put("x", 5)
	if Equal(a, b) {
		t.Error("maps with different lists should not be equal")
	}
	if Equal(a, nil) {
		t.Error("map should not equal nil")
	}
}

func TestString(t *testing.T) {
	m := New[string, int]()
	m.Put("a", 1)
	m.Put("a", 2)
	m.PutAll("b", nil)

	want := "a: 1, 2\nb: (empty)\n"
	if got := m.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
