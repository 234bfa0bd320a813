package table

import "testing"

func TestInsertGetOverwrite(t *testing.T) {
	tb := New()

	tb.Insert([]byte("k"), 'v', 1)
	if it, ok := tb.Get([]byte("k")); !ok || it.Value != 1 {
		t.Fatalf("expected value 1, got %+v ok=%v", it, ok)
	}

	tb.Insert([]byte("k"), 'v', 2)
	if tb.Count() != 1 {
		t.Fatalf("overwrite must not change item count, got %d", tb.Count())
	}
	if it, ok := tb.Get([]byte("k")); !ok || it.Value != 2 {
		t.Fatalf("expected value 2 after overwrite, got %+v ok=%v", it, ok)
	}
}

func TestInsertManyAndGetAll(t *testing.T) {
	tb := New()
	keys := []string{"a", "b", "c", "d", "e", "/x/y", "/x/y/z"}

	for i, k := range keys {
		tb.Insert([]byte(k), 'v', i)
	}

	if tb.Count() != len(keys) {
		t.Fatalf("expected %d items, got %d", len(keys), tb.Count())
	}

	for i, k := range keys {
		it, ok := tb.Get([]byte(k))
		if !ok {
			t.Fatalf("missing key %q", k)
		}
		if it.Value != i {
			t.Fatalf("key %q: expected %d got %v", k, i, it.Value)
		}
	}
}

func TestCollisionSingleBucket(t *testing.T) {
	tb := New()
	tb.Insert([]byte("a"), 'v', 1)
	tb.Insert([]byte("b"), 'v', 2)
	tb.Insert([]byte("c"), 'v', 3)

	// Pin the bucket count to 1 directly, so all three items share one
	// chain and Get must actually walk it instead of landing on separate
	// buckets by chance.
	tb.resizeBuckets(1)
	if len(tb.buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(tb.buckets))
	}

	seen := map[string]int{}
	for _, k := range []string{"a", "b", "c"} {
		it, ok := tb.Get([]byte(k))
		if !ok {
			t.Fatalf("missing %q", k)
		}
		seen[k] = it.Value.(int)
	}

	if seen["a"] != 1 || seen["b"] != 2 || seen["c"] != 3 {
		t.Fatalf("unexpected values: %+v", seen)
	}
}

func TestRemove(t *testing.T) {
	tb := New()
	tb.Insert([]byte("k"), 'v', 1)

	if !tb.Remove([]byte("k")) {
		t.Fatal("expected removal to succeed")
	}
	if tb.Remove([]byte("k")) {
		t.Fatal("expected second removal to report false")
	}
	if _, ok := tb.Get([]byte("k")); ok {
		t.Fatal("key should be gone after removal")
	}
	if tb.Count() != 0 {
		t.Fatalf("expected 0 items after removal, got %d", tb.Count())
	}
}

func TestIterVisitsEveryLiveItem(t *testing.T) {
	tb := New()
	want := map[string]bool{"a": true, "b": true, "c": true, "d": true}
	for k := range want {
		tb.Insert([]byte(k), 'v', nil)
	}
	tb.Remove([]byte("b"))
	delete(want, "b")

	got := map[string]bool{}
	tb.Iter(func(_ int, item Item) bool {
		got[string(item.Key)] = true
		return true
	})

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for k := range want {
		if !got[k] {
			t.Fatalf("iter missed key %q", k)
		}
	}
}
