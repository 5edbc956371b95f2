package store

import (
	"context"
	"testing"
)

func TestMemoryStoreValues(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	if _, ok, _ := st.Get(ctx, "missing"); ok {
		t.Error("Get(missing) reported existence")
	}

	st.Set(ctx, "k", "v")
	value, ok, _ := st.Get(ctx, "k")
	if !ok || value != "v" {
		t.Errorf("Get(k) = %q, %v; want v, true", value, ok)
	}

	st.Delete(ctx, "k")
	if _, ok, _ := st.Get(ctx, "k"); ok {
		t.Error("key survived Delete")
	}
	// Deleting a missing key is not an error.
	if err := st.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) = %v, want nil", err)
	}
}

func TestMemoryStoreSets(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	st.SetAdd(ctx, "s", "a", "b")
	st.SetAdd(ctx, "s", "b", "c")

	members, _ := st.SetMembers(ctx, "s")
	if len(members) != 3 {
		t.Errorf("SetMembers = %v, want 3 unique members", members)
	}

	st.SetRemove(ctx, "s", "a", "nope")
	members, _ = st.SetMembers(ctx, "s")
	if len(members) != 2 {
		t.Errorf("SetMembers after remove = %v, want 2", members)
	}
}

func TestMemoryStoreDeleteMany(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	st.Set(ctx, "a", "1")
	st.Set(ctx, "b", "2")
	st.SetAdd(ctx, "c", "x")

	if err := st.DeleteMany(ctx, "a", "c", "missing"); err != nil {
		t.Fatalf("DeleteMany failed: %v", err)
	}

	if _, ok, _ := st.Get(ctx, "a"); ok {
		t.Error("a survived DeleteMany")
	}
	if members, _ := st.SetMembers(ctx, "c"); len(members) != 0 {
		t.Errorf("set c = %v, want empty", members)
	}
	if _, ok, _ := st.Get(ctx, "b"); !ok {
		t.Error("b was deleted but not requested")
	}
}
