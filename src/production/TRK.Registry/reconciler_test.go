package registry

import (
	"context"
	"encoding/json"
	"testing"

	store "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Store"
)

func TestReconcileSnapshotFallbackBackfillsSet(t *testing.T) {
	m, st := newTestManager()
	ctx := context.Background()

	// Legacy state: snapshot present, set primitive empty.
	st.Set(ctx, store.TenantSnapshotKey("acme"), `["X","Y"]`)

	trackers, err := m.List(ctx, tenantIdent("acme", "free"))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(trackers) != 2 || trackers[0] != "X" || trackers[1] != "Y" {
		t.Errorf("List = %v, want [X Y]", trackers)
	}

	// The set primitive was backfilled by the read.
	members, _ := st.SetMembers(ctx, store.TenantTrackersKey("acme"))
	if !sameMembers([]string{"X", "Y"}, members) {
		t.Errorf("set after backfill = %v, want {X Y}", members)
	}
}

func TestReconcileSetWinsOverStaleSnapshot(t *testing.T) {
	m, st := newTestManager()
	ctx := context.Background()

	st.SetAdd(ctx, store.TenantTrackersKey("acme"), "gps-001")
	// Stale snapshot naming a tracker that was since removed.
	st.Set(ctx, store.TenantSnapshotKey("acme"), `["gps-001","gps-zombie"]`)

	trackers, err := m.List(ctx, tenantIdent("acme", "free"))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(trackers) != 1 || trackers[0] != "gps-001" {
		t.Errorf("List = %v, want [gps-001]; stale snapshot must not resurrect members", trackers)
	}

	// The stale snapshot was rewritten from the authoritative set.
	raw, ok, _ := st.Get(ctx, store.TenantSnapshotKey("acme"))
	if !ok {
		t.Fatal("snapshot missing after List")
	}
	var snapshot []string
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		t.Fatalf("snapshot not decodable: %v", err)
	}
	if len(snapshot) != 1 || snapshot[0] != "gps-001" {
		t.Errorf("snapshot after refresh = %v, want [gps-001]", snapshot)
	}
}

func TestReconcileCorruptSnapshotTreatedAsAbsent(t *testing.T) {
	m, st := newTestManager()
	ctx := context.Background()

	st.Set(ctx, store.TenantSnapshotKey("acme"), `{not json`)

	trackers, err := m.List(ctx, tenantIdent("acme", "free"))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(trackers) != 0 {
		t.Errorf("List = %v, want empty", trackers)
	}
}

func TestReconcileBothEmpty(t *testing.T) {
	m, _ := newTestManager()

	trackers, err := m.List(context.Background(), tenantIdent("acme", "free"))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if trackers == nil || len(trackers) != 0 {
		t.Errorf("List = %v, want non-nil empty slice", trackers)
	}
}

func TestListRefreshesAbsentSnapshot(t *testing.T) {
	m, st := newTestManager()
	ctx := context.Background()

	// Set populated out-of-band, no snapshot yet.
	st.SetAdd(ctx, store.TenantTrackersKey("acme"), "gps-001", "gps-002")

	if _, err := m.List(ctx, tenantIdent("acme", "free")); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	raw, ok, _ := st.Get(ctx, store.TenantSnapshotKey("acme"))
	if !ok {
		t.Fatal("snapshot was not written opportunistically")
	}
	var snapshot []string
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		t.Fatalf("snapshot not decodable: %v", err)
	}
	if !sameMembers([]string{"gps-001", "gps-002"}, snapshot) {
		t.Errorf("snapshot = %v, want {gps-001 gps-002}", snapshot)
	}
}
