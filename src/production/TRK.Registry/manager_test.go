package registry

import (
	"context"
	"errors"
	"strings"
	"testing"

	logger "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Logger"
	trkmodels "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Models"
	store "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Store"
)

func newTestManager() (*Manager, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return NewManager(st, logger.GetGlobalLogger()), st
}

func tenantIdent(tenantID, planTier string) *trkmodels.Identity {
	return &trkmodels.Identity{TenantID: tenantID, Role: trkmodels.RoleTenant, PlanTier: planTier}
}

// countingStore wraps a Store and counts mutating calls.
type countingStore struct {
	store.Store
	writes int
}

func (c *countingStore) Set(ctx context.Context, key, value string) error {
	c.writes++
	return c.Store.Set(ctx, key, value)
}

func (c *countingStore) Delete(ctx context.Context, key string) error {
	c.writes++
	return c.Store.Delete(ctx, key)
}

func (c *countingStore) SetAdd(ctx context.Context, key string, members ...string) error {
	c.writes++
	return c.Store.SetAdd(ctx, key, members...)
}

func (c *countingStore) SetRemove(ctx context.Context, key string, members ...string) error {
	c.writes++
	return c.Store.SetRemove(ctx, key, members...)
}

func (c *countingStore) DeleteMany(ctx context.Context, keys ...string) error {
	c.writes++
	return c.Store.DeleteMany(ctx, keys...)
}

func mustAdd(t *testing.T, m *Manager, ident *trkmodels.Identity, ids ...string) *trkmodels.MutationResult {
	t.Helper()
	result, err := m.Add(context.Background(), ident, ids)
	if err != nil {
		t.Fatalf("Add(%v) failed: %v", ids, err)
	}
	if !result.OK {
		t.Fatalf("Add(%v) not ok: %+v", ids, result)
	}
	return result
}

func TestAddAndList(t *testing.T) {
	m, _ := newTestManager()
	ident := tenantIdent("acme", "enterprise")

	result := mustAdd(t, m, ident, "gps-002", "gps-001")
	if result.Count != 2 {
		t.Errorf("Count = %d, want 2", result.Count)
	}

	trackers, err := m.List(context.Background(), ident)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(trackers) != 2 || trackers[0] != "gps-001" || trackers[1] != "gps-002" {
		t.Errorf("List = %v, want sorted [gps-001 gps-002]", trackers)
	}
}

func TestAddSanitizesCandidates(t *testing.T) {
	m, _ := newTestManager()
	ident := tenantIdent("acme", "enterprise")

	overlong := strings.Repeat("x", trkmodels.MaxTrackerIDLength+1)
	result := mustAdd(t, m, ident, "  gps-001  ", "gps-001", "", "   ", overlong)
	if result.Count != 1 {
		t.Errorf("Count = %d, want 1 after trim/dedupe/length filtering", result.Count)
	}

	trackers, _ := m.List(context.Background(), ident)
	if len(trackers) != 1 || trackers[0] != "gps-001" {
		t.Errorf("List = %v, want [gps-001]", trackers)
	}
}

func TestAddRejectsEmptyInput(t *testing.T) {
	m, _ := newTestManager()
	ident := tenantIdent("acme", "enterprise")

	for _, ids := range [][]string{nil, {}, {"", "   "}} {
		if _, err := m.Add(context.Background(), ident, ids); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Add(%q) error = %v, want ErrInvalidInput", ids, err)
		}
	}
}

func TestAddIdempotent(t *testing.T) {
	m, _ := newTestManager()
	ident := tenantIdent("acme", "free")

	first := mustAdd(t, m, ident, "gps-001")
	second := mustAdd(t, m, ident, "gps-001")
	if first.Count != 1 || second.Count != 1 {
		t.Errorf("counts = %d, %d, want 1, 1", first.Count, second.Count)
	}
}

func TestAddOwnershipConflict(t *testing.T) {
	m, st := newTestManager()
	owner := tenantIdent("acme", "enterprise")
	rival := tenantIdent("globex", "enterprise")

	mustAdd(t, m, owner, "gps-001")

	_, err := m.Add(context.Background(), rival, []string{"gps-900", "gps-001"})
	if !errors.Is(err, ErrOwnershipConflict) {
		t.Fatalf("error = %v, want ErrOwnershipConflict", err)
	}
	if !strings.Contains(err.Error(), "gps-001") {
		t.Errorf("error %q does not name the conflicting tracker", err)
	}

	// All-or-nothing: the non-conflicting candidate was not added either.
	rivalSet, _ := st.SetMembers(context.Background(), store.TenantTrackersKey("globex"))
	if len(rivalSet) != 0 {
		t.Errorf("rival set = %v, want empty", rivalSet)
	}
	ownerSet, _ := st.SetMembers(context.Background(), store.TenantTrackersKey("acme"))
	if len(ownerSet) != 1 {
		t.Errorf("owner set = %v, want 1 member", ownerSet)
	}
}

func TestAddQuotaExceededRollsBack(t *testing.T) {
	m, st := newTestManager()
	ident := tenantIdent("acme", "free") // limit 3

	mustAdd(t, m, ident, "gps-001", "gps-002")

	_, err := m.Add(context.Background(), ident, []string{"gps-003", "gps-004"})
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("error = %v, want ErrQuotaExceeded", err)
	}

	members, _ := st.SetMembers(context.Background(), store.TenantTrackersKey("acme"))
	if len(members) != 2 {
		t.Errorf("set has %d members after rollback, want the original 2: %v", len(members), members)
	}
	// Rolled-back candidates carry no ownership record.
	if _, ok, _ := st.Get(context.Background(), store.TrackerOwnerKey("gps-003")); ok {
		t.Error("rolled-back tracker gps-003 still has an ownership record")
	}
}

func TestAddAtQuotaReAddExistingSucceeds(t *testing.T) {
	m, _ := newTestManager()
	ident := tenantIdent("acme", "free")

	mustAdd(t, m, ident, "gps-001", "gps-002", "gps-003")

	// The union is a no-op, so the size check still passes at the limit.
	result := mustAdd(t, m, ident, "gps-002")
	if result.Count != 3 {
		t.Errorf("Count = %d, want 3", result.Count)
	}
}

func TestRemoveCascades(t *testing.T) {
	m, st := newTestManager()
	ctx := context.Background()
	ident := tenantIdent("acme", "pro")

	mustAdd(t, m, ident, "gps-001", "gps-002")
	st.Set(ctx, store.TrackerStateKey("gps-001"), `{"tracker_id":"gps-001"}`)
	st.Set(ctx, store.TrackerHistoryKey("gps-001"), `[]`)
	st.SetAdd(ctx, store.RecentTrackersKey, "gps-001")

	result, err := m.Remove(ctx, ident, []string{"gps-001"})
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if result.Removed != 1 || result.Count != 1 {
		t.Errorf("result = %+v, want removed 1, count 1", result)
	}

	if _, ok, _ := st.Get(ctx, store.TrackerOwnerKey("gps-001")); ok {
		t.Error("ownership record survived removal")
	}
	if _, ok, _ := st.Get(ctx, store.TrackerStateKey("gps-001")); ok {
		t.Error("latest-state record survived removal")
	}
	if _, ok, _ := st.Get(ctx, store.TrackerHistoryKey("gps-001")); ok {
		t.Error("history record survived removal")
	}
	recent, _ := st.SetMembers(ctx, store.RecentTrackersKey)
	if len(recent) != 0 {
		t.Errorf("recent index = %v, want empty", recent)
	}

	// A freed tracker can be claimed by another tenant.
	other := tenantIdent("globex", "free")
	if result := mustAdd(t, m, other, "gps-001"); result.Count != 1 {
		t.Errorf("re-add by other tenant: count = %d, want 1", result.Count)
	}
}

func TestRemoveAbsentTrackersIgnored(t *testing.T) {
	m, _ := newTestManager()
	ident := tenantIdent("acme", "pro")

	mustAdd(t, m, ident, "gps-001")

	result, err := m.Remove(context.Background(), ident, []string{"gps-404"})
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if result.Removed != 0 || result.Count != 1 {
		t.Errorf("result = %+v, want removed 0, count 1", result)
	}
}

func TestRemoveEmptyRawInput(t *testing.T) {
	m, _ := newTestManager()
	ident := tenantIdent("acme", "pro")
	mustAdd(t, m, ident, "gps-001")

	result, err := m.Remove(context.Background(), ident, nil)
	if err != nil {
		t.Fatalf("Remove(nil) failed: %v", err)
	}
	if !result.OK || result.Removed != 0 || result.Count != 1 {
		t.Errorf("result = %+v, want ok, removed 0, count 1", result)
	}
}

func TestRemoveAllFilteredOutIsError(t *testing.T) {
	m, _ := newTestManager()
	ident := tenantIdent("acme", "pro")

	_, err := m.Remove(context.Background(), ident, []string{"   ", ""})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestUnauthenticatedCallers(t *testing.T) {
	st := &countingStore{Store: store.NewMemoryStore()}
	m := NewManager(st, logger.GetGlobalLogger())
	ctx := context.Background()

	trackers, err := m.List(ctx, nil)
	if err != nil {
		t.Fatalf("List(nil identity) failed: %v", err)
	}
	if len(trackers) != 0 {
		t.Errorf("List(nil identity) = %v, want empty", trackers)
	}

	addResult, err := m.Add(ctx, nil, []string{"gps-001"})
	if err != nil {
		t.Fatalf("Add(nil identity) failed: %v", err)
	}
	if addResult.OK || !addResult.Unauthorized {
		t.Errorf("Add(nil identity) = %+v, want unauthorized", addResult)
	}

	removeResult, err := m.Remove(ctx, &trkmodels.Identity{}, []string{"gps-001"})
	if err != nil {
		t.Fatalf("Remove(empty identity) failed: %v", err)
	}
	if removeResult.OK || !removeResult.Unauthorized {
		t.Errorf("Remove(empty identity) = %+v, want unauthorized", removeResult)
	}

	if st.writes != 0 {
		t.Errorf("unauthenticated calls performed %d store writes, want 0", st.writes)
	}
}

func TestSanitizeTrackerIDs(t *testing.T) {
	overlong := strings.Repeat("a", trkmodels.MaxTrackerIDLength+1)
	atLimit := strings.Repeat("b", trkmodels.MaxTrackerIDLength)

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"trims and drops empty", []string{" gps-1 ", "", "  "}, []string{"gps-1"}},
		{"dedupes preserving order", []string{"b", "a", "b"}, []string{"b", "a"}},
		{"drops overlong, keeps at limit", []string{overlong, atLimit}, []string{atLimit}},
		{"nil input", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeTrackerIDs(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("sanitizeTrackerIDs(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sanitizeTrackerIDs(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}
