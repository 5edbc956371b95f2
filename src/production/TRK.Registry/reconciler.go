package registry

import (
	"context"
	"encoding/json"
	"sort"

	store "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Store"
)

// registryView is the reconciled, authoritative view of one tenant's
// membership, plus whether the stored snapshot already matched it.
type registryView struct {
	trackerIDs    []string
	snapshotFresh bool
}

// reconcile resolves the membership set primitive against the JSON
// snapshot. The set wins whenever it has members; an empty set falls back
// to the snapshot and backfills the set with its members. The migration is
// one-way: once the set primitive is populated, snapshot content can never
// resurrect stale members. Both read and write paths go through here so
// the consistency rule lives in exactly one place.
func (m *Manager) reconcile(ctx context.Context, tenantID string) (*registryView, error) {
	members, err := m.store.SetMembers(ctx, store.TenantTrackersKey(tenantID))
	if err != nil {
		return nil, err
	}

	snapshot, err := m.readSnapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if len(members) > 0 {
		sort.Strings(members)
		return &registryView{trackerIDs: members, snapshotFresh: sameMembers(members, snapshot)}, nil
	}

	if len(snapshot) > 0 {
		// Forward migration: seed the set so subsequent reads take the
		// fast set-primitive path.
		if err := m.store.SetAdd(ctx, store.TenantTrackersKey(tenantID), snapshot...); err != nil {
			return nil, err
		}
		sort.Strings(snapshot)
		return &registryView{trackerIDs: snapshot, snapshotFresh: true}, nil
	}

	return &registryView{trackerIDs: []string{}, snapshotFresh: true}, nil
}

// readSnapshot decodes the cached snapshot. A missing or undecodable
// snapshot is treated as absent: it is a cache, not truth.
func (m *Manager) readSnapshot(ctx context.Context, tenantID string) ([]string, error) {
	raw, ok, err := m.store.Get(ctx, store.TenantSnapshotKey(tenantID))
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var trackerIDs []string
	if err := json.Unmarshal([]byte(raw), &trackerIDs); err != nil {
		m.logger.WithTenant(tenantID).WithError(err).Warn("discarding undecodable tracker snapshot")
		return nil, nil
	}
	return sanitizeTrackerIDs(trackerIDs), nil
}

// writeSnapshot persists the denormalized snapshot, sorted for stable
// bulk reads.
func (m *Manager) writeSnapshot(ctx context.Context, tenantID string, trackerIDs []string) error {
	sorted := append([]string(nil), trackerIDs...)
	sort.Strings(sorted)

	payload, err := json.Marshal(sorted)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, store.TenantSnapshotKey(tenantID), string(payload))
}

// sameMembers compares two id slices as sets.
func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
