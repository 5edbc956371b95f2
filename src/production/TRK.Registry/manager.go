package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	logger "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Logger"
	trkmodels "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Models"
	store "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Store"
)

// Manager mediates all reads and mutations of a tenant's tracker
// membership, enforcing ownership uniqueness and plan-tier quotas on top
// of a key-value store that offers no cross-key transactions. Within one
// call the sub-steps run strictly in order: ownership check before
// mutation, mutation before the quota re-check, quota re-check before the
// snapshot write. That ordering carries the correctness argument.
type Manager struct {
	store  store.Store
	logger *logger.Logger
	now    func() time.Time
}

// NewManager creates a registry manager over the given store.
func NewManager(st store.Store, log *logger.Logger) *Manager {
	return &Manager{
		store:  st,
		logger: log.WithComponent("registry"),
		now:    time.Now,
	}
}

// List returns the tenant's tracker identifiers, sorted. Anonymous callers
// get an empty list rather than an error; the read stays side-effect-free
// for them. When the authoritative set has members and the snapshot was
// stale or absent, the snapshot is rewritten opportunistically.
func (m *Manager) List(ctx context.Context, ident *trkmodels.Identity) ([]string, error) {
	if !ident.IsAuthenticated() {
		return []string{}, nil
	}

	view, err := m.reconcile(ctx, ident.TenantID)
	if err != nil {
		return nil, err
	}

	if len(view.trackerIDs) > 0 && !view.snapshotFresh {
		// Best effort: the read is already correct without it.
		if err := m.writeSnapshot(ctx, ident.TenantID, view.trackerIDs); err != nil {
			m.logger.WithTenant(ident.TenantID).WithError(err).Warn("snapshot refresh failed")
		}
	}

	return view.trackerIDs, nil
}

// Add registers the candidate trackers to the caller's tenant. The batch
// is all-or-nothing for the ownership check: one tracker owned by a
// foreign tenant rejects the whole request. Re-adding trackers the tenant
// already owns is a no-op. The quota check re-reads the set after the
// union and compensates by removing exactly the members this call
// introduced, which keeps it correct under interleaving at the cost of a
// soft (not hard) limit.
func (m *Manager) Add(ctx context.Context, ident *trkmodels.Identity, trackerIDs []string) (*trkmodels.MutationResult, error) {
	if !ident.IsAuthenticated() {
		return &trkmodels.MutationResult{OK: false, Unauthorized: true}, nil
	}

	candidates := sanitizeTrackerIDs(trackerIDs)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no usable tracker ids", ErrInvalidInput)
	}

	for _, id := range candidates {
		owner, ok, err := m.store.Get(ctx, store.TrackerOwnerKey(id))
		if err != nil {
			return nil, err
		}
		if ok && owner != ident.TenantID {
			return nil, fmt.Errorf("%w: %s", ErrOwnershipConflict, id)
		}
	}

	// Heal any snapshot-only membership first so the quota re-read sees
	// the whole set, and remember the pre-union membership to know what
	// this call actually introduces.
	view, err := m.reconcile(ctx, ident.TenantID)
	if err != nil {
		return nil, err
	}
	preMembers := make(map[string]struct{}, len(view.trackerIDs))
	for _, id := range view.trackerIDs {
		preMembers[id] = struct{}{}
	}
	newcomers := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if _, ok := preMembers[id]; !ok {
			newcomers = append(newcomers, id)
		}
	}

	setKey := store.TenantTrackersKey(ident.TenantID)
	if err := m.store.SetAdd(ctx, setKey, candidates...); err != nil {
		return nil, err
	}

	members, err := m.store.SetMembers(ctx, setKey)
	if err != nil {
		return nil, err
	}

	limit := QuotaFor(ident.PlanTier)
	if len(members) > limit {
		if err := m.store.SetRemove(ctx, setKey, newcomers...); err != nil {
			return nil, err
		}
		if members, err = m.store.SetMembers(ctx, setKey); err != nil {
			return nil, err
		}
		m.logger.WithTenant(ident.TenantID).
			WithField("limit", limit).
			WithField("count", len(members)).
			Info("tracker add rolled back over quota")
		return nil, fmt.Errorf("%w: limit %d for plan tier %q", ErrQuotaExceeded, limit, ident.PlanTier)
	}

	if err := m.writeSnapshot(ctx, ident.TenantID, members); err != nil {
		return nil, err
	}
	for _, id := range candidates {
		if err := m.store.Set(ctx, store.TrackerOwnerKey(id), ident.TenantID); err != nil {
			return nil, err
		}
	}

	return &trkmodels.MutationResult{OK: true, Count: len(members)}, nil
}

// Remove unregisters trackers from the caller's tenant. Identifiers not
// currently in the membership set are silently ignored; an entirely empty
// request removes nothing and succeeds. Ownership records are deleted with
// the membership, and telemetry side records are cleaned up best effort.
func (m *Manager) Remove(ctx context.Context, ident *trkmodels.Identity, trackerIDs []string) (*trkmodels.MutationResult, error) {
	if !ident.IsAuthenticated() {
		return &trkmodels.MutationResult{OK: false, Unauthorized: true}, nil
	}

	view, err := m.reconcile(ctx, ident.TenantID)
	if err != nil {
		return nil, err
	}

	if len(trackerIDs) == 0 {
		return &trkmodels.MutationResult{OK: true, Count: len(view.trackerIDs)}, nil
	}

	candidates := sanitizeTrackerIDs(trackerIDs)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no usable tracker ids", ErrInvalidInput)
	}

	memberSet := make(map[string]struct{}, len(view.trackerIDs))
	for _, id := range view.trackerIDs {
		memberSet[id] = struct{}{}
	}
	present := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if _, ok := memberSet[id]; ok {
			present = append(present, id)
		}
	}

	if len(present) == 0 {
		return &trkmodels.MutationResult{OK: true, Count: len(view.trackerIDs)}, nil
	}

	setKey := store.TenantTrackersKey(ident.TenantID)
	if err := m.store.SetRemove(ctx, setKey, present...); err != nil {
		return nil, err
	}

	remaining, err := m.store.SetMembers(ctx, setKey)
	if err != nil {
		return nil, err
	}

	if err := m.writeSnapshot(ctx, ident.TenantID, remaining); err != nil {
		return nil, err
	}

	for _, id := range present {
		if err := m.store.Delete(ctx, store.TrackerOwnerKey(id)); err != nil {
			return nil, err
		}
	}

	m.cleanupSideRecords(ctx, present)

	return &trkmodels.MutationResult{OK: true, Removed: len(present), Count: len(remaining)}, nil
}

// cleanupSideRecords drops telemetry state, history and recent-index
// membership for removed trackers. Failures are logged and swallowed:
// the cleanup is advisory, never a correctness requirement of Remove.
func (m *Manager) cleanupSideRecords(ctx context.Context, trackerIDs []string) {
	keys := make([]string, 0, len(trackerIDs)*2)
	for _, id := range trackerIDs {
		keys = append(keys, store.TrackerStateKey(id), store.TrackerHistoryKey(id))
	}
	if err := m.store.DeleteMany(ctx, keys...); err != nil {
		m.logger.WithError(err).Warn("telemetry record cleanup failed")
	}
	if err := m.store.SetRemove(ctx, store.RecentTrackersKey, trackerIDs...); err != nil {
		m.logger.WithError(err).Warn("recent-telemetry index cleanup failed")
	}
}

// sanitizeTrackerIDs trims candidates, drops empty and over-length ids,
// and dedupes while preserving input order.
func sanitizeTrackerIDs(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" || len(id) > trkmodels.MaxTrackerIDLength {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
