package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	trkmodels "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Models"
	store "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Store"
)

// Inspect classifies a single tracker's ingestion pipeline health from
// registry and telemetry state. Read-only, admin callers only.
func (m *Manager) Inspect(ctx context.Context, ident *trkmodels.Identity, trackerID string) (*trkmodels.TrackerDiagnostics, error) {
	if !ident.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	trackerID = strings.TrimSpace(trackerID)
	if trackerID == "" || len(trackerID) > trkmodels.MaxTrackerIDLength {
		return nil, fmt.Errorf("%w: malformed tracker id", ErrInvalidInput)
	}

	diag := &trkmodels.TrackerDiagnostics{TrackerID: trackerID}

	_, hasCredential, err := m.store.Get(ctx, store.TrackerCredentialKey(trackerID))
	if err != nil {
		return nil, err
	}
	diag.CredentialConfigured = hasCredential

	owner, hasOwner, err := m.store.Get(ctx, store.TrackerOwnerKey(trackerID))
	if err != nil {
		return nil, err
	}
	if hasOwner {
		diag.TenantID = owner
		members, err := m.store.SetMembers(ctx, store.TenantTrackersKey(owner))
		if err != nil {
			return nil, err
		}
		for _, id := range members {
			if id == trackerID {
				diag.InTenantSet = true
				break
			}
		}
	}

	reportedAt, err := m.lastReportedAt(ctx, trackerID)
	if err != nil {
		return nil, err
	}
	now := m.now()
	if reportedAt != nil {
		diag.LastReportedAt = reportedAt
		diag.LastReportedAge = ageBucket(now.Sub(*reportedAt), *reportedAt)
	}

	diag.PipelineStatus = pipelineStatus(hasCredential, hasOwner, reportedAt, now)
	return diag, nil
}

func (m *Manager) lastReportedAt(ctx context.Context, trackerID string) (*time.Time, error) {
	raw, ok, err := m.store.Get(ctx, store.TrackerStateKey(trackerID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var state trkmodels.TrackerState
	if err := json.Unmarshal([]byte(raw), &state); err != nil || state.ReportedAt.IsZero() {
		return nil, nil
	}
	reportedAt := state.ReportedAt
	return &reportedAt, nil
}

// pipelineStatus applies the fixed decision order: credential, ownership,
// telemetry presence, then age thresholds.
func pipelineStatus(hasCredential, hasOwner bool, reportedAt *time.Time, now time.Time) string {
	switch {
	case !hasCredential:
		return trkmodels.PipelineMisconfigured
	case !hasOwner:
		return trkmodels.PipelineNotRegistered
	case reportedAt == nil:
		return trkmodels.PipelineAwaitingData
	}

	age := now.Sub(*reportedAt)
	switch {
	case age < 5*time.Minute:
		return trkmodels.PipelineConnected
	case age < time.Hour:
		return trkmodels.PipelineStale
	default:
		return trkmodels.PipelineInactive
	}
}

// ageBucket renders a coarse last-seen age for display.
func ageBucket(age time.Duration, reportedAt time.Time) string {
	switch {
	case age < time.Minute:
		return "<60s"
	case age < time.Hour:
		return "<1h"
	case age < 24*time.Hour:
		return "<1d"
	default:
		return reportedAt.UTC().Format(time.RFC3339)
	}
}
