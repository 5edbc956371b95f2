package store

import "fmt"

// Key namespace for the registry. The set and its snapshot live under
// parallel per-tenant keys; ownership and telemetry records are global,
// keyed by tracker id.
const (
	// RecentTrackersKey is the global index of trackers with recent
	// telemetry, maintained by the ingestor and read by diagnostics.
	RecentTrackersKey = "trackers:recent"
)

// TenantTrackersKey is the authoritative per-tenant membership set.
func TenantTrackersKey(tenantID string) string {
	return fmt.Sprintf("tenant:%s:trackers", tenantID)
}

// TenantSnapshotKey is the denormalized JSON snapshot of the membership set.
func TenantSnapshotKey(tenantID string) string {
	return fmt.Sprintf("tenant:%s:trackers:snapshot", tenantID)
}

// TrackerOwnerKey is the global tracker-to-tenant ownership pointer.
func TrackerOwnerKey(trackerID string) string {
	return fmt.Sprintf("tracker:%s:owner", trackerID)
}

// TrackerCredentialKey holds the tracker's ingestion credential.
func TrackerCredentialKey(trackerID string) string {
	return fmt.Sprintf("tracker:%s:credential", trackerID)
}

// TrackerStateKey holds the latest reported position.
func TrackerStateKey(trackerID string) string {
	return fmt.Sprintf("tracker:%s:state", trackerID)
}

// TrackerHistoryKey holds the bounded position history.
func TrackerHistoryKey(trackerID string) string {
	return fmt.Sprintf("tracker:%s:history", trackerID)
}
