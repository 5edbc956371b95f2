package trkmodels

import "time"

// TrackerState is the latest-position record written by the ingestor and
// read by the diagnostics view. The registry only ever deletes it.
type TrackerState struct {
	TrackerID  string    `json:"tracker_id"`
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lon"`
	SpeedKmh   float64   `json:"speed_kmh,omitempty"`
	BatteryPct float64   `json:"battery_pct,omitempty"`
	ReportedAt time.Time `json:"reported_at"`
}

// PositionReport is one inbound telemetry message from a tracker.
type PositionReport struct {
	TrackerID  string    `json:"tracker_id,omitempty"`
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lon"`
	SpeedKmh   float64   `json:"speed_kmh,omitempty"`
	BatteryPct float64   `json:"battery_pct,omitempty"`
	ReportedAt time.Time `json:"reported_at,omitempty"`
}

// Pipeline status values derived by the diagnostics view, in decision order.
const (
	PipelineMisconfigured = "misconfigured"
	PipelineNotRegistered = "not_registered"
	PipelineAwaitingData  = "awaiting_data"
	PipelineConnected     = "connected"
	PipelineStale         = "stale"
	PipelineInactive      = "inactive"
)

// TrackerDiagnostics classifies a single tracker's ingestion pipeline health.
type TrackerDiagnostics struct {
	TrackerID            string     `json:"tracker_id"`
	CredentialConfigured bool       `json:"credential_configured"`
	TenantID             string     `json:"tenant_id,omitempty"`
	InTenantSet          bool       `json:"in_tenant_set"`
	LastReportedAt       *time.Time `json:"last_reported_at,omitempty"`
	LastReportedAge      string     `json:"last_reported_age,omitempty"`
	PipelineStatus       string     `json:"pipeline_status"`
}
