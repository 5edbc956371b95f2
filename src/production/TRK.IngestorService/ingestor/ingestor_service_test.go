package trkingestor

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	config "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Config"
	logger "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Logger"
	trkmodels "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Models"
	store "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Store"
)

func newTestIngestor(st store.Store) *Ingestor {
	return New(config.MQTTConfig{BatchSize: 8, BatchWindow: time.Second}, st, logger.GetGlobalLogger())
}

func TestTrackerIDFromTopic(t *testing.T) {
	cases := []struct {
		name  string
		topic string
		want  string
		ok    bool
	}{
		{"valid", "trackers/gps-001/position", "gps-001", true},
		{"wrong prefix", "sensors/gps-001/position", "", false},
		{"wrong suffix", "trackers/gps-001/telemetry", "", false},
		{"missing segment", "trackers/position", "", false},
		{"extra segment", "trackers/gps-001/position/extra", "", false},
		{"blank id", "trackers/ /position", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := TrackerIDFromTopic(tc.topic)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("TrackerIDFromTopic(%q) = (%q, %v), want (%q, %v)", tc.topic, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestWriteStateSkipsUnregisteredTracker(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	ing := newTestIngestor(st)

	state := trkmodels.TrackerState{TrackerID: "gps-001", ReportedAt: time.Now().UTC()}
	if err := ing.writeState(ctx, state); err != nil {
		t.Fatalf("writeState: %v", err)
	}

	if _, found, _ := st.Get(ctx, store.TrackerStateKey("gps-001")); found {
		t.Fatal("state record written for unregistered tracker")
	}
	members, _ := st.SetMembers(ctx, store.RecentTrackersKey)
	if len(members) != 0 {
		t.Fatalf("recent index updated for unregistered tracker: %v", members)
	}
}

func TestWriteStatePersistsAllRecords(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	ing := newTestIngestor(st)

	if err := st.Set(ctx, store.TrackerOwnerKey("gps-001"), "acme"); err != nil {
		t.Fatalf("seed owner: %v", err)
	}

	reported := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	state := trkmodels.TrackerState{
		TrackerID:  "gps-001",
		Latitude:   43.65,
		Longitude:  -79.38,
		ReportedAt: reported,
	}
	if err := ing.writeState(ctx, state); err != nil {
		t.Fatalf("writeState: %v", err)
	}

	raw, found, err := st.Get(ctx, store.TrackerStateKey("gps-001"))
	if err != nil || !found {
		t.Fatalf("state record missing: found=%v err=%v", found, err)
	}
	var got trkmodels.TrackerState
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if got.Latitude != 43.65 || !got.ReportedAt.Equal(reported) {
		t.Fatalf("unexpected state record: %+v", got)
	}

	histRaw, found, _ := st.Get(ctx, store.TrackerHistoryKey("gps-001"))
	if !found {
		t.Fatal("history record missing")
	}
	var history []trkmodels.TrackerState
	if err := json.Unmarshal([]byte(histRaw), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 || history[0].TrackerID != "gps-001" {
		t.Fatalf("unexpected history: %+v", history)
	}

	members, _ := st.SetMembers(ctx, store.RecentTrackersKey)
	if len(members) != 1 || members[0] != "gps-001" {
		t.Fatalf("unexpected recent index: %v", members)
	}
}

func TestAppendHistoryBounded(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	ing := newTestIngestor(st)

	base := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	for n := 0; n < maxHistoryLength+10; n++ {
		state := trkmodels.TrackerState{TrackerID: "gps-001", ReportedAt: base.Add(time.Duration(n) * time.Minute)}
		if err := ing.appendHistory(ctx, state); err != nil {
			t.Fatalf("appendHistory #%d: %v", n, err)
		}
	}

	raw, _, _ := st.Get(ctx, store.TrackerHistoryKey("gps-001"))
	var history []trkmodels.TrackerState
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != maxHistoryLength {
		t.Fatalf("history length = %d, want %d", len(history), maxHistoryLength)
	}
	// Oldest entries are dropped first.
	wantOldest := base.Add(10 * time.Minute)
	if !history[0].ReportedAt.Equal(wantOldest) {
		t.Fatalf("oldest entry = %s, want %s", history[0].ReportedAt, wantOldest)
	}
}

func TestAppendHistoryResetsCorruptRecord(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	ing := newTestIngestor(st)

	if err := st.Set(ctx, store.TrackerHistoryKey("gps-001"), "{not json"); err != nil {
		t.Fatalf("seed corrupt history: %v", err)
	}

	state := trkmodels.TrackerState{TrackerID: "gps-001", ReportedAt: time.Now().UTC()}
	if err := ing.appendHistory(ctx, state); err != nil {
		t.Fatalf("appendHistory: %v", err)
	}

	raw, _, _ := st.Get(ctx, store.TrackerHistoryKey("gps-001"))
	var history []trkmodels.TrackerState
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
}
