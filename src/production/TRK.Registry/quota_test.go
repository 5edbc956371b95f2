package registry

import "testing"

func TestQuotaFor(t *testing.T) {
	tests := []struct {
		planTier string
		want     int
	}{
		{"enterprise", 1000},
		{"Enterprise Annual", 1000},
		{"reseller", 10000},
		{"smb", 25},
		{"pro", 25},
		{"business-monthly", 25},
		{"SMB Pro", 25},
		{"free", 3},
		{"", 3},
		{"unknown-tier", 3},
		// Overlapping substrings resolve by precedence order.
		{"pro-enterprise", 1000},
		{"business reseller", 10000},
	}

	for _, tt := range tests {
		if got := QuotaFor(tt.planTier); got != tt.want {
			t.Errorf("QuotaFor(%q) = %d, want %d", tt.planTier, got, tt.want)
		}
	}
}
