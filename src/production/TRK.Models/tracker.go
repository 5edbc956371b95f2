package trkmodels

// MaxTrackerIDLength bounds the accepted length of a tracker identifier.
// Longer identifiers are silently dropped from candidate sets.
const MaxTrackerIDLength = 128

// TrackerList is the response shape of the registry list operation.
type TrackerList struct {
	TrackerIDs []string `json:"tracker_ids"`
}

// MutationResult is the shared response shape of registry add/remove.
// Unauthenticated callers receive {OK:false, Unauthorized:true} with zero
// counts instead of an error.
type MutationResult struct {
	OK           bool `json:"ok"`
	Unauthorized bool `json:"unauthorized,omitempty"`
	Removed      int  `json:"removed"`
	Count        int  `json:"count"`
}
