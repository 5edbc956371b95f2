package registry

import "strings"

// quotaRule maps plan-tier classifier substrings to a tracker limit.
type quotaRule struct {
	substrings []string
	limit      int
}

// Rules are evaluated in order, first match wins. Classifier strings may
// contain several of these substrings ("pro-enterprise"), so enterprise and
// reseller must be checked before the generic business bucket.
var quotaRules = []quotaRule{
	{substrings: []string{"enterprise"}, limit: 1000},
	{substrings: []string{"reseller"}, limit: 10000},
	{substrings: []string{"smb", "pro", "business"}, limit: 25},
}

// defaultQuota applies when no rule matches (free tier).
const defaultQuota = 3

// QuotaFor returns the tracker limit for a plan-tier classifier. Matching
// is case-insensitive substring containment.
func QuotaFor(planTier string) int {
	tier := strings.ToLower(planTier)
	for _, rule := range quotaRules {
		for _, sub := range rule.substrings {
			if strings.Contains(tier, sub) {
				return rule.limit
			}
		}
	}
	return defaultQuota
}
