package config

import (
	"os"
	"strings"
)

// ThresholdAlertsEnabled turns on low-balance warnings: when a posting drops
// a center's available funds below its threshold, the ledger logs an alert.
//
// Set via env:
// - THRESHOLD_ALERTS=true
func ThresholdAlertsEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("THRESHOLD_ALERTS")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
