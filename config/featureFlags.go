package config

import (
	"os"
	"strings"
)

// AllowQuotationReconversion lets the same quotation be converted into more than one sale invoice.
// Off by default: a second conversion is rejected once a sale invoice references the quotation.
//
// Set via env:
// - ALLOW_QUOTATION_RECONVERSION=true
func AllowQuotationReconversion() bool {
	return envBool("ALLOW_QUOTATION_RECONVERSION")
}

// SkipMigrations disables AutoMigrate on startup (run it as a separate job instead).
func SkipMigrations() bool {
	return envBool("SKIP_MIGRATIONS")
}

func IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production")
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
