package config

import "sync/atomic"

var ready atomic.Bool

// SetReady opens or closes the readiness gate. main opens it once the schema is migrated and seeded.
func SetReady(v bool) {
	ready.Store(v)
}

func IsReady() bool {
	return ready.Load() && db != nil
}
