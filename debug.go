package strata

import "log"

// globalDebug enables diagnostic logging from table lookups and loaders.
// Mutated only by SetDebug; strata is single-threaded like the games that
// embed it.
var globalDebug bool

// SetDebug toggles debug logging for the whole package.
func SetDebug(enabled bool) {
	globalDebug = enabled
}

// debugf logs a formatted message to the standard logger when debug mode is on.
func debugf(format string, args ...any) {
	if globalDebug {
		log.Printf("strata: "+format, args...)
	}
}
