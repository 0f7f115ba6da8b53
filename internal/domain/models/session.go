package models

// SessionState is the shared state mutated by the session components. It is
// owned by the session engine and passed by reference; components never keep
// their own copy.
type SessionState struct {
	Language   string
	Market     Market
	Pair       string
	Expiration int // seconds; 0 = unset

	// HasActualSignal and LastSignal decide whether a language switch
	// re-renders the last signal card or the neutral placeholder. Both are
	// process-lifetime only and deliberately not restored from history.
	HasActualSignal bool
	LastSignal      *Signal
}
