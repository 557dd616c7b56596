package probe

import "fmt"

// LapError wraps a provider failure with the lap it occurred in. The
// whole run fails; no partial lap list is returned.
type LapError struct {
	Lap     int
	Wrapped error
}

func (e *LapError) Error() string {
	return fmt.Sprintf("probe: lap %d: %v", e.Lap, e.Wrapped)
}

func (e *LapError) Unwrap() error {
	return e.Wrapped
}
