package history

import (
	"fmt"
	"time"
)

// InvalidRangeError rejects a custom access level whose window is reversed.
// The window is never silently swapped.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid custom range: start %s is after end %s",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// InvalidCountError rejects a limited access level whose explicitly supplied
// message ceiling is zero or negative.
type InvalidCountError struct {
	Count int
}

func (e *InvalidCountError) Error() string {
	return fmt.Sprintf("invalid message count: %d (must be positive)", e.Count)
}

// InvalidWindowError rejects a relative time window whose value is zero or
// negative.
type InvalidWindowError struct {
	Value int
	Unit  TimeUnit
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid time window: %d %s (must be positive)", e.Value, e.Unit)
}
