package resolve

import "fmt"

// NotFoundError means no matching strategy produced a candidate. Fully
// recoverable; the command layer renders it as "recipient not found".
type NotFoundError struct {
	Token string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user %q not found", e.Token)
}

// TimeoutError means a disambiguation session expired with no authorized
// selection. The chooser message is left disabled before this is returned.
type TimeoutError struct {
	Token string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("selection for %q timed out", e.Token)
}

// CeilingError means the candidate set exceeded what the chooser can
// render. Treated as an internal condition, not a user-input error.
type CeilingError struct {
	Count int
}

func (e *CeilingError) Error() string {
	return fmt.Sprintf("%d candidates exceed the selection ceiling of %d", e.Count, SelectionCeiling)
}
