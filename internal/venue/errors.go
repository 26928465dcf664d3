package venue

import "errors"

// ErrConnectionUnavailable is returned when Ensure could not restore a
// live session. Callers surface it as a Failed outcome, never retry it
// inside the same operation.
var ErrConnectionUnavailable = errors.New("venue connection unavailable")
