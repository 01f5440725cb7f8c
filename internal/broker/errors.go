package broker

import "errors"

// Validation errors returned synchronously to callers. Delivery failures are
// never part of this set: they are converted into presence evictions.
var (
	ErrUnknownUser  = errors.New("unknown user")
	ErrUnknownGroup = errors.New("unknown group")
	ErrGroupExists  = errors.New("group already exists")
	ErrForbidden    = errors.New("forbidden")
)
