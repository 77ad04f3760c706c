package notifications

import "errors"

var (
	// ErrNotFound signals that a referenced target, profile or notification
	// does not exist. Surfaced to the caller, never retried.
	ErrNotFound = errors.New("notification target not found")

	// ErrUnknownKind signals that a caller asked for a subscription kind or
	// content kind the registry does not know. This is a programmer error in
	// the calling content module, not a user-facing condition.
	ErrUnknownKind = errors.New("unknown subscription kind")
)
