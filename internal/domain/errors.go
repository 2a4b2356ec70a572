package domain

import "errors"

// Error taxonomy shared by the dialogue engine, the orchestration client and
// the collaborator services. Every error surfaced to a user maps to exactly
// one of these kinds via errors.Is.
var (
	// ErrValidation marks malformed or out-of-range input. Recovered locally
	// by re-prompting; never changes dialogue state.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a duplicate entity.
	ErrConflict = errors.New("already exists")

	// ErrUnauthorized marks a non-admin attempting a gated workflow.
	ErrUnauthorized = errors.New("access denied")

	// ErrUnavailable marks an unreachable or timed-out collaborator.
	ErrUnavailable = errors.New("service unavailable")

	// ErrInternal marks anything unexpected.
	ErrInternal = errors.New("internal error")
)

// ErrorKind returns the taxonomy sentinel err belongs to, defaulting to
// ErrInternal for unclassified errors. Nil stays nil.
func ErrorKind(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation):
		return ErrValidation
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrConflict):
		return ErrConflict
	case errors.Is(err, ErrUnauthorized):
		return ErrUnauthorized
	case errors.Is(err, ErrUnavailable):
		return ErrUnavailable
	default:
		return ErrInternal
	}
}
