package docstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a document or collection is absent.
	ErrNotFound = errors.New("docstore: document not found")

	// ErrNotAuthenticated reports that an operation requiring a principal
	// ran without one.
	ErrNotAuthenticated = errors.New("docstore: no authenticated principal")
)

// DecodeError reports a payload whose shape did not match the caller's type.
// When it terminates a subscription stream, ID names the offending document.
type DecodeError struct {
	Collection string
	ID         string
	Err        error
}

func (e *DecodeError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("docstore: decode %s: %v", e.Collection, e.Err)
	}
	return fmt.Sprintf("docstore: decode %s/%s: %v", e.Collection, e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TransientError marks a network or availability failure that a retry may
// repair. Remote adapters wrap the transport error; the retry policy treats
// anything it cannot classify as retryable, so the wrapper exists for
// callers that want to distinguish outage from programming error.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("docstore: transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// BatchFailure names one mutation of a batch that did not commit.
type BatchFailure struct {
	Mutation Mutation
	Err      error
}

// PartialBatchError reports a batch in which some but not all mutations
// committed. It is surfaced, never silently treated as success: the caller
// is the only one who can decide whether to retry the failures or
// compensate the applied mutations.
type PartialBatchError struct {
	Applied  int
	Failures []BatchFailure
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("docstore: partial batch failure: %d applied, %d failed", e.Applied, len(e.Failures))
}

func (e *PartialBatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}
