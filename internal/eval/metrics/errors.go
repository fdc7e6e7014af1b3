package metrics

import "fmt"

// ReferenceNotFoundError indicates that no reference transcript resolves for
// a recording URI. This is a precondition violation for the sample, never a
// valid zero-component result.
type ReferenceNotFoundError struct {
	URI string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("no reference transcripts found for %q", e.URI)
}

// NormalizationError wraps a normalizer failure for one sample.
type NormalizationError struct {
	URI string
	Err error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("failed to normalize transcript for %q: %v", e.URI, e.Err)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

// AlignmentError wraps an alignment collaborator failure for one sample.
type AlignmentError struct {
	URI string
	Err error
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("failed to align transcripts for %q: %v", e.URI, e.Err)
}

func (e *AlignmentError) Unwrap() error { return e.Err }
