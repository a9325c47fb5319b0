package models

import "fmt"

// ResolutionError means the input identifier could not be turned into a
// wallet address. Aggregation does not proceed past it.
type ResolutionError struct {
	Identifier string
	Err        error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot resolve %q: %v", e.Identifier, e.Err)
	}
	return fmt.Sprintf("cannot resolve %q", e.Identifier)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// SourceQueryError means one event source or one registry call failed or
// timed out. It is recovered locally and never reaches the caller on its own.
type SourceQueryError struct {
	Source string
	Err    error
}

func (e *SourceQueryError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceQueryError) Unwrap() error { return e.Err }

// NotFoundError means a content id resolved to an empty or placeholder
// registry record. Distinct from a transport failure so the UI can render
// "no longer exists" rather than "temporarily unavailable".
type NotFoundError struct {
	ContentID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("content %q not found", e.ContentID)
}

// TotalUnavailableError means every source (or every bookmark) failed.
// An empty feed and a fully broken feed must be distinguishable, so this is
// the one partial-failure case that surfaces as an error.
type TotalUnavailableError struct {
	Failed int
	Err    error
}

func (e *TotalUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("all %d sources unavailable: %v", e.Failed, e.Err)
	}
	return fmt.Sprintf("all %d sources unavailable", e.Failed)
}

func (e *TotalUnavailableError) Unwrap() error { return e.Err }
