package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicatePublish is returned when the same story was just sent to the backend.
	ErrDuplicatePublish = errors.New("story was already published recently")
	// ErrUnauthorized is returned when the admin password does not match.
	ErrUnauthorized = errors.New("unauthorized")
)

// ExtractionReason classifies why an article could not be used.
type ExtractionReason string

const (
	ExtractionTooShort     ExtractionReason = "too_short"
	ExtractionFetchOrParse ExtractionReason = "fetch_or_parse"
)

// ExtractionFailure is returned by extractors; it never aborts a run.
type ExtractionFailure struct {
	Reason ExtractionReason
	URL    string
	Words  int
	Err    error
}

func (e *ExtractionFailure) Error() string {
	if e.Reason == ExtractionTooShort {
		return fmt.Sprintf("extract %s: too short (%d words)", e.URL, e.Words)
	}
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.URL, e.Reason)
}

func (e *ExtractionFailure) Unwrap() error { return e.Err }

// RewriteReason classifies rewrite service failures.
type RewriteReason string

const (
	RewriteMalformed RewriteReason = "malformed"
	RewriteTransport RewriteReason = "transport"
)

// RewriteFailure is returned once the rewrite client has exhausted its attempts.
type RewriteFailure struct {
	Reason   RewriteReason
	Attempts int
	Err      error
}

func (e *RewriteFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rewrite %s after %d attempt(s): %v", e.Reason, e.Attempts, e.Err)
	}
	return fmt.Sprintf("rewrite %s after %d attempt(s)", e.Reason, e.Attempts)
}

func (e *RewriteFailure) Unwrap() error { return e.Err }

// PublishFailure carries the raw backend response of a rejected publish.
type PublishFailure struct {
	Status int
	Body   string
	Err    error
}

func (e *PublishFailure) Error() string {
	if e.Status == 0 && e.Err != nil {
		return fmt.Sprintf("publish failed: %v", e.Err)
	}
	return fmt.Sprintf("publish failed with status %d: %s", e.Status, e.Body)
}

func (e *PublishFailure) Unwrap() error { return e.Err }
