package models

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable marks network or transport failures.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrEmptyResult marks a well-formed response with nothing usable in it.
	ErrEmptyResult = errors.New("empty result")
	// ErrResourceMissing marks a missing local file or runtime capability.
	ErrResourceMissing = errors.New("resource missing")
	// ErrConfigurationMissing marks absent taxonomy ids or settings that
	// block a step.
	ErrConfigurationMissing = errors.New("configuration missing")
	// ErrNotFound is returned by lookups that matched nothing.
	ErrNotFound = errors.New("not found")

	ErrNoArticlesAvailable = errors.New("no articles available")
)

// BackendRejectedError is a non-2xx response.
type BackendRejectedError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *BackendRejectedError) Error() string {
	return fmt.Sprintf("%s: backend rejected request with status %d: %s", e.Op, e.StatusCode, e.Body)
}

// GenerationError wraps any failure to obtain a usable post from the
// language model.
type GenerationError struct {
	Subject string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate post for %q: %v", e.Subject, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// PublishError wraps a failed POST /posts.
type PublishError struct {
	Title string
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %q: %v", e.Title, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }
