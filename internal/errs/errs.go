// Package errs defines common error variables used across the application.
package errs

import "errors"

// Startup errors.
var (
	// ErrSequenceNotFound indicates that the master sequence file is missing. This is fatal.
	ErrSequenceNotFound = errors.New("sequence file not found")
)

// Remote store errors.
var (
	// ErrHubDisabled indicates that the remote dataset store is not configured.
	ErrHubDisabled = errors.New("hub is disabled")
	// ErrFileNotFound indicates that the requested file does not exist in the remote repository.
	ErrFileNotFound = errors.New("file not found in repository")
)
