package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrInvalidReference indicates a mutation would leave an annotation
	// pointing at a layer that does not exist
	ErrInvalidReference = errors.New("invalid reference")

	// ErrInvalidInput indicates a rejected argument (negative time, empty name)
	ErrInvalidInput = errors.New("invalid input")

	// ErrDecode indicates an audio source could not be decoded
	ErrDecode = errors.New("decode failed")

	// ErrClockDesync indicates the media handle rejected a play/pause command
	ErrClockDesync = errors.New("playback clock desync")

	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidProject indicates a malformed project snapshot
	ErrInvalidProject = errors.New("invalid project")

	// ErrUnsupported indicates an operation is not supported
	ErrUnsupported = errors.New("unsupported")
)
