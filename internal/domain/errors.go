package domain

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	// ErrNotURL is returned when message text is not an absolute http(s) URL.
	ErrNotURL = errors.New("input is not an http(s) URL")

	// ErrNoMediaFile is returned when the extraction tool exits cleanly but
	// no output file can be located in the workspace.
	ErrNoMediaFile = errors.New("no media file produced")

	// ErrMissingToken is returned when the bot token is not configured.
	ErrMissingToken = errors.New("bot token is not set")
)

// FailureReason identifies why a request could not be completed. It selects
// the user-facing message; diagnostic detail stays in the logs.
type FailureReason string

const (
	ReasonBotCheck  FailureReason = "bot_check"
	ReasonFetch     FailureReason = "fetch_failed"
	ReasonTranscode FailureReason = "transcode_failed"
	ReasonTooLarge  FailureReason = "too_large"
	ReasonDelivery  FailureReason = "delivery_failed"
)

// FetchError wraps an extraction tool failure. Stderr carries the tool's
// diagnostic output so failure classification can match on it.
type FetchError struct {
	URL    string
	Stderr string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Stderr != "" {
		return "fetch " + e.URL + ": " + e.Err.Error() + ": " + e.Stderr
	}
	return "fetch " + e.URL + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError.
func NewFetchError(url, stderr string, err error) *FetchError {
	return &FetchError{
		URL:    url,
		Stderr: stderr,
		Err:    err,
	}
}

// TranscodeError wraps an encoder failure during normalization.
type TranscodeError struct {
	Op  string
	Err error
}

func (e *TranscodeError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TranscodeError) Unwrap() error {
	return e.Err
}

// NewTranscodeError creates a new TranscodeError.
func NewTranscodeError(op string, err error) *TranscodeError {
	return &TranscodeError{
		Op:  op,
		Err: err,
	}
}

// SizeExceededError reports an artifact that cannot be brought under the
// delivery cap.
type SizeExceededError struct {
	Kind      MediaKind
	SizeBytes int64
}

func (e *SizeExceededError) Error() string {
	return fmt.Sprintf("%s artifact is %d bytes, over the delivery cap", e.Kind, e.SizeBytes)
}
