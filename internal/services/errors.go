package services

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindInvalidInput        ErrorKind = "invalid_input"
	KindMalformedDocument   ErrorKind = "malformed_document"
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	KindUpstreamRejected    ErrorKind = "upstream_rejected"
	KindUnparsableResponse  ErrorKind = "unparsable_response"
	KindFetchFailed         ErrorKind = "fetch_failed"
	KindUnexpected          ErrorKind = "unexpected"
)

// PipelineError is the single error type the pipeline hands back to callers.
// Raw holds the model reply when Kind is KindUnparsableResponse.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	Raw     string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ClientError reports whether the failure was caused by the caller's input.
func (e *PipelineError) ClientError() bool {
	return e.Kind == KindInvalidInput || e.Kind == KindMalformedDocument
}

func newError(kind ErrorKind, err error, format string, args ...any) *PipelineError {
	return &PipelineError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func invalidInput(format string, args ...any) *PipelineError {
	return newError(KindInvalidInput, nil, format, args...)
}

func unparsable(raw string, err error, format string, args ...any) *PipelineError {
	pe := newError(KindUnparsableResponse, err, format, args...)
	pe.Raw = raw
	return pe
}

// KindOf returns the taxonomy kind of err, KindUnexpected for anything that
// is not a *PipelineError.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnexpected
}

// AsPipelineError converts any error leaving an orchestrator into a
// *PipelineError so no failure escapes unclassified.
func AsPipelineError(err error) *PipelineError {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe
	}
	return newError(KindUnexpected, err, "an internal server error occurred")
}
