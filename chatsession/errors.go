package chatsession

import (
	"errors"
	"fmt"
)

// ClientError is the base error type for all chatsession errors.
type ClientError struct {
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Fatal configuration errors. These leave the client unusable: there is no
// model registry to operate on, so the hosting program is expected to treat
// them as startup failures rather than catch and retry.

// ConfigNotFoundError reports that the configuration file does not exist.
type ConfigNotFoundError struct {
	ClientError
	Path string
}

// ConfigMalformedError reports that the configuration file could not be
// parsed as a servers document.
type ConfigMalformedError struct {
	ClientError
	Path string
}

// NoServersDefinedError reports a configuration file whose servers mapping
// is empty or absent.
type NoServersDefinedError struct {
	ClientError
	Path string
}

// MissingEnvCredentialsError reports that environment-based resolution found
// no credential or base URL.
type MissingEnvCredentialsError struct {
	ClientError
}

// IsFatalConfig reports whether err is a fatal configuration error. The
// library never terminates the process itself; hosting programs check this
// to decide whether to exit.
func IsFatalConfig(err error) bool {
	var (
		notFound   *ConfigNotFoundError
		malformed  *ConfigMalformedError
		noServers  *NoServersDefinedError
		missingEnv *MissingEnvCredentialsError
	)
	return errors.As(err, &notFound) ||
		errors.As(err, &malformed) ||
		errors.As(err, &noServers) ||
		errors.As(err, &missingEnv)
}

// Recoverable errors. A long-lived session survives these; the caller can
// select a valid model or retry the exchange.

// ModelNotFoundError reports a model reference matching no registry entry.
type ModelNotFoundError struct {
	ClientError
	Ref ModelRef
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model %s not found in registry", e.Ref)
}

// NoModelSelectedError reports an exchange attempted before any model was
// selected.
type NoModelSelectedError struct {
	ClientError
}

func (e *NoModelSelectedError) Error() string {
	return "no model selected"
}

// BackendRequestFailedError reports a failed call to a backend server. The
// transcript keeps the already-appended user turn when an exchange fails.
type BackendRequestFailedError struct {
	ClientError
	Server     string
	StatusCode int
}

func (e *BackendRequestFailedError) Error() string {
	detail := e.Message
	if e.Cause != nil {
		detail = e.Cause.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend request to %s failed (status=%d): %s", e.Server, e.StatusCode, detail)
	}
	return fmt.Sprintf("backend request to %s failed: %s", e.Server, detail)
}

// MalformedStructuredReplyError reports a structured exchange whose reply was
// not a well-formed JSON object. Raw holds the unparsed reply text, which is
// still recorded in the transcript as the assistant turn.
type MalformedStructuredReplyError struct {
	ClientError
	Raw string
}

func (e *MalformedStructuredReplyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("structured reply is not a JSON object: %v", e.Cause)
	}
	return "structured reply is not a JSON object"
}
