package social

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoWalletConnected is returned when an operation needs a wallet signer and none is configured.
	ErrNoWalletConnected = errors.New("no wallet connected")
	// ErrNoProfileFound is returned when the wallet owns no profile on the platform.
	ErrNoProfileFound = errors.New("no profile found")
	// ErrUnsupported is matched by every UnsupportedError.
	ErrUnsupported = errors.New("operation not supported")
	// ErrNotFound is returned when the upstream has no record for an id.
	ErrNotFound = errors.New("not found")
)

// AuthenticationError wraps a failure in one step of an authentication exchange.
type AuthenticationError struct {
	Platform Platform
	Step     string
	Err      error
}

func (e AuthenticationError) Error() string {
	return fmt.Sprintf("%s authentication failed at %s: %v", e.Platform, e.Step, e.Err)
}

func (e AuthenticationError) Unwrap() error { return e.Err }

// SigningError is returned when the wallet could not produce a signature.
type SigningError struct {
	Err error
}

func (e SigningError) Error() string {
	return fmt.Sprintf("wallet signing failed: %v", e.Err)
}

func (e SigningError) Unwrap() error { return e.Err }

// MalformedTokenError is returned when a custody bearer token cannot be decoded.
type MalformedTokenError struct {
	Reason string
	Err    error
}

func (e MalformedTokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed custody bearer: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed custody bearer: %s", e.Reason)
}

func (e MalformedTokenError) Unwrap() error { return e.Err }

// OperationFailedError is returned when the upstream accepted a write request
// but reported a non-success outcome. Payload holds the upstream answer.
type OperationFailedError struct {
	Platform  Platform
	Operation string
	Payload   string
}

func (e OperationFailedError) Error() string {
	if e.Payload == "" {
		return fmt.Sprintf("%s %s failed", e.Platform, e.Operation)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Platform, e.Operation, e.Payload)
}

// MalformedNotificationError is returned when an upstream notification
// violates its contract, e.g. a mirror notification without mirrors.
type MalformedNotificationError struct {
	Platform       Platform
	NotificationID string
	Kind           NotificationKind
	Reason         string
}

func (e MalformedNotificationError) Error() string {
	return fmt.Sprintf("%s %s notification %s is malformed: %s", e.Platform, e.Kind, e.NotificationID, e.Reason)
}

// UpstreamRequestError is returned for non-2xx answers and transport failures.
type UpstreamRequestError struct {
	Platform   Platform
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e UpstreamRequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s request failed", e.Platform, e.Operation)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e UpstreamRequestError) Unwrap() error { return e.Err }

// UnsupportedError is the typed outcome of calling a capability a platform does not offer.
type UnsupportedError struct {
	Platform  Platform
	Operation Capability
}

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("%s does not support %s", e.Platform, e.Operation)
}

func (e UnsupportedError) Is(target error) bool { return target == ErrUnsupported }

// ValidationError captures provider-specific validation issues.
type ValidationError struct {
	Platform Platform
	Reason   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Platform, e.Reason)
}
