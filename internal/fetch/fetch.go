// Package fetch classifies failures of the widget data requests into a small
// closed set of kinds, each with a fixed message that is shown to the user.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

type Kind int

const (
	// Failure is any request failure that is neither a timeout nor a missing connection.
	Failure Kind = iota
	Timeout
	Offline
	// InvalidResponse means the response was readable but did not have the expected shape.
	InvalidResponse
)

func (k Kind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case Offline:
		return "offline"
	case InvalidResponse:
		return "invalid_response"
	default:
		return "failure"
	}
}

const (
	MessageTimeout         = "Request timeout, please check your network connection"
	MessageOffline         = "Network connection is offline"
	MessageInvalidResponse = "Invalid API response format"
)

type Error struct {
	Kind Kind
	// Subject names what was being fetched, ex. "data" or "price data".
	Subject string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: %s", e.Subject, e.Kind)
	}
	return fmt.Sprintf("fetch %s (%s): %s", e.Subject, e.Kind, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is the text displayed in place of the widget's data.
func (e *Error) Message() string {
	switch e.Kind {
	case Timeout:
		return MessageTimeout
	case Offline:
		return MessageOffline
	case InvalidResponse:
		return fmt.Sprintf("Failed to fetch %s: %s", e.Subject, MessageInvalidResponse)
	}
	if e.Err == nil {
		return fmt.Sprintf("Failed to fetch %s", e.Subject)
	}
	return fmt.Sprintf("Failed to fetch %s: %s", e.Subject, e.Err.Error())
}

// New wraps err as an Error of the given kind.
func New(kind Kind, subject string, err error) *Error {
	return &Error{Kind: kind, Subject: subject, Err: err}
}

// Wrap classifies a transport error and wraps it, nil stays nil.
func Wrap(subject string, err error) error {
	if err == nil {
		return nil
	}
	var fetchErr *Error
	if errors.As(err, &fetchErr) {
		return err
	}
	return New(Classify(err), subject, err)
}

// Classify inspects the structure of a transport error, the message text is
// only consulted for errors that carry no structure at all.
func Classify(err error) Kind {
	if err == nil {
		return Failure
	}

	var fetchErr *Error
	if errors.As(err, &fetchErr) {
		return fetchErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Offline
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return Offline
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return Offline
	}

	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "timed out"), strings.Contains(message, "timeout"):
		return Timeout
	case strings.Contains(message, "offline"):
		return Offline
	}
	return Failure
}

// Message returns the user facing text for any error.
func Message(err error) string {
	var fetchErr *Error
	if errors.As(err, &fetchErr) {
		return fetchErr.Message()
	}
	return err.Error()
}
