// Package sms delivers text messages through an external provider.
//
// Every driver normalizes the destination to a leading "+" international
// number and reports failures as *DeliveryError so callers can tell a
// provider refusal from a network outage or a locally broken request.
package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// DefaultTimeout bounds a single outbound provider call.
const DefaultTimeout = 30 * time.Second

type Message struct {
	To   string
	Body string
	// CorrelationID is logged with every attempt for tracing.
	CorrelationID string
}

type Result struct {
	MessageID string
	Status    string
	Recipient string
}

type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

type ErrorKind int

const (
	// KindProviderRejected means the provider answered with a non-success response.
	KindProviderRejected ErrorKind = iota + 1
	// KindUnreachable means no response was received.
	KindUnreachable
	// KindRequestInvalid means the request could not be built locally.
	KindRequestInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case KindProviderRejected:
		return "provider_rejected"
	case KindUnreachable:
		return "unreachable"
	case KindRequestInvalid:
		return "request_invalid"
	default:
		return "unknown"
	}
}

type DeliveryError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *DeliveryError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sms: %s", e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// KindOf returns the kind of a *DeliveryError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var derr *DeliveryError
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return 0
}

var ErrEmptyRecipient = errors.New("sms: empty recipient")

// Normalize strips whitespace and hyphens and prefixes "+" when absent.
func Normalize(phone string) string {
	clean := strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, phone)

	if clean == "" || strings.HasPrefix(clean, "+") {
		return clean
	}
	return "+" + clean
}

// MaskRecipient keeps the last four digits of a number for logs.
func MaskRecipient(phone string) string {
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
