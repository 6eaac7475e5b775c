// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

// Package errtypes contains the error kinds returned by the transfer SDK.
// Every failure crossing a service boundary is one of these kinds, so callers
// can branch on the kind instead of matching message text.
package errtypes

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	// bad path or bad arguments
	KindInput
	// listing fetch or parse failure
	KindCatalog
	// activation strategy failed for one endpoint
	KindActivation
	// submission id fetch, document build or POST failure
	KindSubmission
	// personal endpoint not connected, not remotely fixable
	KindSourceUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input error"
	case KindCatalog:
		return "catalog error"
	case KindActivation:
		return "activation error"
	case KindSubmission:
		return "submission error"
	case KindSourceUnavailable:
		return "source unavailable"
	default:
		return "unknown error"
	}
}

// Error is a classified failure. Op names the operation that failed
// (e.g. "catalog.refresh") and Err, when set, is the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match against another *Error of the same kind, so
// errors.Is(err, errtypes.ErrCatalog) works through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInput             = &Error{Kind: KindInput}
	ErrCatalog           = &Error{Kind: KindCatalog}
	ErrActivation        = &Error{Kind: KindActivation}
	ErrSubmission        = &Error{Kind: KindSubmission}
	ErrSourceUnavailable = &Error{Kind: KindSourceUnavailable}
)

func newError(kind Kind, op string, err error, format string, args ...any) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

func Input(op string, err error, format string, args ...any) error {
	return newError(KindInput, op, err, format, args...)
}

func Catalog(op string, err error, format string, args ...any) error {
	return newError(KindCatalog, op, err, format, args...)
}

func Activation(op string, err error, format string, args ...any) error {
	return newError(KindActivation, op, err, format, args...)
}

func Submission(op string, err error, format string, args ...any) error {
	return newError(KindSubmission, op, err, format, args...)
}

func SourceUnavailable(op string, format string, args ...any) error {
	return newError(KindSourceUnavailable, op, nil, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsInput(err error) bool             { return KindOf(err) == KindInput }
func IsCatalog(err error) bool           { return KindOf(err) == KindCatalog }
func IsActivation(err error) bool        { return KindOf(err) == KindActivation }
func IsSubmission(err error) bool        { return KindOf(err) == KindSubmission }
func IsSourceUnavailable(err error) bool { return KindOf(err) == KindSourceUnavailable }
