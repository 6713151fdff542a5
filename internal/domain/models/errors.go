package models

import (
	"context"
	"errors"
)

// ErrorKind classifies pipeline failures.
type ErrorKind string

const (
	KindUnknownSymbol       ErrorKind = "UnknownSymbol"
	KindDataUnavailable     ErrorKind = "DataUnavailable"
	KindInsufficientHistory ErrorKind = "InsufficientHistory"
	KindModelFit            ErrorKind = "ModelFitError"
	KindConfiguration       ErrorKind = "ConfigurationError"
	KindCanceled            ErrorKind = "Canceled"
	KindUnclassified        ErrorKind = "Unclassified"
)

var (
	ErrUnknownSymbol       = errors.New("unknown symbol")
	ErrDataUnavailable     = errors.New("data unavailable")
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrModelFit            = errors.New("model fit failed")
	ErrConfiguration       = errors.New("configuration error")
)

// KindOf reports the kind of the first sentinel found in err's chain.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownSymbol):
		return KindUnknownSymbol
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrDataUnavailable):
		return KindDataUnavailable
	case errors.Is(err, ErrInsufficientHistory):
		return KindInsufficientHistory
	case errors.Is(err, ErrModelFit):
		return KindModelFit
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindUnclassified
	}
}

// IsFatal reports whether err must abort the whole run.
func IsFatal(err error) bool {
	switch KindOf(err) {
	case KindUnknownSymbol, KindConfiguration:
		return true
	}
	return false
}
