package tst

import "errors"

var (
	// ErrUnsupportedFeature is returned when a source or query asks for
	// payloads or contexts, which this lookup does not store.
	ErrUnsupportedFeature = errors.New("tst: unsupported feature")

	// ErrMalformedStream is returned by Load for truncated or inconsistent data.
	ErrMalformedStream = errors.New("tst: malformed stream")
)
