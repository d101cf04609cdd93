package oat

import "errors"

var (
	ErrMalformedVersion   = errors.New("malformed OAT version string")
	ErrOversizedLocation  = errors.New("oversized dex location string")
	ErrInvalidPayloadSize = errors.New("invalid dex payload size")
	ErrOutputExists       = errors.New("output file already exists")
	ErrTruncated          = errors.New("truncated OAT container")
)
