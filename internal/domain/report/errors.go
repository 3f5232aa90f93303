package report

import "errors"

// Sentinel errors for report decoding.
var (
	ErrInvalidValue = errors.New("report: invalid value")
	ErrUnknownKind  = errors.New("report: unknown value kind")
	ErrDecode       = errors.New("report: decode failed")
)
