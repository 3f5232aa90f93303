package service

import "errors"

// Sentinel errors recorded by the store.
var (
	ErrRemotePanic = errors.New("remote call panicked")
	ErrEmptyReport = errors.New("remote call returned no report")
)
