package service

import "github.com/okian/taskbounty/pkg/logger"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDiscardStale drops any response that arrives after a newer call was issued.
// When disabled (the default) the last response to arrive wins.
func WithDiscardStale(enabled bool) Option {
	return func(s *Store) {
		s.discardStale = enabled
	}
}
