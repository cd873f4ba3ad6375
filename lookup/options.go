package lookup

import (
	"log/slog"
	"time"
)

type Option func(l *Lookup)

// WithLogger specifies the logger for the lookup
func WithLogger(l *slog.Logger) Option {
	return func(lk *Lookup) {
		lk.logger = l
	}
}

// WithTimeout bounds a single query to the model.
// A zero timeout leaves the query bounded only by the caller's context
func WithTimeout(d time.Duration) Option {
	return func(l *Lookup) {
		l.timeout = d
	}
}

// WithSource sets the source name reported with every result
func WithSource(source string) Option {
	return func(l *Lookup) {
		l.source = source
	}
}
