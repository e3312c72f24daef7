package lang

import "github.com/robo-corg/prints/log"

// DefaultMaxDepth is the default nesting limit for parsing and evaluation.
const DefaultMaxDepth = 100

type options struct {
	maxDepth int
	logger   log.Logger
	source   []byte
}

// Option configures parsing, loading or evaluation.
type Option func(*options)

// WithMaxDepth sets the maximum nesting depth. Values less than 1 select
// [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// withSource attaches the raw document so parse errors can render snippets.
func withSource(src []byte) Option {
	return func(o *options) {
		o.source = src
	}
}

func makeOptions(opts ...Option) options {
	o := options{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		opt(&o)
	}

	if o.maxDepth < 1 {
		o.maxDepth = DefaultMaxDepth
	}

	return o
}
