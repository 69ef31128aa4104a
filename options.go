package contig

import "go.uber.org/zap"

type config struct {
	alloc Allocator
	log   *zap.Logger
}

// Option configures a Maker.
type Option func(*config)

// WithAllocator sets the block source. A nil allocator keeps the default
// HeapAllocator.
func WithAllocator(a Allocator) Option {
	return func(c *config) {
		if a != nil {
			c.alloc = a
		}
	}
}

// WithLogger sets the logger used for plan, rollback and teardown events.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

func newConfig(opts []Option) config {
	c := config{
		alloc: DefaultAllocator,
		log:   Logger(),
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}
