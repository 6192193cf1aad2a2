package scan

import "runtime"

// Option is a functional option for configuring a Scanner.
type Option func(*config)

type config struct {
	executor    Executor
	borrowCheck bool
}

func newConfig(opts ...Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.executor == nil {
		cfg.executor = NewSpawnExecutor(runtime.GOMAXPROCS(0))
	}
	return cfg
}

// WithExecutor sets the substrate that runs each level.
// If not specified, defaults to NewSpawnExecutor(runtime.GOMAXPROCS(0)).
func WithExecutor(e Executor) Option {
	return func(cfg *config) {
		if e != nil {
			cfg.executor = e
		}
	}
}

// WithBorrowCheck makes every level assert that no two of its units touch the
// same index. A violation fails the scan with ErrOverlappingBorrow. The check
// costs an allocation and two atomic operations per unit.
func WithBorrowCheck() Option {
	return func(cfg *config) {
		cfg.borrowCheck = true
	}
}
