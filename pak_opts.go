package pak

import "log/slog"

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// WithVerifyEntries controls whether extraction checks each member against
// the SHA-1 stored in its table of contents entry. Off by default.
func WithVerifyEntries(enabled bool) Option {
	return func(c *Container) {
		c.verifyEntries = enabled
	}
}

// WithBlockSize sets the decompressed size of the chunks Build writes.
// Values below 1 keep the default of 64 KiB.
func WithBlockSize(size int) Option {
	return func(c *Container) {
		if size > 0 {
			c.blockSize = size
		}
	}
}

// WithWorkers sets how many chunks of one member Build compresses in
// parallel. Zero uses GOMAXPROCS; a negative value compresses serially.
func WithWorkers(n int) Option {
	return func(c *Container) {
		c.workers = n
	}
}

// WithMaxDecoderMemory limits the memory used by each zstd decoder.
// Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(c *Container) {
		c.maxDecoderMemory = limit
	}
}
