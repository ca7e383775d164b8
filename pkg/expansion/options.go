package expansion

import "go.uber.org/zap"

// DefaultAnimationRowThreshold is the largest expansion that is still animated.
const DefaultAnimationRowThreshold = 10

// Config tunes controller behavior.
type Config struct {
	// AnimationRowThreshold is the maximum number of revealed rows for which
	// an expand or collapse is animated. Larger mutations are applied without
	// animation even when the caller asked for one.
	AnimationRowThreshold int
	// SuppressHeaderFooterWhenEmpty hides the host's header and footer views
	// while the list has no rows at all.
	SuppressHeaderFooterWhenEmpty bool
	// RowAnimation is the animation used for animated mutations.
	RowAnimation RowAnimation
}

// DefaultConfig returns the defaults used when no config is given.
func DefaultConfig() Config {
	return Config{
		AnimationRowThreshold: DefaultAnimationRowThreshold,
		RowAnimation:          RowAnimationAutomatic,
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfig replaces the controller config. A negative threshold is treated
// as zero, which disables animation for anything but empty sections.
func WithConfig(cfg Config) Option {
	return func(c *Controller) {
		if cfg.AnimationRowThreshold < 0 {
			cfg.AnimationRowThreshold = 0
		}
		c.cfg = cfg
	}
}

// WithLogger sets the logger used for transition tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithMetrics records transitions into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}
