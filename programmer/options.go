package programmer

// Config holds Session configuration.
type Config struct {
	// ProgressCallback is called during Write/Verify/EraseAll to report
	// progress (optional).
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional).
	Logger Logger

	// HandshakeRetries overrides the number of autobaud retries after
	// the first attempt. Default is protocol.HandshakeRetries.
	HandshakeRetries int
}

func defaultConfig() Config {
	return Config{
		HandshakeRetries: handshakeRetriesDefault,
	}
}

// Option is a functional option for configuring a Session.
type Option func(*Config)

// WithProgressCallback sets a callback function to track session
// progress.
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for session operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithHandshakeRetries overrides the autobaud retry budget. Values less
// than zero are ignored.
func WithHandshakeRetries(retries int) Option {
	return func(c *Config) {
		if retries >= 0 {
			c.HandshakeRetries = retries
		}
	}
}
