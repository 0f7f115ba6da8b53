package kafka

import "time"

// ProducerOption configures Producer.
type ProducerOption func(*ProducerConfig)

// ProducerConfig holds producer configuration.
type ProducerConfig struct {
	Brokers      []string
	RequiredAcks int
	Compression  string
	MaxAttempts  int
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	Async        bool
	HashByKey    bool
}

func defaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		RequiredAcks: -1,
		Compression:  "gzip",
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		Async:        true,
		HashByKey:    true,
	}
}

// WithBrokers sets broker addresses.
func WithBrokers(brokers []string) ProducerOption {
	return func(c *ProducerConfig) {
		c.Brokers = brokers
	}
}

// WithCompression sets compression codec: gzip, snappy, lz4 or zstd.
func WithCompression(codec string) ProducerOption {
	return func(c *ProducerConfig) {
		c.Compression = codec
	}
}

// WithRequiredAcks sets required acks (-1 all, 0 none, 1 leader).
func WithRequiredAcks(acks int) ProducerOption {
	return func(c *ProducerConfig) {
		c.RequiredAcks = acks
	}
}

// WithMaxAttempts sets max delivery attempts.
func WithMaxAttempts(n int) ProducerOption {
	return func(c *ProducerConfig) {
		if n > 0 {
			c.MaxAttempts = n
		}
	}
}

// WithTimeouts sets read and write timeouts.
func WithTimeouts(read, write time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		if read > 0 {
			c.ReadTimeout = read
		}
		if write > 0 {
			c.WriteTimeout = write
		}
	}
}

// WithAsync toggles fire-and-forget writes.
func WithAsync(async bool) ProducerOption {
	return func(c *ProducerConfig) {
		c.Async = async
	}
}

// WithHashByKey routes messages with the same key to the same partition.
func WithHashByKey(enabled bool) ProducerOption {
	return func(c *ProducerConfig) {
		c.HashByKey = enabled
	}
}
