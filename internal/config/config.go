// Package config defines process configuration and its loading hooks.
//
// Conventions:
//   - Defaults come from New; Load layers an optional YAML file and the
//     environment on top.
//   - The submission endpoint is compiled into the submitter and is not a key.
package config

import (
	"runtime"
)

// Store drivers accepted by StoreDriver.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config contains process configuration shared by the receiver and the form binaries.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// Addr is the receiver's HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// FormAddr is the listen address of the browser form page.
	FormAddr string `koanf:"form_addr" validate:"required"`

	// QueueSize bounds the receiver's in-memory submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of persistence workers.
	WorkerCount int `koanf:"worker_count"`

	// StoreDriver selects where received submissions are kept.
	StoreDriver string `koanf:"store_driver" validate:"oneof=memory postgres"`

	// PostgresDSN is required when StoreDriver is postgres.
	PostgresDSN string `koanf:"postgres_dsn" validate:"required_if=StoreDriver postgres"`

	// KafkaBrokers enables publishing of received submissions when non-empty.
	KafkaBrokers []string `koanf:"kafka_brokers"`

	// KafkaTopic is the topic submissions are published to.
	KafkaTopic string `koanf:"kafka_topic" validate:"required_with=KafkaBrokers"`

	// AllowedOrigins feeds the receiver's CORS policy. Empty allows any origin.
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		Addr:        ":9080",
		FormAddr:    ":8080",
		QueueSize:   10_000,
		WorkerCount: runtime.NumCPU(),
		StoreDriver: StoreMemory,
		KafkaTopic:  "form-submissions",
	}
}
