package shadowslot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// NotificationConfig controls the change coalescer.
type NotificationConfig struct {
	// Enabled turns slotchange coalescing on.
	//
	// Shadow roots whose slotchange events are never observed (user-agent
	// shadow roots) disable it; assignment bookkeeping stays exact either way.
	//
	// Default: true
	Enabled *bool `yaml:"enabled"`
}

// MetricsConfig controls metric naming.
type MetricsConfig struct {
	// Namespace prefixes every Prometheus metric name.
	//
	// Default: "shadowslot"
	Namespace string `yaml:"namespace"`
}

// PublishConfig controls the NATS-backed notify dispatchers.
type PublishConfig struct {
	// Subject is the core NATS subject slotchange batches are published on.
	//
	// Default: "shadowslot.slotchange"
	Subject string `yaml:"subject"`

	// KVBucket is the JetStream KV bucket holding per-name assignment snapshots.
	//
	// Default: "shadowslot-assignments"
	KVBucket string `yaml:"kvBucket"`

	// OperationTimeout bounds every publish or KV put.
	//
	// Default: 5 seconds
	OperationTimeout time.Duration `yaml:"operationTimeout"`
}

// Config is the configuration for a SlotAssignment.
//
// The zero value is not ready for use; pass it through SetDefaults, or
// start from DefaultConfig.
type Config struct {
	// Notifications controls slotchange coalescing.
	Notifications NotificationConfig `yaml:"notifications"`

	// PruneEmptyRecords drops slot records that have neither registered slot
	// elements nor assigned nodes after each assignment pass.
	//
	// Recommended: true for long-lived trees whose slot names churn.
	PruneEmptyRecords bool `yaml:"pruneEmptyRecords"`

	// ConsistencyChecks verifies registry bookkeeping after every mutation
	// and logs violations at Warn. Intended for tests and debugging.
	ConsistencyChecks bool `yaml:"consistencyChecks"`

	// Metrics controls metric naming.
	Metrics MetricsConfig `yaml:"metrics"`

	// Publish controls the NATS-backed dispatchers in package notify.
	Publish PublishConfig `yaml:"publish"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	enabled := true

	return Config{
		Notifications: NotificationConfig{
			Enabled: &enabled,
		},
		Metrics: MetricsConfig{
			Namespace: "shadowslot",
		},
		Publish: PublishConfig{
			Subject:          "shadowslot.slotchange",
			KVBucket:         "shadowslot-assignments",
			OperationTimeout: 5 * time.Second,
		},
	}
}

// SetDefaults fills in missing configuration values with defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Notifications.Enabled == nil {
		cfg.Notifications.Enabled = defaults.Notifications.Enabled
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = defaults.Metrics.Namespace
	}
	if cfg.Publish.Subject == "" {
		cfg.Publish.Subject = defaults.Publish.Subject
	}
	if cfg.Publish.KVBucket == "" {
		cfg.Publish.KVBucket = defaults.Publish.KVBucket
	}
	if cfg.Publish.OperationTimeout == 0 {
		cfg.Publish.OperationTimeout = defaults.Publish.OperationTimeout
	}
}

// NotificationsEnabled reports whether slotchange coalescing is on.
// An unset flag counts as enabled.
func (cfg *Config) NotificationsEnabled() bool {
	return cfg.Notifications.Enabled == nil || *cfg.Notifications.Enabled
}

// Validate checks configuration constraints.
//
// Hard Validation Rules:
//   - Publish.OperationTimeout >= 0
//   - Publish.Subject contains no whitespace and no empty tokens
//   - Publish.KVBucket uses only letters, digits, '-' and '_'
//
// Returns:
//   - error: Validation error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	var errs []error

	if cfg.Publish.OperationTimeout < 0 {
		errs = append(errs, fmt.Errorf("publish.operationTimeout (%v) must be >= 0", cfg.Publish.OperationTimeout))
	}
	if !validSubject(cfg.Publish.Subject) {
		errs = append(errs, fmt.Errorf("publish.subject %q is not a valid NATS subject", cfg.Publish.Subject))
	}
	if !validBucket(cfg.Publish.KVBucket) {
		errs = append(errs, fmt.Errorf("publish.kvBucket %q is not a valid bucket name", cfg.Publish.KVBucket))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}

// LoadConfig decodes a YAML configuration, applies defaults and validates it.
//
// Parameters:
//   - r: YAML source
//
// Returns:
//   - Config: Decoded configuration with defaults applied
//   - error: Decode or validation error
//
// Example:
//
//	cfg, err := shadowslot.LoadConfig(strings.NewReader("pruneEmptyRecords: true"))
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: decode yaml: %w", ErrInvalidConfig, err)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfigFile reads a YAML configuration file. See LoadConfig.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	return LoadConfig(f)
}

// TestConfig returns a configuration for tests: consistency checks on,
// short publish timeout.
//
// Returns:
//   - Config: Configuration tuned for tests
func TestConfig() Config {
	cfg := DefaultConfig()
	cfg.ConsistencyChecks = true
	cfg.Publish.OperationTimeout = time.Second

	return cfg
}

func validSubject(s string) bool {
	if s == "" {
		return false
	}
	tokenLen := 0
	for _, r := range s {
		switch {
		case r == '.':
			if tokenLen == 0 {
				return false
			}
			tokenLen = 0
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			return false
		default:
			tokenLen++
		}
	}

	return tokenLen > 0
}

func validBucket(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}

	return true
}
