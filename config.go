package iamcore

import (
	"fmt"
	"time"

	"github.com/tenvault/iamcore/password"
)

// Config groups all engine configuration. Values are fixed at Build time
// and never read from request input.
type Config struct {
	Password PasswordConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// PasswordConfig selects the credential hashing algorithm and iteration
// count. Changing either invalidates existing stored hashes, so both are
// deployment constants.
type PasswordConfig struct {
	Algorithm  string
	Iterations int
}

// SecurityConfig controls authorization behavior and login throttling.
type SecurityConfig struct {
	// EnablePermissionCheck gates the whole authorization engine. Disabling
	// it makes Authorize allow unconditionally. It is a configuration
	// escape hatch for bootstrap and migration scenarios, not a security
	// boundary.
	EnablePermissionCheck bool
	// SuperAdminRole is the reserved role code that short-circuits every
	// permission check.
	SuperAdminRole string
	// EnableLoginThrottle turns on per-credential login attempt budgets.
	EnableLoginThrottle bool
	// MaxLoginAttempts is the attempt budget per credential within
	// LoginCooldown.
	MaxLoginAttempts int
	// LoginCooldown is the window over which the attempt budget refills.
	LoginCooldown time.Duration
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events under backpressure instead of blocking the
	// security path.
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Password: PasswordConfig{
			Algorithm:  password.AlgorithmMD5,
			Iterations: 2,
		},
		Security: SecurityConfig{
			EnablePermissionCheck: true,
			SuperAdminRole:        "SUPER_ADMIN",
			EnableLoginThrottle:   false,
			MaxLoginAttempts:      5,
			LoginCooldown:         time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types today; the explicit clone point keeps the
	// builder contract stable if reference fields are added.
	return cfg
}

// Validate checks the configuration for Build.
func (c Config) Validate() error {
	if _, err := password.New(password.Config{
		Algorithm:  c.Password.Algorithm,
		Iterations: c.Password.Iterations,
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if c.Security.SuperAdminRole == "" {
		return fmt.Errorf("%w: super admin role must not be empty", ErrConfiguration)
	}
	if c.Security.EnableLoginThrottle {
		if c.Security.MaxLoginAttempts < 1 {
			return fmt.Errorf("%w: max login attempts must be >= 1", ErrConfiguration)
		}
		if c.Security.LoginCooldown <= 0 {
			return fmt.Errorf("%w: login cooldown must be positive", ErrConfiguration)
		}
	}
	return nil
}
