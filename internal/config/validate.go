package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Lock.validate(); err != nil {
		return fmt.Errorf("lock: %w", err)
	}

	return nil
}

func (l *LockConfig) validate() error {
	if l.TTL <= 0 {
		return fmt.Errorf("ttl must be > 0 (got %v)", l.TTL)
	}
	if l.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be > 0 (got %v)", l.SweepInterval)
	}
	if l.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat_interval must be > 0 (got %v)", l.HeartbeatInterval)
	}
	// A heartbeat period at or above the lease lifetime guarantees spurious
	// lock loss under normal operation.
	if l.HeartbeatInterval >= l.TTL {
		return fmt.Errorf("heartbeat_interval (%v) must be shorter than ttl (%v)", l.HeartbeatInterval, l.TTL)
	}
	return nil
}
