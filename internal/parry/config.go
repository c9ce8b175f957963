package parry

import (
	"fmt"

	"github.com/verte-zerg/parry/internal/model"
)

// ConfigError reports an invalid timing configuration.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid timing config: %s %s", e.Field, e.Reason)
}

// Validate checks cfg and returns a *ConfigError for the first violation.
func Validate(cfg model.TimingConfig) error {
	if cfg.DelayMin < 0 {
		return &ConfigError{Field: "delay-min", Reason: "must be >= 0"}
	}
	if cfg.DelayMax < cfg.DelayMin {
		return &ConfigError{Field: "delay-max", Reason: fmt.Sprintf("must be >= delay-min (%s)", cfg.DelayMin)}
	}
	if cfg.ParryWindow <= 0 {
		return &ConfigError{Field: "parry-window", Reason: "must be > 0"}
	}
	return nil
}
