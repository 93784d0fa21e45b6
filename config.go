package authcore

import (
	"errors"
	"time"

	"github.com/auxgate/authcore/notify"
	"github.com/auxgate/authcore/password"
	"github.com/auxgate/authcore/token"
)

// Config groups the engine's tunables. DefaultConfig returns production
// defaults; the Builder applies overrides on top.
type Config struct {
	// Issuer labels OTP provisioning URLs.
	Issuer string

	Token    TokenConfig
	Password password.Config
	Policy   password.Policy
	Notify   NotifyConfig
	Metrics  MetricsConfig
}

// TokenConfig configures the signed-token codec.
type TokenConfig struct {
	// Secret signs both access and refresh tokens. Minimum 32 bytes.
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NotifyConfig configures the revocation notifier dispatcher.
type NotifyConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig configures in-process metrics collection.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the defaults applied by New.
func DefaultConfig() Config {
	return Config{
		Issuer: "authcore",
		Token: TokenConfig{
			AccessTTL:  token.DefaultAccessTTL,
			RefreshTTL: token.DefaultRefreshTTL,
		},
		Password: password.DefaultConfig(),
		Policy:   password.DefaultPolicy(),
		Notify: NotifyConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Validate checks the parts of the config the subpackages do not validate
// themselves.
func (c Config) Validate() error {
	if c.Issuer == "" {
		return errors.New("issuer must not be empty")
	}
	if len(c.Token.Secret) == 0 {
		return errors.New("token secret required")
	}
	return nil
}

func (c Config) notifyConfig() notify.Config {
	return notify.Config{
		Enabled:    c.Notify.Enabled,
		BufferSize: c.Notify.BufferSize,
		DropIfFull: c.Notify.DropIfFull,
	}
}
