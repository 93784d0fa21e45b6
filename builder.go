package authcore

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/auxgate/authcore/notify"
	"github.com/auxgate/authcore/password"
	"github.com/auxgate/authcore/registry"
	"github.com/auxgate/authcore/store"
	"github.com/auxgate/authcore/token"
	"github.com/auxgate/authcore/totp"
)

// Builder assembles an Engine. Obtain one with New, chain the With*
// methods and finish with Build.
type Builder struct {
	config   Config
	store    store.Store
	registry registry.Registry
	sink     notify.Sink
	log      *zap.Logger
	clock    func() time.Time

	built bool
}

// New returns a Builder preloaded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole config.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore injects the transactional backing store. Required.
func (b *Builder) WithStore(s store.Store) *Builder {
	b.store = s
	return b
}

// WithTokenSecret sets the token signing secret.
func (b *Builder) WithTokenSecret(secret []byte) *Builder {
	b.config.Token.Secret = secret
	return b
}

// WithIssuer sets the label used in OTP provisioning URLs.
func (b *Builder) WithIssuer(issuer string) *Builder {
	b.config.Issuer = issuer
	return b
}

// WithRegistry injects an optional device/session registry maintained
// best-effort alongside the session store.
func (b *Builder) WithRegistry(r registry.Registry) *Builder {
	b.registry = r
	return b
}

// WithEventSink injects the sink receiving revocation events.
func (b *Builder) WithEventSink(sink notify.Sink) *Builder {
	b.sink = sink
	return b
}

// WithLogger injects the logger for best-effort failures. Defaults to a
// no-op logger.
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.log = log
	return b
}

// WithClock overrides the engine's time source, mainly for tests.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// WithMetricsEnabled toggles in-process metrics collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the validate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the Engine. A Builder can
// build at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if b.store == nil {
		return nil, errors.New("store required")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	codec, err := token.NewCodec(token.Config{
		Secret:     cfg.Token.Secret,
		AccessTTL:  cfg.Token.AccessTTL,
		RefreshTTL: cfg.Token.RefreshTTL,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(cfg.Password)
	if err != nil {
		return nil, err
	}

	log := b.log
	if log == nil {
		log = zap.NewNop()
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	engine := &Engine{
		config:   cfg,
		store:    b.store,
		codec:    codec,
		hasher:   hasher,
		policy:   cfg.Policy,
		totp:     totp.New(cfg.Issuer),
		notifier: notify.NewDispatcher(cfg.notifyConfig(), b.sink, log),
		registry: b.registry,
		metrics:  NewMetrics(cfg.Metrics),
		log:      log,
		now:      clock,
	}

	b.built = true

	return engine, nil
}
