package factordb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/factordb/internal/primality"
	"github.com/roach88/factordb/internal/store"
)

// LevelCritical is the level used for invariant violations.
const LevelCritical = slog.LevelError + 4

// Default limits.
const (
	DefaultMaxNumberBits      = 65536
	DefaultProvableBits       = 256
	DefaultProbableBits       = 2048
	DefaultTrialDivisionLimit = 5
)

// maxTrialDivisionLimit bounds the wheel so that New stays cheap.
const maxTrialDivisionLimit = 1 << 20

// Config holds the engine's numeric limits.
type Config struct {
	// MaxNumberBits is the largest accepted number, in bits.
	MaxNumberBits int

	// ProvableBits and ProbableBits drive initial classification, see
	// primality.Classifier. ProvableBits must be at least 64.
	ProvableBits int
	ProbableBits int

	// TrialDivisionLimit: every prime up to it is divided out of a new
	// number before its cofactor is registered.
	TrialDivisionLimit uint64

	// ExtraChecks re-validates data read back from the store.
	ExtraChecks bool
}

// DefaultConfig returns the default limits.
func DefaultConfig() Config {
	return Config{
		MaxNumberBits:      DefaultMaxNumberBits,
		ProvableBits:       DefaultProvableBits,
		ProbableBits:       DefaultProbableBits,
		TrialDivisionLimit: DefaultTrialDivisionLimit,
	}
}

// Engine maintains the factor tree and number completion state.
//
// Thread-safety model: every method is safe for concurrent use. The engine
// holds no locks; callers are coordinated by the store's transactions alone.
// Each step of a multi-step operation runs in its own connection scope, so
// one call never holds more than one pooled connection.
type Engine struct {
	store       *store.Store
	classifier  *primality.Classifier
	tester      primality.Tester
	cfg         Config
	trialPrimes []uint64
	logger      *slog.Logger
	opIDs       OpIDGenerator
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Nil keeps the default stderr text logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithOpIDGenerator sets the operation id generator.
func WithOpIDGenerator(g OpIDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.opIDs = g
		}
	}
}

// WithTester replaces the primality tester used for classification and
// verification.
func WithTester(t primality.Tester) Option {
	return func(e *Engine) {
		if t != nil {
			e.tester = t
		}
	}
}

// New creates an Engine over s.
func New(s *store.Store, cfg Config, opts ...Option) (*Engine, error) {
	if s == nil {
		return nil, errors.New("factordb: nil store")
	}
	if cfg.MaxNumberBits <= 0 {
		return nil, fmt.Errorf("factordb: max number bits must be positive, got %d", cfg.MaxNumberBits)
	}
	if cfg.TrialDivisionLimit > maxTrialDivisionLimit {
		return nil, fmt.Errorf("factordb: trial division limit %d exceeds %d", cfg.TrialDivisionLimit, maxTrialDivisionLimit)
	}

	e := &Engine{
		store:  s,
		cfg:    cfg,
		tester: primality.BPSWTester{},
		logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
		opIDs:  UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}

	c, err := primality.NewClassifier(cfg.ProvableBits, cfg.ProbableBits, e.tester)
	if err != nil {
		return nil, fmt.Errorf("factordb: %w", err)
	}
	e.classifier = c

	for p := uint64(2); p <= cfg.TrialDivisionLimit; p++ {
		if primality.IsSmallPrime(p) {
			e.trialPrimes = append(e.trialPrimes, p)
		}
	}
	return e, nil
}

// Config returns the engine's limits.
func (e *Engine) Config() Config {
	return e.cfg
}

// Store returns the underlying store.
func (e *Engine) Store() *store.Store {
	return e.store
}

// operation carries the per-call logger through the steps of one public
// call, including every nested attempt it triggers.
type operation struct {
	*Engine
	log *slog.Logger
}

func (e *Engine) begin(name string) *operation {
	return &operation{
		Engine: e,
		log:    e.logger.With("op", e.opIDs.Generate(), "action", name),
	}
}

// withConn runs fn in a fresh connection scope. Pool exhaustion becomes a
// RESOURCE_EXHAUSTED error.
func (o *operation) withConn(ctx context.Context, fn func(*store.Conn) error) error {
	err := o.store.WithConn(ctx, fn)
	if errors.Is(err, store.ErrResourceExhausted) && CodeOf(err) == "" {
		return &Error{Code: ErrCodeResourceExhausted, Message: "no connection available", Err: err}
	}
	return err
}

// violation logs an invariant failure at critical level and returns it.
func (o *operation) violation(ctx context.Context, err *Error) *Error {
	o.log.Log(ctx, LevelCritical, "invariant violation",
		"error", err.Message, "factor", err.FactorID, "number", err.NumberID)
	return err
}
