package market

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"pricebet/internal/num"
)

// Options configures a new Engine. Store and Seq are required; Events and
// Logger may be nil. Zero-valued grant and windows fall back to the
// built-in defaults.
type Options struct {
	Store          KV
	Seq            Sequencer
	Events         EventSink
	Logger         *zap.Logger
	InitialGrant   num.Int128
	DefaultWindows WindowConfig
}

// Engine is the settlement state machine. All operations run under a
// single mutex: strictly serial, run to completion, all-or-nothing.
type Engine struct {
	store    KV
	seq      Sequencer
	events   EventSink
	logger   *zap.Logger
	grant    num.Int128
	defaults WindowConfig

	mu sync.Mutex
}

func NewEngine(opts Options) *Engine {
	e := &Engine{
		store:    opts.Store,
		seq:      opts.Seq,
		events:   opts.Events,
		logger:   opts.Logger,
		grant:    opts.InitialGrant,
		defaults: opts.DefaultWindows,
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.grant.IsZero() {
		e.grant = num.I128FromInt64(10_000_000_000)
	}
	if e.defaults.BetWindow == 0 {
		e.defaults.BetWindow = DefaultBetWindow
	}
	if e.defaults.RunWindow == 0 {
		e.defaults.RunWindow = DefaultRunWindow
	}
	return e
}

// principal lookups shared by the operation files

func (e *Engine) loadAdmin(ctx context.Context, t *txn) (Principal, error) {
	var admin Principal
	found, err := t.get(ctx, KeyAdmin(), &admin)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrAdminNotSet
	}
	return admin, nil
}

func (e *Engine) loadOracle(ctx context.Context, t *txn) (Principal, error) {
	var oracle Principal
	found, err := t.get(ctx, KeyOracle(), &oracle)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrOracleNotSet
	}
	return oracle, nil
}

func (e *Engine) requireAdmin(ctx context.Context, t *txn, caller Principal) error {
	admin, err := e.loadAdmin(ctx, t)
	if err != nil {
		return err
	}
	if caller != admin {
		return ErrUnauthorizedAdmin
	}
	return nil
}

func (e *Engine) requireOracle(ctx context.Context, t *txn, caller Principal) error {
	oracle, err := e.loadOracle(ctx, t)
	if err != nil {
		return err
	}
	if caller != oracle {
		return ErrUnauthorizedOracle
	}
	return nil
}

func (e *Engine) loadActiveRound(ctx context.Context, t *txn) (*Round, error) {
	var round Round
	found, err := t.get(ctx, KeyActiveRound(), &round)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoActiveRound
	}
	return &round, nil
}

func (e *Engine) loadBalance(ctx context.Context, t *txn, user Principal) (num.Int128, error) {
	var bal num.Int128
	if _, err := t.get(ctx, KeyBalance(user), &bal); err != nil {
		return num.Int128{}, err
	}
	return bal, nil
}

func (e *Engine) loadWindows(ctx context.Context, t *txn) (WindowConfig, error) {
	win := e.defaults
	if _, err := t.get(ctx, KeyWindowConfig(), &win); err != nil {
		return WindowConfig{}, err
	}
	return win, nil
}
