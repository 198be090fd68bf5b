package market

import (
	"context"

	"go.uber.org/zap"
)

// Initialize records the admin and oracle principals. It can run exactly
// once; every later call fails regardless of caller.
func (e *Engine) Initialize(ctx context.Context, admin, oracle Principal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := newTxn(e.store)
	var existing Principal
	found, err := t.get(ctx, KeyAdmin(), &existing)
	if err != nil {
		return err
	}
	if found {
		return ErrAlreadyInitialized
	}
	if err := t.put(KeyAdmin(), admin); err != nil {
		return err
	}
	if err := t.put(KeyOracle(), oracle); err != nil {
		return err
	}
	if err := t.commit(ctx); err != nil {
		return err
	}
	e.logger.Info("engine initialized",
		zap.String("admin", string(admin)),
		zap.String("oracle", string(oracle)))
	return nil
}

// GetAdmin returns the configured admin principal.
func (e *Engine) GetAdmin(ctx context.Context) (Principal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadAdmin(ctx, newTxn(e.store))
}

// GetOracle returns the configured oracle principal.
func (e *Engine) GetOracle(ctx context.Context) (Principal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadOracle(ctx, newTxn(e.store))
}
