package market

import (
	"context"

	"go.uber.org/zap"
)

// SetWindows replaces the bet and run window lengths used by future
// rounds. Both must be positive and the bet window strictly shorter than
// the run window. Admin only; the active round, if any, is unaffected.
func (e *Engine) SetWindows(ctx context.Context, caller Principal, betLen, runLen uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := newTxn(e.store)
	if err := e.requireAdmin(ctx, t, caller); err != nil {
		return err
	}
	if betLen == 0 || runLen == 0 || betLen >= runLen {
		return ErrInvalidDuration
	}
	if err := t.put(KeyWindowConfig(), WindowConfig{BetWindow: betLen, RunWindow: runLen}); err != nil {
		return err
	}
	if err := t.commit(ctx); err != nil {
		return err
	}
	e.logger.Info("windows updated",
		zap.Uint64("bet_window", betLen),
		zap.Uint64("run_window", runLen))
	return nil
}

// GetWindows returns the window config in force, falling back to the
// defaults when none has been stored.
func (e *Engine) GetWindows(ctx context.Context) (WindowConfig, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadWindows(ctx, newTxn(e.store))
}
