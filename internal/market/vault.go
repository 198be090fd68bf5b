package market

import (
	"context"

	"go.uber.org/zap"

	"pricebet/internal/num"
)

// ClaimWinnings moves the user's pending winnings into their balance and
// returns the claimed amount, 0 when nothing is pending. Callers may only
// claim for themselves.
func (e *Engine) ClaimWinnings(ctx context.Context, caller, user Principal) (num.Int128, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != user {
		return num.Int128{}, ErrUnauthorizedUser
	}
	t := newTxn(e.store)
	var pending num.Int128
	found, err := t.get(ctx, KeyPendingWinnings(user), &pending)
	if err != nil {
		return num.Int128{}, err
	}
	if !found || pending.IsZero() {
		return num.Int128{}, nil
	}
	balance, err := e.loadBalance(ctx, t, user)
	if err != nil {
		return num.Int128{}, err
	}
	updated, err := balance.Add(pending)
	if err != nil {
		return num.Int128{}, ErrOverflow
	}
	if err := t.put(KeyBalance(user), updated); err != nil {
		return num.Int128{}, err
	}
	t.delete(KeyPendingWinnings(user))
	if err := t.commit(ctx); err != nil {
		return num.Int128{}, err
	}
	e.logger.Info("winnings claimed",
		zap.String("user", string(user)),
		zap.String("amount", pending.String()))
	return pending, nil
}

// MintInitial grants the starting balance once per user. A repeat call is
// a no-op returning the balance already on record.
func (e *Engine) MintInitial(ctx context.Context, caller, user Principal) (num.Int128, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != user {
		return num.Int128{}, ErrUnauthorizedUser
	}
	t := newTxn(e.store)
	var balance num.Int128
	found, err := t.get(ctx, KeyBalance(user), &balance)
	if err != nil {
		return num.Int128{}, err
	}
	if found {
		return balance, nil
	}
	if err := t.put(KeyBalance(user), e.grant); err != nil {
		return num.Int128{}, err
	}
	if err := t.commit(ctx); err != nil {
		return num.Int128{}, err
	}
	e.logger.Info("initial balance minted", zap.String("user", string(user)))
	return e.grant, nil
}

// Balance returns the user's spendable balance, 0 for unknown users.
func (e *Engine) Balance(ctx context.Context, user Principal) (num.Int128, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadBalance(ctx, newTxn(e.store), user)
}

// GetPendingWinnings returns the user's unclaimed winnings.
func (e *Engine) GetPendingWinnings(ctx context.Context, user Principal) (num.Int128, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var pending num.Int128
	if _, err := newTxn(e.store).get(ctx, KeyPendingWinnings(user), &pending); err != nil {
		return num.Int128{}, err
	}
	return pending, nil
}
