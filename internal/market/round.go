package market

import (
	"context"
	"math"

	"go.uber.org/zap"

	"pricebet/internal/num"
)

// CreateRound opens a new round at the given start price. Admin only;
// fails while another round is active. Markers derive from the current
// sequence and the window config in force at creation time.
func (e *Engine) CreateRound(ctx context.Context, caller Principal, startPrice num.Uint128, mode RoundMode) (*Round, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := newTxn(e.store)
	if err := e.requireAdmin(ctx, t, caller); err != nil {
		return nil, err
	}
	if mode != ModeUpDown && mode != ModePrecision {
		return nil, ErrInvalidMode
	}
	if startPrice.IsZero() {
		return nil, ErrInvalidPrice
	}
	if _, err := e.loadActiveRound(ctx, t); err == nil {
		return nil, ErrRoundAlreadyActive
	} else if err != ErrNoActiveRound {
		return nil, err
	}

	win, err := e.loadWindows(ctx, t)
	if err != nil {
		return nil, err
	}
	start := e.seq.Sequence()
	if start > math.MaxUint64-win.RunWindow {
		return nil, ErrOverflow
	}

	var lastID uint64
	if _, err := t.get(ctx, KeyLastRoundID(), &lastID); err != nil {
		return nil, err
	}

	round := Round{
		RoundID:      lastID + 1,
		Mode:         mode,
		StartMarker:  start,
		BetEndMarker: start + win.BetWindow,
		EndMarker:    start + win.RunWindow,
		PriceStart:   startPrice,
	}
	if err := t.put(KeyActiveRound(), round); err != nil {
		return nil, err
	}
	if err := t.put(KeyLastRoundID(), round.RoundID); err != nil {
		return nil, err
	}
	if err := t.commit(ctx); err != nil {
		return nil, err
	}
	e.logger.Info("round opened",
		zap.Uint64("round_id", round.RoundID),
		zap.String("mode", mode.String()),
		zap.Uint64("start_marker", round.StartMarker),
		zap.Uint64("bet_end_marker", round.BetEndMarker),
		zap.Uint64("end_marker", round.EndMarker),
		zap.String("price_start", startPrice.String()))
	return &round, nil
}

// GetActiveRound returns the current round, or ErrNoActiveRound.
func (e *Engine) GetActiveRound(ctx context.Context) (*Round, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadActiveRound(ctx, newTxn(e.store))
}

// GetLastRoundID returns the id of the most recently opened round, 0 when
// no round has ever been opened.
func (e *Engine) GetLastRoundID(ctx context.Context) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var lastID uint64
	if _, err := newTxn(e.store).get(ctx, KeyLastRoundID(), &lastID); err != nil {
		return 0, err
	}
	return lastID, nil
}
