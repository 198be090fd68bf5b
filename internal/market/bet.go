package market

import (
	"context"

	"go.uber.org/zap"

	"pricebet/internal/num"
)

// PlaceBet stakes amount on a direction in the active Up/Down round.
// Callers may only stake for themselves. The stake debits the balance
// immediately; it comes back only through resolution.
func (e *Engine) PlaceBet(ctx context.Context, caller, user Principal, amount num.Int128, side BetSide) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := newTxn(e.store)
	if caller != user {
		return ErrUnauthorizedUser
	}
	if amount.Sign() <= 0 {
		return ErrInvalidBetAmount
	}
	round, err := e.loadActiveRound(ctx, t)
	if err != nil {
		return err
	}
	if round.Mode != ModeUpDown {
		return ErrWrongModeForPrediction
	}
	if e.seq.Sequence() >= round.BetEndMarker {
		return ErrRoundEnded
	}
	balance, err := e.loadBalance(ctx, t, user)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	positions := make(map[Principal]UserPosition)
	if _, err := t.get(ctx, KeyUpDownPositions(), &positions); err != nil {
		return err
	}
	if _, ok := positions[user]; ok {
		return ErrAlreadyBet
	}

	newBalance, err := balance.Sub(amount)
	if err != nil {
		return ErrOverflow
	}
	positions[user] = UserPosition{Amount: amount, Side: side}
	updated := *round
	switch side {
	case SideUp:
		if updated.PoolUp, err = round.PoolUp.Add(amount); err != nil {
			return ErrOverflow
		}
	case SideDown:
		if updated.PoolDown, err = round.PoolDown.Add(amount); err != nil {
			return ErrOverflow
		}
	default:
		return ErrInvalidBetAmount
	}

	if err := t.put(KeyBalance(user), newBalance); err != nil {
		return err
	}
	if err := t.put(KeyUpDownPositions(), positions); err != nil {
		return err
	}
	if err := t.put(KeyActiveRound(), updated); err != nil {
		return err
	}
	if err := t.commit(ctx); err != nil {
		return err
	}
	e.logger.Info("bet placed",
		zap.String("user", string(user)),
		zap.String("amount", amount.String()),
		zap.String("side", string(side)),
		zap.Uint64("round_id", round.RoundID))
	return nil
}

// PlacePrecisionPrediction stakes amount on an exact price guess in the
// active Precision round. Predicted prices are scaled by 10^4 and must
// fall in [1, 999999].
func (e *Engine) PlacePrecisionPrediction(ctx context.Context, caller, user Principal, amount num.Int128, predictedPrice num.Uint128) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.placePrediction(ctx, caller, user, amount, predictedPrice)
}

// PredictPrice is the argument-reordered alias for
// PlacePrecisionPrediction kept for callers that submit price before
// amount. Identical semantics.
func (e *Engine) PredictPrice(ctx context.Context, caller, user Principal, predictedPrice num.Uint128, amount num.Int128) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.placePrediction(ctx, caller, user, amount, predictedPrice)
}

func (e *Engine) placePrediction(ctx context.Context, caller, user Principal, amount num.Int128, predictedPrice num.Uint128) error {
	t := newTxn(e.store)
	if caller != user {
		return ErrUnauthorizedUser
	}
	if amount.Sign() <= 0 {
		return ErrInvalidBetAmount
	}
	if predictedPrice.Cmp(num.U128FromUint64(MinScaledPrice)) < 0 ||
		predictedPrice.Cmp(num.U128FromUint64(MaxScaledPrice)) > 0 {
		return ErrInvalidPriceScale
	}
	round, err := e.loadActiveRound(ctx, t)
	if err != nil {
		return err
	}
	if round.Mode != ModePrecision {
		return ErrWrongModeForPrediction
	}
	if e.seq.Sequence() >= round.BetEndMarker {
		return ErrRoundEnded
	}
	balance, err := e.loadBalance(ctx, t, user)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	var predictions []PrecisionPrediction
	if _, err := t.get(ctx, KeyPrecisionPredictions(), &predictions); err != nil {
		return err
	}
	for _, p := range predictions {
		if p.User == user {
			return ErrAlreadyBet
		}
	}

	newBalance, err := balance.Sub(amount)
	if err != nil {
		return ErrOverflow
	}
	predictions = append(predictions, PrecisionPrediction{
		User:           user,
		Amount:         amount,
		PredictedPrice: predictedPrice,
	})

	if err := t.put(KeyBalance(user), newBalance); err != nil {
		return err
	}
	if err := t.put(KeyPrecisionPredictions(), predictions); err != nil {
		return err
	}
	if err := t.commit(ctx); err != nil {
		return err
	}
	e.logger.Info("prediction placed",
		zap.String("user", string(user)),
		zap.String("amount", amount.String()),
		zap.String("predicted_price", predictedPrice.String()),
		zap.Uint64("round_id", round.RoundID))
	return nil
}

// GetUserPosition returns the user's Up/Down stake in the active round,
// nil when the user has none.
func (e *Engine) GetUserPosition(ctx context.Context, user Principal) (*UserPosition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	positions := make(map[Principal]UserPosition)
	if _, err := newTxn(e.store).get(ctx, KeyUpDownPositions(), &positions); err != nil {
		return nil, err
	}
	pos, ok := positions[user]
	if !ok {
		return nil, nil
	}
	return &pos, nil
}

// GetUpDownPositions returns the active round's full Up/Down book.
func (e *Engine) GetUpDownPositions(ctx context.Context) (map[Principal]UserPosition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	positions := make(map[Principal]UserPosition)
	if _, err := newTxn(e.store).get(ctx, KeyUpDownPositions(), &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// GetUserPrecisionPrediction returns the user's prediction in the active
// Precision round, nil when the user has none.
func (e *Engine) GetUserPrecisionPrediction(ctx context.Context, user Principal) (*PrecisionPrediction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var predictions []PrecisionPrediction
	if _, err := newTxn(e.store).get(ctx, KeyPrecisionPredictions(), &predictions); err != nil {
		return nil, err
	}
	for _, p := range predictions {
		if p.User == user {
			pred := p
			return &pred, nil
		}
	}
	return nil, nil
}

// GetPrecisionPredictions returns the active round's predictions in
// submission order.
func (e *Engine) GetPrecisionPredictions(ctx context.Context) ([]PrecisionPrediction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var predictions []PrecisionPrediction
	if _, err := newTxn(e.store).get(ctx, KeyPrecisionPredictions(), &predictions); err != nil {
		return nil, err
	}
	return predictions, nil
}
