package market

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pricebet/internal/num"
)

// ResolveRound settles the active round against the oracle payload.
// Oracle only; the round must have reached its end marker and the payload
// must be fresh and correlate with this round. On success the round and
// its position records are gone and every winner's pending winnings are
// credited, in one commit.
func (e *Engine) ResolveRound(ctx context.Context, caller Principal, payload OraclePayload) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := newTxn(e.store)
	if err := e.requireOracle(ctx, t, caller); err != nil {
		return err
	}
	if payload.Price.IsZero() {
		return ErrInvalidPrice
	}
	round, err := e.loadActiveRound(ctx, t)
	if err != nil {
		return err
	}
	if e.seq.Sequence() < round.EndMarker {
		return ErrRoundNotEnded
	}
	if payload.RoundID != round.StartMarker {
		return ErrInvalidOracleRound
	}
	now := e.seq.Timestamp()
	if now > OracleMaxAge && now-OracleMaxAge > payload.Timestamp {
		return ErrStaleOracleData
	}

	var outcome settlementOutcome
	switch round.Mode {
	case ModeUpDown:
		outcome, err = e.settleUpDown(ctx, t, round, payload.Price)
	case ModePrecision:
		outcome, err = e.settlePrecision(ctx, t, payload.Price)
	default:
		err = ErrInvalidMode
	}
	if err != nil {
		return err
	}

	t.delete(KeyActiveRound())
	t.delete(KeyUpDownPositions())
	t.delete(KeyPrecisionPredictions())
	if err := t.commit(ctx); err != nil {
		return err
	}

	e.logger.Info("round resolved",
		zap.Uint64("round_id", round.RoundID),
		zap.String("mode", round.Mode.String()),
		zap.String("price", payload.Price.String()),
		zap.Int("winner_count", outcome.winnerCount),
		zap.String("paid_total", outcome.paidTotal.String()),
		zap.String("remainder", outcome.remainder.String()),
		zap.Bool("refunded", outcome.refunded))
	if e.events != nil {
		e.events.PublishResolution(ResolutionEvent{
			ID:          uuid.NewString(),
			RoundID:     round.RoundID,
			Mode:        round.Mode,
			Price:       payload.Price,
			WinnerCount: outcome.winnerCount,
			PaidTotal:   outcome.paidTotal,
			Remainder:   outcome.remainder,
			Refunded:    outcome.refunded,
		})
	}
	return nil
}

type settlementOutcome struct {
	winnerCount int
	paidTotal   num.Int128
	remainder   num.Int128
	refunded    bool
}

func (e *Engine) settleUpDown(ctx context.Context, t *txn, round *Round, price num.Uint128) (settlementOutcome, error) {
	positions := make(map[Principal]UserPosition)
	if _, err := t.get(ctx, KeyUpDownPositions(), &positions); err != nil {
		return settlementOutcome{}, err
	}
	users := make([]Principal, 0, len(positions))
	for u := range positions {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })

	var winningSide BetSide
	var winningPool, losingPool num.Int128
	switch price.Cmp(round.PriceStart) {
	case 0:
		return e.refundPositions(ctx, t, users, positions)
	case 1:
		winningSide, winningPool, losingPool = SideUp, round.PoolUp, round.PoolDown
	case -1:
		winningSide, winningPool, losingPool = SideDown, round.PoolDown, round.PoolUp
	}

	// One side empty: no pool to divide, the staked side gets its
	// money back.
	if winningPool.IsZero() || losingPool.IsZero() {
		return e.refundPositions(ctx, t, users, positions)
	}

	var out settlementOutcome
	var owed num.Int128
	for _, user := range users {
		pos := positions[user]
		if pos.Side != winningSide {
			if err := e.recordLoss(ctx, t, user); err != nil {
				return settlementOutcome{}, err
			}
			continue
		}
		numerator, err := pos.Amount.Mul(losingPool)
		if err != nil {
			return settlementOutcome{}, ErrOverflow
		}
		share := numerator.Quo(winningPool)
		payout, err := pos.Amount.Add(share)
		if err != nil {
			return settlementOutcome{}, ErrOverflow
		}
		if err := e.creditPending(ctx, t, user, payout); err != nil {
			return settlementOutcome{}, err
		}
		if err := e.recordWin(ctx, t, user); err != nil {
			return settlementOutcome{}, err
		}
		out.winnerCount++
		if out.paidTotal, err = out.paidTotal.Add(payout); err != nil {
			return settlementOutcome{}, ErrOverflow
		}
	}
	var err error
	if owed, err = winningPool.Add(losingPool); err != nil {
		return settlementOutcome{}, ErrOverflow
	}
	if out.remainder, err = owed.Sub(out.paidTotal); err != nil {
		return settlementOutcome{}, ErrOverflow
	}
	return out, nil
}

func (e *Engine) settlePrecision(ctx context.Context, t *txn, price num.Uint128) (settlementOutcome, error) {
	var predictions []PrecisionPrediction
	if _, err := t.get(ctx, KeyPrecisionPredictions(), &predictions); err != nil {
		return settlementOutcome{}, err
	}
	if len(predictions) == 0 {
		return settlementOutcome{}, nil
	}

	var pot num.Int128
	var best num.Uint128
	for i, p := range predictions {
		var err error
		if pot, err = pot.Add(p.Amount); err != nil {
			return settlementOutcome{}, ErrOverflow
		}
		diff := p.PredictedPrice.AbsDiff(price)
		if i == 0 || diff.Cmp(best) < 0 {
			best = diff
		}
	}

	winners := 0
	for _, p := range predictions {
		if p.PredictedPrice.AbsDiff(price).Cmp(best) == 0 {
			winners++
		}
	}
	perWinner := pot.Quo(num.I128FromInt64(int64(winners)))

	var out settlementOutcome
	out.winnerCount = winners
	for _, p := range predictions {
		if p.PredictedPrice.AbsDiff(price).Cmp(best) != 0 {
			if err := e.recordLoss(ctx, t, p.User); err != nil {
				return settlementOutcome{}, err
			}
			continue
		}
		if err := e.creditPending(ctx, t, p.User, perWinner); err != nil {
			return settlementOutcome{}, err
		}
		if err := e.recordWin(ctx, t, p.User); err != nil {
			return settlementOutcome{}, err
		}
		var err error
		if out.paidTotal, err = out.paidTotal.Add(perWinner); err != nil {
			return settlementOutcome{}, ErrOverflow
		}
	}
	var err error
	if out.remainder, err = pot.Sub(out.paidTotal); err != nil {
		return settlementOutcome{}, ErrOverflow
	}
	return out, nil
}

// refundPositions returns every stake to its owner's pending winnings.
// Stats are untouched on the refund path.
func (e *Engine) refundPositions(ctx context.Context, t *txn, users []Principal, positions map[Principal]UserPosition) (settlementOutcome, error) {
	var out settlementOutcome
	out.refunded = true
	for _, user := range users {
		pos := positions[user]
		if err := e.creditPending(ctx, t, user, pos.Amount); err != nil {
			return settlementOutcome{}, err
		}
		var err error
		if out.paidTotal, err = out.paidTotal.Add(pos.Amount); err != nil {
			return settlementOutcome{}, ErrOverflow
		}
	}
	return out, nil
}

func (e *Engine) creditPending(ctx context.Context, t *txn, user Principal, amount num.Int128) error {
	var pending num.Int128
	if _, err := t.get(ctx, KeyPendingWinnings(user), &pending); err != nil {
		return err
	}
	updated, err := pending.Add(amount)
	if err != nil {
		return ErrOverflow
	}
	return t.put(KeyPendingWinnings(user), updated)
}
