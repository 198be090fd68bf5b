// Package market implements the round settlement engine: balances, round
// lifecycle, the two resolution modes, oracle payload validation, pending
// winnings, and user stats. All state lives behind the KV contract and every
// operation is all-or-nothing.
package market

import "pricebet/internal/num"

// Principal identifies a caller. The transport layer resolves whatever
// credential it accepts into one of these; the engine only compares them.
type Principal string

// RoundMode selects the settlement algorithm for a round.
type RoundMode uint32

const (
	ModeUpDown    RoundMode = 0
	ModePrecision RoundMode = 1
)

func (m RoundMode) String() string {
	switch m {
	case ModeUpDown:
		return "updown"
	case ModePrecision:
		return "precision"
	}
	return "unknown"
}

// BetSide is the direction of an Up/Down stake.
type BetSide string

const (
	SideUp   BetSide = "up"
	SideDown BetSide = "down"
)

// Precision predictions are prices scaled by 10^4. A prediction of 2.2970
// is submitted as 22970.
const (
	PriceScale       = 10_000
	MinScaledPrice   = 1
	MaxScaledPrice   = 999_999
	OracleMaxAge     = 300
	DefaultBetWindow = 6
	DefaultRunWindow = 12
)

// Round is the single active round. StartMarker is the sequence value at
// creation and doubles as the oracle correlation id; BetEndMarker and
// EndMarker are derived from the window config at creation time.
type Round struct {
	RoundID      uint64      `json:"round_id"`
	Mode         RoundMode   `json:"mode"`
	StartMarker  uint64      `json:"start_marker"`
	BetEndMarker uint64      `json:"bet_end_marker"`
	EndMarker    uint64      `json:"end_marker"`
	PriceStart   num.Uint128 `json:"price_start"`
	PoolUp       num.Int128  `json:"pool_up"`
	PoolDown     num.Int128  `json:"pool_down"`
}

// UserPosition is one user's Up/Down stake in the active round.
type UserPosition struct {
	Amount num.Int128 `json:"amount"`
	Side   BetSide    `json:"side"`
}

// PrecisionPrediction is one user's stake and price guess in a Precision
// round. Predictions keep submission order.
type PrecisionPrediction struct {
	User           Principal   `json:"user"`
	Amount         num.Int128  `json:"amount"`
	PredictedPrice num.Uint128 `json:"predicted_price"`
}

// UserStats tracks lifetime outcomes. Refunds touch none of these.
type UserStats struct {
	TotalWins     uint32 `json:"total_wins"`
	TotalLosses   uint32 `json:"total_losses"`
	CurrentStreak uint32 `json:"current_streak"`
	BestStreak    uint32 `json:"best_streak"`
}

// OraclePayload is the observation the oracle submits to resolve a round.
// RoundID must equal the active round's start marker.
type OraclePayload struct {
	Price     num.Uint128 `json:"price"`
	Timestamp uint64      `json:"timestamp"`
	RoundID   uint64      `json:"round_id"`
}

// WindowConfig holds the bet and run window lengths in sequence units.
type WindowConfig struct {
	BetWindow uint64 `json:"bet_window"`
	RunWindow uint64 `json:"run_window"`
}

// ResolutionEvent is published after a round commit. Remainder is the
// truncation dust the payout formulas left undistributed.
type ResolutionEvent struct {
	ID          string      `json:"id"`
	RoundID     uint64      `json:"round_id"`
	Mode        RoundMode   `json:"mode"`
	Price       num.Uint128 `json:"price"`
	WinnerCount int         `json:"winner_count"`
	PaidTotal   num.Int128  `json:"paid_total"`
	Remainder   num.Int128  `json:"remainder"`
	Refunded    bool        `json:"refunded"`
}
