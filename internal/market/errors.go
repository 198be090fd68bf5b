package market

// Error is a stable engine error. Code is part of the API contract and is
// what handlers and clients switch on; Message is for humans.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

var (
	ErrAlreadyInitialized = &Error{Code: "already_initialized", Message: "engine already initialized"}
	ErrAdminNotSet        = &Error{Code: "admin_not_set", Message: "admin principal not configured"}
	ErrOracleNotSet       = &Error{Code: "oracle_not_set", Message: "oracle principal not configured"}
	ErrUnauthorizedAdmin  = &Error{Code: "unauthorized_admin", Message: "caller is not the admin"}
	ErrUnauthorizedOracle = &Error{Code: "unauthorized_oracle", Message: "caller is not the oracle"}
	ErrUnauthorizedUser   = &Error{Code: "unauthorized_user", Message: "caller may only act on its own account"}

	ErrInvalidBetAmount       = &Error{Code: "invalid_bet_amount", Message: "bet amount must be positive"}
	ErrNoActiveRound          = &Error{Code: "no_active_round", Message: "no round is active"}
	ErrRoundEnded             = &Error{Code: "round_ended", Message: "betting window has closed"}
	ErrRoundNotEnded          = &Error{Code: "round_not_ended", Message: "round has not reached its end marker"}
	ErrRoundAlreadyActive     = &Error{Code: "round_already_active", Message: "a round is already active"}
	ErrInsufficientBalance    = &Error{Code: "insufficient_balance", Message: "balance is lower than the stake"}
	ErrAlreadyBet             = &Error{Code: "already_bet", Message: "user already holds a position in this round"}
	ErrOverflow               = &Error{Code: "overflow", Message: "arithmetic overflow"}
	ErrInvalidPrice           = &Error{Code: "invalid_price", Message: "price must be non-zero"}
	ErrInvalidDuration        = &Error{Code: "invalid_duration", Message: "window lengths must be positive and bet shorter than run"}
	ErrInvalidMode            = &Error{Code: "invalid_mode", Message: "unknown round mode"}
	ErrInvalidPriceScale      = &Error{Code: "invalid_price_scale", Message: "predicted price outside the scaled range"}
	ErrWrongModeForPrediction = &Error{Code: "wrong_mode", Message: "operation does not match the active round mode"}
	ErrStaleOracleData        = &Error{Code: "stale_oracle_data", Message: "oracle payload is too old"}
	ErrInvalidOracleRound     = &Error{Code: "invalid_oracle_round", Message: "oracle payload does not correlate with the active round"}
)
