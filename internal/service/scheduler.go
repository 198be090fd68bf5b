// Package service holds the host-side jobs that drive the engine on a
// schedule.
package service

import (
	"context"

	"go.uber.org/zap"

	"pricebet/internal/config"
	"pricebet/internal/market"
	"pricebet/internal/num"
)

// RoundScheduler watches round progress and, when enabled, opens a new
// round whenever the engine goes idle. It acts as the configured admin
// principal; resolution stays with the oracle.
type RoundScheduler struct {
	Engine *market.Engine
	Seq    market.Sequencer
	Logger *zap.Logger
	Cfg    config.SchedulerConfig
}

func NewRoundScheduler(engine *market.Engine, seq market.Sequencer, logger *zap.Logger, cfg config.SchedulerConfig) *RoundScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoundScheduler{Engine: engine, Seq: seq, Logger: logger, Cfg: cfg}
}

// Watchdog logs rounds sitting unresolved past their end marker so
// operators notice a stalled oracle.
func (s *RoundScheduler) Watchdog(ctx context.Context) {
	if s == nil || s.Engine == nil {
		return
	}
	round, err := s.Engine.GetActiveRound(ctx)
	if err == market.ErrNoActiveRound {
		return
	}
	if err != nil {
		s.Logger.Warn("watchdog round lookup failed", zap.Error(err))
		return
	}
	now := s.Seq.Sequence()
	if now < round.EndMarker {
		return
	}
	s.Logger.Warn("round awaiting resolution",
		zap.Uint64("round_id", round.RoundID),
		zap.Uint64("end_marker", round.EndMarker),
		zap.Uint64("now", now),
		zap.Uint64("overdue_by", now-round.EndMarker))
}

// AutoOpenRound opens a round when none is active. No-op unless enabled
// with an admin principal and a parseable start price.
func (s *RoundScheduler) AutoOpenRound(ctx context.Context) {
	if s == nil || s.Engine == nil || !s.Cfg.AutoRoundEnabled || s.Cfg.AutoRoundAdmin == "" {
		return
	}
	if _, err := s.Engine.GetActiveRound(ctx); err != market.ErrNoActiveRound {
		if err != nil && err != market.ErrNoActiveRound {
			s.Logger.Warn("auto round lookup failed", zap.Error(err))
		}
		return
	}
	startPrice, err := num.ParseUint128(s.Cfg.AutoRoundStartPrice)
	if err != nil {
		s.Logger.Warn("auto round start price invalid",
			zap.String("start_price", s.Cfg.AutoRoundStartPrice), zap.Error(err))
		return
	}
	round, err := s.Engine.CreateRound(ctx,
		market.Principal(s.Cfg.AutoRoundAdmin),
		startPrice,
		market.RoundMode(s.Cfg.AutoRoundMode))
	if err != nil {
		s.Logger.Warn("auto round open failed", zap.Error(err))
		return
	}
	s.Logger.Info("auto round opened",
		zap.Uint64("round_id", round.RoundID),
		zap.String("mode", round.Mode.String()))
}
