package market_test

import (
	"math/rand"
	"testing"

	"pricebet/internal/market"
	"pricebet/internal/num"
)

func TestResolveValidation(t *testing.T) {
	f := newInitializedFixture(t)
	f.fund(t, alice)
	round := f.openRound(t, 1_000_000, market.ModeUpDown)

	if err := f.eng.ResolveRound(f.ctx, bob, f.payload(round, 1_100_000)); err != market.ErrUnauthorizedOracle {
		t.Fatalf("non-oracle = %v", err)
	}
	if err := f.eng.ResolveRound(f.ctx, oracle, market.OraclePayload{Timestamp: f.seq.ts, RoundID: round.StartMarker}); err != market.ErrInvalidPrice {
		t.Fatalf("zero price = %v", err)
	}
	f.seq.seq = round.EndMarker - 1
	if err := f.eng.ResolveRound(f.ctx, oracle, f.payload(round, 1_100_000)); err != market.ErrRoundNotEnded {
		t.Fatalf("before end = %v", err)
	}
	f.advancePastEnd(round)
	bad := f.payload(round, 1_100_000)
	bad.RoundID = round.StartMarker + 1
	if err := f.eng.ResolveRound(f.ctx, oracle, bad); err != market.ErrInvalidOracleRound {
		t.Fatalf("wrong round id = %v", err)
	}
	if err := f.eng.ResolveRound(f.ctx, oracle, f.payload(round, 1_100_000)); err != nil {
		t.Fatalf("valid resolve: %v", err)
	}
	if err := f.eng.ResolveRound(f.ctx, oracle, f.payload(round, 1_100_000)); err != market.ErrNoActiveRound {
		t.Fatalf("double resolve = %v", err)
	}
}

func TestResolveFreshnessWindow(t *testing.T) {
	f := newInitializedFixture(t)
	round := f.openRound(t, 1_000_000, market.ModeUpDown)
	f.advancePastEnd(round)
	f.seq.ts = 1000

	stale := f.payload(round, 1_100_000)
	stale.Timestamp = 600
	if err := f.eng.ResolveRound(f.ctx, oracle, stale); err != market.ErrStaleOracleData {
		t.Fatalf("400-unit-old payload = %v", err)
	}

	// Exactly 300 units old still passes; only strictly older fails.
	boundary := f.payload(round, 1_100_000)
	boundary.Timestamp = 700
	if err := f.eng.ResolveRound(f.ctx, oracle, boundary); err != nil {
		t.Fatalf("300-unit-old payload: %v", err)
	}
}

func TestUpDownResolution(t *testing.T) {
	f := newInitializedFixture(t)
	f.fund(t, alice, bob)
	round := f.openRound(t, 1_000_000, market.ModeUpDown)

	if err := f.eng.PlaceBet(f.ctx, alice, alice, amt(1_000_000_000), market.SideUp); err != nil {
		t.Fatalf("alice bet: %v", err)
	}
	if err := f.eng.PlaceBet(f.ctx, bob, bob, amt(1_000_000_000), market.SideDown); err != nil {
		t.Fatalf("bob bet: %v", err)
	}

	f.advancePastEnd(round)
	if err := f.eng.ResolveRound(f.ctx, oracle, f.payload(round, 1_500_000)); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if _, err := f.eng.GetActiveRound(f.ctx); err != market.ErrNoActiveRound {
		t.Fatalf("round survived resolution: %v", err)
	}
	if got := mustPending(t, f, alice); got.Int64() != 2_000_000_000 {
		t.Fatalf("alice pending = %s, want 2000000000", got)
	}
	if got := mustPending(t, f, bob); !got.IsZero() {
		t.Fatalf("bob pending = %s, want 0", got)
	}

	aliceStats, _ := f.eng.GetUserStats(f.ctx, alice)
	if aliceStats.TotalWins != 1 || aliceStats.CurrentStreak != 1 || aliceStats.BestStreak != 1 {
		t.Fatalf("alice stats = %+v", aliceStats)
	}
	bobStats, _ := f.eng.GetUserStats(f.ctx, bob)
	if bobStats.TotalLosses != 1 || bobStats.CurrentStreak != 0 {
		t.Fatalf("bob stats = %+v", bobStats)
	}
}

func TestUpDownTieRefunds(t *testing.T) {
	f := newInitializedFixture(t)
	f.fund(t, alice, bob)
	round := f.openRound(t, 1_000_000, market.ModeUpDown)
	if err := f.eng.PlaceBet(f.ctx, alice, alice, amt(700), market.SideUp); err != nil {
		t.Fatalf("bet: %v", err)
	}
	if err := f.eng.PlaceBet(f.ctx, bob, bob, amt(900), market.SideDown); err != nil {
		t.Fatalf("bet: %v", err)
	}

	f.advancePastEnd(round)
	if err := f.eng.ResolveRound(f.ctx, oracle, f.payload(round, 1_000_000)); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := mustPending(t, f, alice); got.Int64() != 700 {
		t.Fatalf("alice refund = %s", got)
	}
	if got := mustPending(t, f, bob); got.Int64() != 900 {
		t.Fatalf("bob refund = %s", got)
	}
	stats, _ := f.eng.GetUserStats(f.ctx, alice)
	if stats != (market.UserStats{}) {
		t.Fatalf("refund touched stats: %+v", stats)
	}
}

func TestUpDownOneSidedRoundRefunds(t *testing.T) {
	f := newInitializedFixture(t)
	f.fund(t, alice, bob)
	round := f.openRound(t, 1_000_000, market.ModeUpDown)
	if err := f.eng.PlaceBet(f.ctx, alice, alice, amt(500), market.SideUp); err != nil {
		t.Fatalf("bet: %v", err)
	}
	if err := f.eng.PlaceBet(f.ctx, bob, bob, amt(600), market.SideUp); err != nil {
		t.Fatalf("bet: %v", err)
	}

	f.advancePastEnd(round)
	// Down wins but nobody staked Down: everyone gets their stake back.
	if err := f.eng.ResolveRound(f.ctx, oracle, f.payload(round, 900_000)); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := mustPending(t, f, alice); got.Int64() != 500 {
		t.Fatalf("alice refund = %s", got)
	}
	if got := mustPending(t, f, bob); got.Int64() != 600 {
		t.Fatalf("bob refund = %s", got)
	}
	stats, _ := f.eng.GetUserStats(f.ctx, alice)
	if stats != (market.UserStats{}) {
		t.Fatalf("refund touched stats: %+v", stats)
	}
	if len(f.rec.events) != 1 || !f.rec.events[0].Refunded {
		t.Fatalf("events = %+v", f.rec.events)
	}
}

func TestEmptyRoundResolves(t *testing.T) {
	f := newInitializedFixture(t)
	round := f.openRound(t, 1_000_000, market.ModeUpDown)
	f.advancePastEnd(round)
	if err := f.eng.ResolveRound(f.ctx, oracle, f.payload(round, 1_100_000)); err != nil {
		t.Fatalf("resolve empty round: %v", err)
	}
	if _, err := f.eng.GetActiveRound(f.ctx); err != market.ErrNoActiveRound {
		t.Fatalf("round not cleared: %v", err)
	}
	if len(f.rec.events) != 1 || f.rec.events[0].WinnerCount != 0 {
		t.Fatalf("events = %+v", f.rec.events)
	}
}

func TestPrecisionResolution(t *testing.T) {
	f := newInitializedFixture(t)
	f.fund(t, alice, bob, carol)
	round := f.openRound(t, 1_000_000, market.ModePrecision)

	if err := f.eng.PlacePrecisionPrediction(f.ctx, alice, alice, amt(300), num.U128FromUint64(22970)); err != nil {
		t.Fatalf("alice: %v", err)
	}
	if err := f.eng.PlacePrecisionPrediction(f.ctx, bob, bob, amt(400), num.U128FromUint64(23100)); err != nil {
		t.Fatalf("bob: %v", err)
	}
	if err := f.eng.PlacePrecisionPrediction(f.ctx, carol, carol, amt(500), num.U128FromUint64(24000)); err != nil {
		t.Fatalf("carol: %v", err)
	}

	f.advancePastEnd(round)
	if err := f.eng.ResolveRound(f.ctx, oracle, f.payload(round, 23000)); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// alice is 30 off, bob 100, carol 1000: alice takes the whole pot.
	if got := mustPending(t, f, alice); got.Int64() != 1200 {
		t.Fatalf("alice pending = %s, want 1200", got)
	}
	if got := mustPending(t, f, bob); !got.IsZero() {
		t.Fatalf("bob pending = %s", got)
	}
	stats, _ := f.eng.GetUserStats(f.ctx, carol)
	if stats.TotalLosses != 1 {
		t.Fatalf("carol stats = %+v", stats)
	}
}

func TestPrecisionTieSplitsPot(t *testing.T) {
	f := newInitializedFixture(t)
	f.fund(t, alice, bob, carol)
	round := f.openRound(t, 1_000_000, market.ModePrecision)

	// alice and bob are both 5 away from 23000, carol is far off.
	if err := f.eng.PlacePrecisionPrediction(f.ctx, alice, alice, amt(300), num.U128FromUint64(22995)); err != nil {
		t.Fatalf("alice: %v", err)
	}
	if err := f.eng.PlacePrecisionPrediction(f.ctx, bob, bob, amt(300), num.U128FromUint64(23005)); err != nil {
		t.Fatalf("bob: %v", err)
	}
	if err := f.eng.PlacePrecisionPrediction(f.ctx, carol, carol, amt(1), num.U128FromUint64(50000)); err != nil {
		t.Fatalf("carol: %v", err)
	}

	f.advancePastEnd(round)
	if err := f.eng.ResolveRound(f.ctx, oracle, f.payload(round, 23000)); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// pot 601 over two winners pays 300 each with 1 unit left over.
	if got := mustPending(t, f, alice); got.Int64() != 300 {
		t.Fatalf("alice pending = %s", got)
	}
	if got := mustPending(t, f, bob); got.Int64() != 300 {
		t.Fatalf("bob pending = %s", got)
	}
	ev := f.rec.events[len(f.rec.events)-1]
	if ev.WinnerCount != 2 || ev.Remainder.Int64() != 1 {
		t.Fatalf("event = %+v", ev)
	}
}

func TestResolutionEventPublished(t *testing.T) {
	f := newInitializedFixture(t)
	f.fund(t, alice, bob)
	round := f.openRound(t, 1_000_000, market.ModeUpDown)
	if err := f.eng.PlaceBet(f.ctx, alice, alice, amt(100), market.SideUp); err != nil {
		t.Fatalf("bet: %v", err)
	}
	if err := f.eng.PlaceBet(f.ctx, bob, bob, amt(100), market.SideDown); err != nil {
		t.Fatalf("bet: %v", err)
	}
	f.advancePastEnd(round)
	if err := f.eng.ResolveRound(f.ctx, oracle, f.payload(round, 1_500_000)); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if len(f.rec.events) != 1 {
		t.Fatalf("event count = %d", len(f.rec.events))
	}
	ev := f.rec.events[0]
	if ev.ID == "" || ev.RoundID != round.RoundID || ev.Price.String() != "1500000" {
		t.Fatalf("event = %+v", ev)
	}
	if ev.WinnerCount != 1 || ev.PaidTotal.Int64() != 200 {
		t.Fatalf("event payout = %+v", ev)
	}
}

func TestPendingAccumulatesAcrossRounds(t *testing.T) {
	f := newInitializedFixture(t)
	f.fund(t, alice, bob)

	for i := 0; i < 2; i++ {
		round := f.openRound(t, 1_000_000, market.ModeUpDown)
		if err := f.eng.PlaceBet(f.ctx, alice, alice, amt(100), market.SideUp); err != nil {
			t.Fatalf("alice bet: %v", err)
		}
		if err := f.eng.PlaceBet(f.ctx, bob, bob, amt(100), market.SideDown); err != nil {
			t.Fatalf("bob bet: %v", err)
		}
		f.advancePastEnd(round)
		if err := f.eng.ResolveRound(f.ctx, oracle, f.payload(round, 1_500_000)); err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}

	if got := mustPending(t, f, alice); got.Int64() != 400 {
		t.Fatalf("alice pending = %s, want 400", got)
	}
	stats, _ := f.eng.GetUserStats(f.ctx, alice)
	if stats.TotalWins != 2 || stats.CurrentStreak != 2 || stats.BestStreak != 2 {
		t.Fatalf("alice stats = %+v", stats)
	}
}

// Randomized conservation check: across many rounds with arbitrary
// stakes, winners never receive more than the pools held and never less
// than the pools minus division dust.
func TestUpDownConservation(t *testing.T) {
	f := newInitializedFixture(t)
	users := []market.Principal{alice, bob, carol, "dave", "erin"}
	f.fund(t, users...)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		round := f.openRound(t, 1_000_000, market.ModeUpDown)
		staked := int64(0)
		winners := 0
		for _, u := range users {
			amount := int64(rng.Intn(1000)) + 1
			side := market.SideDown
			if rng.Intn(2) == 0 {
				side = market.SideUp
			}
			if err := f.eng.PlaceBet(f.ctx, u, u, amt(amount), side); err != nil {
				t.Fatalf("round %d bet: %v", i, err)
			}
			staked += amount
			if side == market.SideUp {
				winners++
			}
		}

		before := make(map[market.Principal]int64)
		for _, u := range users {
			before[u] = mustPending(t, f, u).Int64()
		}

		f.advancePastEnd(round)
		if err := f.eng.ResolveRound(f.ctx, oracle, f.payload(round, 1_500_000)); err != nil {
			t.Fatalf("round %d resolve: %v", i, err)
		}

		paid := int64(0)
		for _, u := range users {
			paid += mustPending(t, f, u).Int64() - before[u]
		}
		if paid > staked {
			t.Fatalf("round %d paid %d out of %d staked", i, paid, staked)
		}
		maxDust := int64(winners) - 1
		if winners == 0 || winners == len(users) {
			maxDust = 0
		}
		if staked-paid > maxDust {
			t.Fatalf("round %d leaked %d units (winners=%d)", i, staked-paid, winners)
		}
	}
}

// Stats only ever move forward: totals never decrease, best streak never
// drops below current.
func TestStatsMonotonic(t *testing.T) {
	f := newInitializedFixture(t)
	f.fund(t, alice, bob)

	var prev market.UserStats
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 30; i++ {
		round := f.openRound(t, 1_000_000, market.ModeUpDown)
		if err := f.eng.PlaceBet(f.ctx, alice, alice, amt(10), market.SideUp); err != nil {
			t.Fatalf("bet: %v", err)
		}
		if err := f.eng.PlaceBet(f.ctx, bob, bob, amt(10), market.SideDown); err != nil {
			t.Fatalf("bet: %v", err)
		}
		f.advancePastEnd(round)
		price := uint64(900_000)
		if rng.Intn(2) == 0 {
			price = 1_100_000
		}
		if err := f.eng.ResolveRound(f.ctx, oracle, f.payload(round, price)); err != nil {
			t.Fatalf("resolve: %v", err)
		}

		stats, err := f.eng.GetUserStats(f.ctx, alice)
		if err != nil {
			t.Fatalf("stats: %v", err)
		}
		if stats.TotalWins < prev.TotalWins || stats.TotalLosses < prev.TotalLosses {
			t.Fatalf("totals went backwards: %+v -> %+v", prev, stats)
		}
		if stats.BestStreak < prev.BestStreak || stats.BestStreak < stats.CurrentStreak {
			t.Fatalf("best streak regressed: %+v", stats)
		}
		if stats.TotalWins+stats.TotalLosses != uint32(i+1) {
			t.Fatalf("round %d: settled count = %d", i, stats.TotalWins+stats.TotalLosses)
		}
		prev = stats
	}
}
