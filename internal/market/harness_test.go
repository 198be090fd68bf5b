package market_test

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"pricebet/internal/market"
	"pricebet/internal/num"
	"pricebet/internal/store/memstore"
)

const (
	admin  = market.Principal("admin")
	oracle = market.Principal("oracle")
	alice  = market.Principal("alice")
	bob    = market.Principal("bob")
	carol  = market.Principal("carol")
)

type stubSeq struct {
	seq uint64
	ts  uint64
}

func (s *stubSeq) Sequence() uint64  { return s.seq }
func (s *stubSeq) Timestamp() uint64 { return s.ts }

type eventRecorder struct {
	events []market.ResolutionEvent
}

func (r *eventRecorder) PublishResolution(ev market.ResolutionEvent) {
	r.events = append(r.events, ev)
}

type fixture struct {
	ctx context.Context
	eng *market.Engine
	seq *stubSeq
	rec *eventRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	seq := &stubSeq{seq: 100, ts: 1000}
	rec := &eventRecorder{}
	eng := market.NewEngine(market.Options{
		Store:  memstore.New(),
		Seq:    seq,
		Events: rec,
		Logger: zap.NewNop(),
	})
	return &fixture{ctx: context.Background(), eng: eng, seq: seq, rec: rec}
}

func newInitializedFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	if err := f.eng.Initialize(f.ctx, admin, oracle); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return f
}

func (f *fixture) fund(t *testing.T, users ...market.Principal) {
	t.Helper()
	for _, u := range users {
		if _, err := f.eng.MintInitial(f.ctx, u, u); err != nil {
			t.Fatalf("mint %s: %v", u, err)
		}
	}
}

func (f *fixture) openRound(t *testing.T, startPrice uint64, mode market.RoundMode) *market.Round {
	t.Helper()
	round, err := f.eng.CreateRound(f.ctx, admin, num.U128FromUint64(startPrice), mode)
	if err != nil {
		t.Fatalf("create round: %v", err)
	}
	return round
}

// advancePastEnd moves the sequence to the round's end marker so the
// round becomes resolvable.
func (f *fixture) advancePastEnd(round *market.Round) {
	f.seq.seq = round.EndMarker
}

func (f *fixture) payload(round *market.Round, price uint64) market.OraclePayload {
	return market.OraclePayload{
		Price:     num.U128FromUint64(price),
		Timestamp: f.seq.ts,
		RoundID:   round.StartMarker,
	}
}

func amt(x int64) num.Int128 { return num.I128FromInt64(x) }

func mustBalance(t *testing.T, f *fixture, u market.Principal) num.Int128 {
	t.Helper()
	bal, err := f.eng.Balance(f.ctx, u)
	if err != nil {
		t.Fatalf("balance %s: %v", u, err)
	}
	return bal
}

func mustPending(t *testing.T, f *fixture, u market.Principal) num.Int128 {
	t.Helper()
	pending, err := f.eng.GetPendingWinnings(f.ctx, u)
	if err != nil {
		t.Fatalf("pending %s: %v", u, err)
	}
	return pending
}
