package market

import (
	"context"
	"encoding/json"
	"fmt"
)

// Mutation is one staged write. Delete wins over Value.
type Mutation struct {
	Key    DataKey
	Value  []byte
	Delete bool
}

// KV is the storage contract the engine runs on. Get reports presence
// separately from errors; Apply commits a batch atomically — either every
// mutation lands or none do.
type KV interface {
	Get(ctx context.Context, key DataKey) ([]byte, bool, error)
	Apply(ctx context.Context, muts []Mutation) error
}

// Sequencer supplies the engine's notion of "now": a monotonic sequence
// counter for round markers and a timestamp for oracle freshness.
type Sequencer interface {
	Sequence() uint64
	Timestamp() uint64
}

// EventSink receives resolution events after the commit succeeds.
type EventSink interface {
	PublishResolution(ev ResolutionEvent)
}

// txn overlays staged writes on the backing store so an operation reads its
// own uncommitted state. Nothing reaches the store until commit.
type txn struct {
	store  KV
	order  []DataKey
	staged map[string]Mutation
}

func newTxn(store KV) *txn {
	return &txn{store: store, staged: make(map[string]Mutation)}
}

func (t *txn) get(ctx context.Context, key DataKey, out any) (bool, error) {
	var raw []byte
	if m, ok := t.staged[key.String()]; ok {
		if m.Delete {
			return false, nil
		}
		raw = m.Value
	} else {
		stored, found, err := t.store.Get(ctx, key)
		if err != nil {
			return false, fmt.Errorf("get %s: %w", key, err)
		}
		if !found {
			return false, nil
		}
		raw = stored
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (t *txn) put(key DataKey, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	t.stage(Mutation{Key: key, Value: raw})
	return nil
}

func (t *txn) delete(key DataKey) {
	t.stage(Mutation{Key: key, Delete: true})
}

func (t *txn) stage(m Mutation) {
	id := m.Key.String()
	if _, ok := t.staged[id]; !ok {
		t.order = append(t.order, m.Key)
	}
	t.staged[id] = m
}

func (t *txn) commit(ctx context.Context) error {
	if len(t.order) == 0 {
		return nil
	}
	muts := make([]Mutation, 0, len(t.order))
	for _, key := range t.order {
		muts = append(muts, t.staged[key.String()])
	}
	return t.store.Apply(ctx, muts)
}
