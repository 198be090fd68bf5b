// Package clock supplies the engine's sequence counter from wall time.
package clock

import "time"

// System divides wall time since Epoch into fixed slots. Sequence values
// are monotonically non-decreasing as long as the host clock is.
type System struct {
	Epoch time.Time
	Slot  time.Duration
}

func NewSystem(slot time.Duration) *System {
	if slot <= 0 {
		slot = 5 * time.Second
	}
	return &System{
		Epoch: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Slot:  slot,
	}
}

func (s *System) Sequence() uint64 {
	elapsed := time.Since(s.Epoch)
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed / s.Slot)
}

func (s *System) Timestamp() uint64 {
	return uint64(time.Now().Unix())
}
