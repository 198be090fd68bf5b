package market

import "context"

func (e *Engine) recordWin(ctx context.Context, t *txn, user Principal) error {
	var stats UserStats
	if _, err := t.get(ctx, KeyUserStats(user), &stats); err != nil {
		return err
	}
	stats.TotalWins++
	stats.CurrentStreak++
	if stats.CurrentStreak > stats.BestStreak {
		stats.BestStreak = stats.CurrentStreak
	}
	return t.put(KeyUserStats(user), stats)
}

func (e *Engine) recordLoss(ctx context.Context, t *txn, user Principal) error {
	var stats UserStats
	if _, err := t.get(ctx, KeyUserStats(user), &stats); err != nil {
		return err
	}
	stats.TotalLosses++
	stats.CurrentStreak = 0
	return t.put(KeyUserStats(user), stats)
}

// GetUserStats returns the user's lifetime stats; zero-valued for users
// who never settled a round.
func (e *Engine) GetUserStats(ctx context.Context, user Principal) (UserStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var stats UserStats
	if _, err := newTxn(e.store).get(ctx, KeyUserStats(user), &stats); err != nil {
		return UserStats{}, err
	}
	return stats, nil
}
