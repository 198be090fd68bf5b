package market

// DataKey addresses one record in the engine's closed key namespace.
// Singleton keys use "-" as their id; per-user keys carry the principal.
type DataKey struct {
	kind string
	user Principal
}

const singletonID = "-"

func KeyAdmin() DataKey { return DataKey{kind: "admin"} }
func KeyOracle() DataKey { return DataKey{kind: "oracle"} }
func KeyActiveRound() DataKey { return DataKey{kind: "active_round"} }
func KeyLastRoundID() DataKey { return DataKey{kind: "last_round_id"} }
func KeyWindowConfig() DataKey { return DataKey{kind: "window_config"} }

// KeyUpDownPositions and KeyPrecisionPredictions hold the full position
// book for the active round; they are cleared on resolution.
func KeyUpDownPositions() DataKey { return DataKey{kind: "updown_positions"} }
func KeyPrecisionPredictions() DataKey { return DataKey{kind: "precision_predictions"} }

func KeyBalance(u Principal) DataKey { return DataKey{kind: "balance", user: u} }
func KeyPendingWinnings(u Principal) DataKey { return DataKey{kind: "pending_winnings", user: u} }
func KeyUserStats(u Principal) DataKey { return DataKey{kind: "user_stats", user: u} }

// Namespace groups records of the same kind; ID distinguishes records
// within a namespace.
func (k DataKey) Namespace() string { return k.kind }

func (k DataKey) ID() string {
	if k.user == "" {
		return singletonID
	}
	return string(k.user)
}

func (k DataKey) String() string { return k.Namespace() + "/" + k.ID() }
