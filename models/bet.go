package models

import (
	"time"
)

// BetType distinguishes single-selection bets from multi-leg parlays
type BetType string

const (
	BetTypeStraight BetType = "straight"
	BetTypeParlay   BetType = "parlay"
)

// BetStatus represents the lifecycle state of a bet
type BetStatus string

const (
	BetStatusPending BetStatus = "pending"
	BetStatusWon     BetStatus = "won"
	BetStatusLost    BetStatus = "lost"
	BetStatusPush    BetStatus = "push"
)

// Bet represents a wager placed by a user in a guild
type Bet struct {
	BetSerial      int64      `db:"bet_serial"`
	GuildID        int64      `db:"guild_id"`
	UserID         int64      `db:"user_id"`
	League         string     `db:"league"`
	BetType        BetType    `db:"bet_type"`
	Units          float64    `db:"units"`
	Odds           float64    `db:"odds"`
	Team           string     `db:"team"`
	Opponent       string     `db:"opponent"`
	Line           string     `db:"line"`
	GameID         *int64     `db:"game_id"`
	Legs           int        `db:"legs"`
	ChannelID      *int64     `db:"channel_id"`
	MessageID      *int64     `db:"message_id"`
	Confirmed      bool       `db:"confirmed"`
	Status         BetStatus  `db:"status"`
	ResultValue    *float64   `db:"result_value"`
	Details        BetDetails `db:"bet_details"`
	ScheduledStart *time.Time `db:"scheduled_start"`
	ExpiresAt      *time.Time `db:"expires_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// BetLeg is one selection inside a bet's details blob. Straight bets carry a
// single leg mirroring their denormalized columns; parlays carry one per
// selection.
type BetLeg struct {
	Odds        float64 `json:"odds"`
	Team        string  `json:"team"`
	Opponent    string  `json:"opponent,omitempty"`
	Line        string  `json:"line,omitempty"`
	League      string  `json:"league,omitempty"`
	ExternalRef string  `json:"external_ref,omitempty"`
}

// BetDetails is the serialized context stored alongside a bet so the slip can
// be redisplayed without re-querying the game source. Stored as JSONB.
type BetDetails struct {
	Legs         []BetLeg `json:"legs"`
	CombinedOdds float64  `json:"combined_odds,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// IsTerminal reports whether the bet has been settled
func (b *Bet) IsTerminal() bool {
	return b.Status != BetStatusPending
}

// CanBeResolvedBy checks whether the reacting user may settle this bet
func (b *Bet) CanBeResolvedBy(userID int64, privileged bool) bool {
	return privileged || b.UserID == userID
}

// SettlementPeriod returns the ledger year/month for this bet: the scheduled
// game start when known, otherwise the creation time.
func (b *Bet) SettlementPeriod() (year int, month int) {
	t := b.CreatedAt
	if b.ScheduledStart != nil {
		t = *b.ScheduledStart
	}
	return t.Year(), int(t.Month())
}
