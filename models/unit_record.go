package models

import (
	"time"
)

// UnitRecord is the one true ledger row for a settled bet. Exactly one row
// exists per resolved bet_serial; the upsert that writes it is idempotent.
type UnitRecord struct {
	ID                 int64     `db:"id"`
	BetSerial          int64     `db:"bet_serial"`
	GuildID            int64     `db:"guild_id"`
	UserID             int64     `db:"user_id"`
	Year               int       `db:"year"`
	Month              int       `db:"month"`
	Units              float64   `db:"units"`
	Odds               float64   `db:"odds"`
	MonthlyResultValue float64   `db:"monthly_result_value"`
	TotalResultValue   float64   `db:"total_result_value"`
	CreatedAt          time.Time `db:"created_at"`
}

// LeaderboardEntry is one row of the monthly net-units leaderboard
type LeaderboardEntry struct {
	Rank      int
	UserID    int64
	GuildID   int64
	BetCount  int
	NetUnits  float64
	UnitsRisk float64
}
