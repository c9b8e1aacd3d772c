package models

import (
	"time"
)

// WinMilestones are the win counts that earn a community achievement
var WinMilestones = []int{10, 25, 50, 100, 250}

// CapperRecord holds denormalized per-user-per-guild settled-bet counters.
// It is a read model: always reproducible by re-aggregating bet statuses,
// and refreshed by full recount after every resolution.
type CapperRecord struct {
	GuildID   int64     `db:"guild_id"`
	UserID    int64     `db:"user_id"`
	Wins      int       `db:"wins"`
	Losses    int       `db:"losses"`
	Pushes    int       `db:"pushes"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Settled returns the number of settled bets counted in the record
func (c *CapperRecord) Settled() int {
	return c.Wins + c.Losses + c.Pushes
}

// WinRate returns the win percentage over settled bets, pushes excluded
func (c *CapperRecord) WinRate() float64 {
	decided := c.Wins + c.Losses
	if decided == 0 {
		return 0
	}
	return float64(c.Wins) / float64(decided) * 100
}

// MilestoneCrossed returns the highest win milestone crossed when the win
// count moves from before to after, or 0 if none was crossed.
func MilestoneCrossed(before, after int) int {
	crossed := 0
	for _, m := range WinMilestones {
		if before < m && after >= m {
			crossed = m
		}
	}
	return crossed
}
