package models

import (
	"time"
)

// ManualGameRef is the sentinel external reference meaning the bet was
// entered by hand and is not linked to a sourced game.
const ManualGameRef = "manual"

// Game is the internal row materialized from the external game source.
// Rows are created lazily (get-or-create keyed by external_ref) the first
// time a bet references the game.
type Game struct {
	ID          int64      `db:"id"`
	ExternalRef string     `db:"external_ref"`
	League      string     `db:"league"`
	HomeTeam    string     `db:"home_team"`
	AwayTeam    string     `db:"away_team"`
	StartTime   *time.Time `db:"start_time"`
	CreatedAt   time.Time  `db:"created_at"`
}

// GameData is the payload returned by the external game source
type GameData struct {
	ExternalRef string
	League      string
	HomeTeam    string
	AwayTeam    string
	StartTime   *time.Time
}
