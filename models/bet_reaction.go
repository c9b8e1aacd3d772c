package models

import (
	"time"
)

// BetReaction is the audit record of a user's reaction on a bet's slip
// message. Reactions are not authoritative for resolution; the reaction
// event drives the state machine and this row only records that it happened.
type BetReaction struct {
	ID        int64     `db:"id"`
	BetSerial int64     `db:"bet_serial"`
	GuildID   int64     `db:"guild_id"`
	UserID    int64     `db:"user_id"`
	Emoji     string    `db:"emoji"`
	ChannelID int64     `db:"channel_id"`
	MessageID int64     `db:"message_id"`
	CreatedAt time.Time `db:"created_at"`
}
