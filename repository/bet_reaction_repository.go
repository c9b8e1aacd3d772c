package repository

import (
	"context"
	"fmt"

	"betbot/database"
	"betbot/models"
)

// BetReactionRepository implements reaction audit data access
type BetReactionRepository struct {
	q queryable
}

// NewBetReactionRepository creates a new bet reaction repository
func NewBetReactionRepository(db *database.DB) *BetReactionRepository {
	return &BetReactionRepository{q: db.Pool}
}

// newBetReactionRepositoryWithTx creates a new bet reaction repository with a transaction
func newBetReactionRepositoryWithTx(tx queryable) *BetReactionRepository {
	return &BetReactionRepository{q: tx}
}

// RecordIfAbsent inserts a reaction unless the same
// (bet_serial, user_id, emoji, message_id) tuple already exists.
// Duplicates are ignored, not errors.
func (r *BetReactionRepository) RecordIfAbsent(ctx context.Context, reaction *models.BetReaction) (bool, error) {
	query := `
		INSERT INTO bet_reactions (bet_serial, guild_id, user_id, emoji, channel_id, message_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (bet_serial, user_id, emoji, message_id) DO NOTHING
	`

	result, err := r.q.Exec(ctx, query,
		reaction.BetSerial,
		reaction.GuildID,
		reaction.UserID,
		reaction.Emoji,
		reaction.ChannelID,
		reaction.MessageID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to record reaction: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// Delete removes the reaction matching the tuple, if present
func (r *BetReactionRepository) Delete(ctx context.Context, betSerial, userID int64, emoji string, messageID int64) error {
	query := `
		DELETE FROM bet_reactions
		WHERE bet_serial = $1 AND user_id = $2 AND emoji = $3 AND message_id = $4
	`

	_, err := r.q.Exec(ctx, query, betSerial, userID, emoji, messageID)
	if err != nil {
		return fmt.Errorf("failed to delete reaction for bet %d: %w", betSerial, err)
	}
	return nil
}

// GetByBet returns all recorded reactions for a bet
func (r *BetReactionRepository) GetByBet(ctx context.Context, betSerial int64) ([]*models.BetReaction, error) {
	query := `
		SELECT id, bet_serial, guild_id, user_id, emoji, channel_id, message_id, created_at
		FROM bet_reactions
		WHERE bet_serial = $1
		ORDER BY created_at ASC
	`

	rows, err := r.q.Query(ctx, query, betSerial)
	if err != nil {
		return nil, fmt.Errorf("failed to get reactions for bet %d: %w", betSerial, err)
	}
	defer rows.Close()

	var reactions []*models.BetReaction
	for rows.Next() {
		var reaction models.BetReaction
		err := rows.Scan(
			&reaction.ID,
			&reaction.BetSerial,
			&reaction.GuildID,
			&reaction.UserID,
			&reaction.Emoji,
			&reaction.ChannelID,
			&reaction.MessageID,
			&reaction.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		reactions = append(reactions, &reaction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reactions: %w", err)
	}

	return reactions, nil
}
