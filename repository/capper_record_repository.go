package repository

import (
	"context"
	"fmt"

	"betbot/database"
	"betbot/models"

	"github.com/jackc/pgx/v5"
)

// CapperRecordRepository implements the capper read model data access
type CapperRecordRepository struct {
	q queryable
}

// NewCapperRecordRepository creates a new capper record repository
func NewCapperRecordRepository(db *database.DB) *CapperRecordRepository {
	return &CapperRecordRepository{q: db.Pool}
}

// newCapperRecordRepositoryWithTx creates a new capper record repository with a transaction
func newCapperRecordRepositoryWithTx(tx queryable) *CapperRecordRepository {
	return &CapperRecordRepository{q: tx}
}

// Refresh recomputes the user's counters with a full aggregate recount over
// bet statuses, not an increment, so the row is always reproducible from
// the bets table.
func (r *CapperRecordRepository) Refresh(ctx context.Context, guildID, userID int64) (*models.CapperRecord, error) {
	query := `
		INSERT INTO capper_records (guild_id, user_id, wins, losses, pushes, updated_at)
		SELECT $1, $2,
		       COUNT(*) FILTER (WHERE status = 'won'),
		       COUNT(*) FILTER (WHERE status = 'lost'),
		       COUNT(*) FILTER (WHERE status = 'push'),
		       NOW()
		FROM bets
		WHERE guild_id = $1 AND user_id = $2
		ON CONFLICT (guild_id, user_id) DO UPDATE SET
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			pushes = EXCLUDED.pushes,
			updated_at = EXCLUDED.updated_at
		RETURNING guild_id, user_id, wins, losses, pushes, updated_at
	`

	var record models.CapperRecord
	err := r.q.QueryRow(ctx, query, guildID, userID).Scan(
		&record.GuildID,
		&record.UserID,
		&record.Wins,
		&record.Losses,
		&record.Pushes,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh capper record for user %d: %w", userID, err)
	}

	return &record, nil
}

// Get retrieves a user's record in a guild
func (r *CapperRecordRepository) Get(ctx context.Context, guildID, userID int64) (*models.CapperRecord, error) {
	query := `
		SELECT guild_id, user_id, wins, losses, pushes, updated_at
		FROM capper_records
		WHERE guild_id = $1 AND user_id = $2
	`

	var record models.CapperRecord
	err := r.q.QueryRow(ctx, query, guildID, userID).Scan(
		&record.GuildID,
		&record.UserID,
		&record.Wins,
		&record.Losses,
		&record.Pushes,
		&record.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get capper record for user %d: %w", userID, err)
	}

	return &record, nil
}
