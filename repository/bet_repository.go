package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"betbot/database"
	"betbot/models"

	"github.com/jackc/pgx/v5"
)

// betColumns is the canonical select list for bets
const betColumns = `
	bet_serial, guild_id, user_id, league, bet_type, units, odds,
	team, opponent, line, game_id, legs, channel_id, message_id,
	confirmed, status, result_value, bet_details, scheduled_start,
	expires_at, created_at, updated_at
`

// updatableBetColumns whitelists the columns a partial update may touch
var updatableBetColumns = map[string]bool{
	"league":          true,
	"units":           true,
	"odds":            true,
	"team":            true,
	"opponent":        true,
	"line":            true,
	"channel_id":      true,
	"message_id":      true,
	"bet_details":     true,
	"scheduled_start": true,
	"expires_at":      true,
}

// BetRepository implements bet data access
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

func scanBet(row pgx.Row) (*models.Bet, error) {
	var bet models.Bet
	err := row.Scan(
		&bet.BetSerial,
		&bet.GuildID,
		&bet.UserID,
		&bet.League,
		&bet.BetType,
		&bet.Units,
		&bet.Odds,
		&bet.Team,
		&bet.Opponent,
		&bet.Line,
		&bet.GameID,
		&bet.Legs,
		&bet.ChannelID,
		&bet.MessageID,
		&bet.Confirmed,
		&bet.Status,
		&bet.ResultValue,
		&bet.Details,
		&bet.ScheduledStart,
		&bet.ExpiresAt,
		&bet.CreatedAt,
		&bet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// Create inserts a new bet and assigns its serial
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (
			guild_id, user_id, league, bet_type, units, odds,
			team, opponent, line, game_id, legs, channel_id,
			status, bet_details, scheduled_start, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING bet_serial, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		bet.GuildID,
		bet.UserID,
		bet.League,
		bet.BetType,
		bet.Units,
		bet.Odds,
		bet.Team,
		bet.Opponent,
		bet.Line,
		bet.GameID,
		bet.Legs,
		bet.ChannelID,
		bet.Status,
		bet.Details,
		bet.ScheduledStart,
		bet.ExpiresAt,
	).Scan(&bet.BetSerial, &bet.CreatedAt, &bet.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}

	return nil
}

// GetBySerial retrieves a bet by its serial
func (r *BetRepository) GetBySerial(ctx context.Context, betSerial int64) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE bet_serial = $1`

	bet, err := scanBet(r.q.QueryRow(ctx, query, betSerial))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %d: %w", betSerial, err)
	}
	return bet, nil
}

// GetByMessage retrieves the bet whose slip is the given message
func (r *BetRepository) GetByMessage(ctx context.Context, guildID, messageID int64) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE guild_id = $1 AND message_id = $2`

	bet, err := scanBet(r.q.QueryRow(ctx, query, guildID, messageID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet for message %d: %w", messageID, err)
	}
	return bet, nil
}

// Confirm marks an unconfirmed bet confirmed, recording its slip identity.
// The conditional WHERE keeps the operation idempotent: an already-confirmed
// bet affects zero rows and the caller decides whether that is a retry or a
// conflict.
func (r *BetRepository) Confirm(ctx context.Context, betSerial, messageID, channelID int64) (int64, error) {
	query := `
		UPDATE bets
		SET confirmed = TRUE, message_id = $2, channel_id = $3, updated_at = NOW()
		WHERE bet_serial = $1 AND confirmed = FALSE
	`

	result, err := r.q.Exec(ctx, query, betSerial, messageID, channelID)
	if err != nil {
		return 0, fmt.Errorf("failed to confirm bet %d: %w", betSerial, err)
	}
	return result.RowsAffected(), nil
}

// Resolve transitions a bet out of pending. The status check is part of the
// same atomic statement so concurrent resolutions race in the store, not in
// the engine: only the first writer affects a row.
func (r *BetRepository) Resolve(ctx context.Context, betSerial int64, status models.BetStatus, resultValue float64) (int64, error) {
	query := `
		UPDATE bets
		SET status = $2, result_value = $3, updated_at = NOW()
		WHERE bet_serial = $1 AND status = 'pending'
	`

	result, err := r.q.Exec(ctx, query, betSerial, status, resultValue)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve bet %d: %w", betSerial, err)
	}
	return result.RowsAffected(), nil
}

// Update applies a partial update of whitelisted columns
func (r *BetRepository) Update(ctx context.Context, betSerial int64, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, fmt.Errorf("no fields to update")
	}

	// Deterministic order keeps the generated SQL stable
	columns := make([]string, 0, len(fields))
	for column := range fields {
		if !updatableBetColumns[column] {
			return 0, fmt.Errorf("column %q is not updatable", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	query := `UPDATE bets SET updated_at = NOW()`
	args := []any{betSerial}
	for _, column := range columns {
		args = append(args, fields[column])
		query += fmt.Sprintf(", %s = $%d", column, len(args))
	}
	query += ` WHERE bet_serial = $1`

	result, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update bet %d: %w", betSerial, err)
	}
	return result.RowsAffected(), nil
}

// Delete removes a bet. Reaction rows cascade via their foreign key; unit
// records have no foreign key and are never touched.
func (r *BetRepository) Delete(ctx context.Context, betSerial int64) error {
	_, err := r.q.Exec(ctx, `DELETE FROM bets WHERE bet_serial = $1`, betSerial)
	if err != nil {
		return fmt.Errorf("failed to delete bet %d: %w", betSerial, err)
	}
	return nil
}

// ListPendingByUser returns a user's pending bets in a guild
func (r *BetRepository) ListPendingByUser(ctx context.Context, guildID, userID int64, limit int) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE guild_id = $1 AND user_id = $2 AND status = 'pending' AND confirmed = TRUE
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, guildID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bets for user %d: %w", userID, err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}

	return bets, nil
}

// DeleteExpiredPending removes pending bets past their expiry window: the
// explicit expiration timestamp when one exists, otherwise created_at plus
// the ttl. Non-pending bets are never touched.
func (r *BetRepository) DeleteExpiredPending(ctx context.Context, ttl time.Duration) (int64, error) {
	query := `
		DELETE FROM bets
		WHERE status = 'pending'
		  AND (
			(expires_at IS NOT NULL AND expires_at < NOW())
			OR (expires_at IS NULL AND created_at < NOW() - $1::interval)
		  )
	`

	result, err := r.q.Exec(ctx, query, ttl)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired pending bets: %w", err)
	}
	return result.RowsAffected(), nil
}

// DeleteUnconfirmed removes abandoned slips that never got posted
func (r *BetRepository) DeleteUnconfirmed(ctx context.Context, grace time.Duration) (int64, error) {
	query := `
		DELETE FROM bets
		WHERE confirmed = FALSE AND created_at < NOW() - $1::interval
	`

	result, err := r.q.Exec(ctx, query, grace)
	if err != nil {
		return 0, fmt.Errorf("failed to delete unconfirmed bets: %w", err)
	}
	return result.RowsAffected(), nil
}
