package repository

import (
	"context"
	"fmt"

	"betbot/database"
	"betbot/models"

	"github.com/jackc/pgx/v5"
)

// UnitRecordRepository implements the settled-bet ledger data access
type UnitRecordRepository struct {
	q queryable
}

// NewUnitRecordRepository creates a new unit record repository
func NewUnitRecordRepository(db *database.DB) *UnitRecordRepository {
	return &UnitRecordRepository{q: db.Pool}
}

// newUnitRecordRepositoryWithTx creates a new unit record repository with a transaction
func newUnitRecordRepositoryWithTx(tx queryable) *UnitRecordRepository {
	return &UnitRecordRepository{q: tx}
}

// Upsert writes the ledger row for a bet. The conflict target is bet_serial,
// so a second write for the same bet overwrites rather than duplicates; the
// state machine never expects it to fire twice.
func (r *UnitRecordRepository) Upsert(ctx context.Context, record *models.UnitRecord) error {
	query := `
		INSERT INTO unit_records (
			bet_serial, guild_id, user_id, year, month,
			units, odds, monthly_result_value, total_result_value
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (bet_serial) DO UPDATE SET
			year = EXCLUDED.year,
			month = EXCLUDED.month,
			units = EXCLUDED.units,
			odds = EXCLUDED.odds,
			monthly_result_value = EXCLUDED.monthly_result_value,
			total_result_value = EXCLUDED.total_result_value
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		record.BetSerial,
		record.GuildID,
		record.UserID,
		record.Year,
		record.Month,
		record.Units,
		record.Odds,
		record.MonthlyResultValue,
		record.TotalResultValue,
	).Scan(&record.ID, &record.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert unit record for bet %d: %w", record.BetSerial, err)
	}

	return nil
}

// GetByBetSerial retrieves the ledger row for a bet
func (r *UnitRecordRepository) GetByBetSerial(ctx context.Context, betSerial int64) (*models.UnitRecord, error) {
	query := `
		SELECT id, bet_serial, guild_id, user_id, year, month,
		       units, odds, monthly_result_value, total_result_value, created_at
		FROM unit_records
		WHERE bet_serial = $1
	`

	var record models.UnitRecord
	err := r.q.QueryRow(ctx, query, betSerial).Scan(
		&record.ID,
		&record.BetSerial,
		&record.GuildID,
		&record.UserID,
		&record.Year,
		&record.Month,
		&record.Units,
		&record.Odds,
		&record.MonthlyResultValue,
		&record.TotalResultValue,
		&record.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit record for bet %d: %w", betSerial, err)
	}

	return &record, nil
}

// GetMonthlyLeaderboard returns per-user net units for a guild period,
// best first
func (r *UnitRecordRepository) GetMonthlyLeaderboard(ctx context.Context, guildID int64, year, month, limit int) ([]*models.LeaderboardEntry, error) {
	query := `
		SELECT user_id, COUNT(*) AS bet_count,
		       SUM(monthly_result_value) AS net_units,
		       SUM(units) AS units_risked
		FROM unit_records
		WHERE guild_id = $1 AND year = $2 AND month = $3
		GROUP BY user_id
		ORDER BY net_units DESC
		LIMIT $4
	`

	rows, err := r.q.Query(ctx, query, guildID, year, month, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		entry := models.LeaderboardEntry{GuildID: guildID}
		if err := rows.Scan(&entry.UserID, &entry.BetCount, &entry.NetUnits, &entry.UnitsRisk); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard entries: %w", err)
	}

	return entries, nil
}

// GetGuildNetUnits returns the guild's all-time net units
func (r *UnitRecordRepository) GetGuildNetUnits(ctx context.Context, guildID int64) (float64, error) {
	query := `
		SELECT COALESCE(SUM(total_result_value), 0)
		FROM unit_records
		WHERE guild_id = $1
	`

	var total float64
	if err := r.q.QueryRow(ctx, query, guildID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to get net units for guild %d: %w", guildID, err)
	}
	return total, nil
}
