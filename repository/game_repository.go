package repository

import (
	"context"
	"fmt"

	"betbot/database"
	"betbot/models"

	"github.com/jackc/pgx/v5"
)

// GameRepository implements internal game row data access
type GameRepository struct {
	q queryable
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{q: db.Pool}
}

// newGameRepositoryWithTx creates a new game repository with a transaction
func newGameRepositoryWithTx(tx queryable) *GameRepository {
	return &GameRepository{q: tx}
}

// GetByExternalRef retrieves a game by its external reference
func (r *GameRepository) GetByExternalRef(ctx context.Context, externalRef string) (*models.Game, error) {
	query := `
		SELECT id, external_ref, league, home_team, away_team, start_time, created_at
		FROM games
		WHERE external_ref = $1
	`

	var game models.Game
	err := r.q.QueryRow(ctx, query, externalRef).Scan(
		&game.ID,
		&game.ExternalRef,
		&game.League,
		&game.HomeTeam,
		&game.AwayTeam,
		&game.StartTime,
		&game.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", externalRef, err)
	}

	return &game, nil
}

// GetOrCreate materializes a game row, keyed by external reference. Two
// concurrent creations for the same reference converge on one row; the
// no-op DO UPDATE lets RETURNING yield the winner either way.
func (r *GameRepository) GetOrCreate(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (external_ref, league, home_team, away_team, start_time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_ref) DO UPDATE SET external_ref = EXCLUDED.external_ref
		RETURNING id, external_ref, league, home_team, away_team, start_time, created_at
	`

	err := r.q.QueryRow(ctx, query,
		game.ExternalRef,
		game.League,
		game.HomeTeam,
		game.AwayTeam,
		game.StartTime,
	).Scan(
		&game.ID,
		&game.ExternalRef,
		&game.League,
		&game.HomeTeam,
		&game.AwayTeam,
		&game.StartTime,
		&game.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to get or create game %s: %w", game.ExternalRef, err)
	}

	return nil
}
