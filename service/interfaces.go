package service

import (
	"context"
	"time"

	"betbot/events"
	"betbot/models"
)

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// Create inserts a new bet and assigns its serial
	Create(ctx context.Context, bet *models.Bet) error

	// GetBySerial retrieves a bet by its serial
	GetBySerial(ctx context.Context, betSerial int64) (*models.Bet, error)

	// GetByMessage retrieves the bet whose slip is the given message
	GetByMessage(ctx context.Context, guildID, messageID int64) (*models.Bet, error)

	// Confirm marks an unconfirmed bet confirmed and records its slip
	// identity; returns the number of rows affected
	Confirm(ctx context.Context, betSerial, messageID, channelID int64) (int64, error)

	// Resolve transitions a bet out of pending with a conditional update;
	// returns the number of rows affected (0 means the bet was not pending)
	Resolve(ctx context.Context, betSerial int64, status models.BetStatus, resultValue float64) (int64, error)

	// Update applies a partial update of whitelisted columns; returns the
	// number of rows affected
	Update(ctx context.Context, betSerial int64, fields map[string]any) (int64, error)

	// Delete removes a bet; deleting a missing bet is not an error
	Delete(ctx context.Context, betSerial int64) error

	// ListPendingByUser returns a user's pending bets in a guild
	ListPendingByUser(ctx context.Context, guildID, userID int64, limit int) ([]*models.Bet, error)

	// DeleteExpiredPending removes pending bets past their expiry window
	DeleteExpiredPending(ctx context.Context, ttl time.Duration) (int64, error)

	// DeleteUnconfirmed removes unconfirmed bets older than the grace window
	DeleteUnconfirmed(ctx context.Context, grace time.Duration) (int64, error)
}

// BetReactionRepository defines the interface for reaction audit data access
type BetReactionRepository interface {
	// RecordIfAbsent inserts a reaction unless the same tuple already
	// exists; reports whether a row was inserted
	RecordIfAbsent(ctx context.Context, reaction *models.BetReaction) (bool, error)

	// Delete removes the reaction matching the tuple, if present
	Delete(ctx context.Context, betSerial, userID int64, emoji string, messageID int64) error

	// GetByBet returns all recorded reactions for a bet
	GetByBet(ctx context.Context, betSerial int64) ([]*models.BetReaction, error)
}

// UnitRecordRepository defines the interface for the settled-bet ledger
type UnitRecordRepository interface {
	// Upsert writes the ledger row for a bet, keyed by bet_serial
	Upsert(ctx context.Context, record *models.UnitRecord) error

	// GetByBetSerial retrieves the ledger row for a bet
	GetByBetSerial(ctx context.Context, betSerial int64) (*models.UnitRecord, error)

	// GetMonthlyLeaderboard returns per-user net units for a guild period
	GetMonthlyLeaderboard(ctx context.Context, guildID int64, year, month, limit int) ([]*models.LeaderboardEntry, error)

	// GetGuildNetUnits returns the guild's all-time net units
	GetGuildNetUnits(ctx context.Context, guildID int64) (float64, error)
}

// CapperRecordRepository defines the interface for the capper read model
type CapperRecordRepository interface {
	// Refresh recomputes a user's counters by re-aggregating bet statuses
	// and upserts the result
	Refresh(ctx context.Context, guildID, userID int64) (*models.CapperRecord, error)

	// Get retrieves a user's record in a guild
	Get(ctx context.Context, guildID, userID int64) (*models.CapperRecord, error)
}

// GameRepository defines the interface for internal game rows
type GameRepository interface {
	// GetByExternalRef retrieves a game by its external reference
	GetByExternalRef(ctx context.Context, externalRef string) (*models.Game, error)

	// GetOrCreate materializes a game row for the external reference if one
	// does not already exist, returning the existing row otherwise
	GetOrCreate(ctx context.Context, game *models.Game) error
}

// GameSource is the external provider of game data, queried only by the
// get-or-create step of bet creation. A nil result with nil error means the
// reference is unknown to the source.
type GameSource interface {
	GetGameByExternalRef(ctx context.Context, externalRef string) (*models.GameData, error)
}

// ReactionEvent carries one reaction-add or reaction-remove delivery from
// the event source.
type ReactionEvent struct {
	GuildID    int64
	ChannelID  int64
	MessageID  int64
	UserID     int64
	Emoji      string
	Privileged bool
}

// StraightBetInput carries the caller's inputs for a straight bet
type StraightBetInput struct {
	GuildID     int64
	UserID      int64
	League      string
	Units       float64
	Odds        float64
	Team        string
	Opponent    string
	Line        string
	ExternalRef string
	ChannelID   int64
}

// ParlayBetInput carries the caller's inputs for a parlay bet
type ParlayBetInput struct {
	GuildID        int64
	UserID         int64
	League         string
	Units          float64
	Legs           []models.BetLeg
	ChannelID      int64
	ScheduledStart *time.Time
	ExpiresAt      *time.Time
}

// BetService defines the interface for bet creation and maintenance
type BetService interface {
	// CreateStraightBet validates and persists a single-selection bet
	CreateStraightBet(ctx context.Context, input StraightBetInput) (*models.Bet, error)

	// CreateParlayBet validates every leg, combines the odds and persists a
	// parlay bet; no partial parlay is ever written
	CreateParlayBet(ctx context.Context, input ParlayBetInput) (*models.Bet, error)

	// ConfirmBet marks a bet's slip as posted; idempotent for retries with
	// the same message identity
	ConfirmBet(ctx context.Context, betSerial, messageID, channelID int64) error

	// UpdateBet applies a partial update to a bet
	UpdateBet(ctx context.Context, betSerial int64, fields map[string]any) error

	// DeleteBet removes a bet; succeeds as a no-op if already gone
	DeleteBet(ctx context.Context, betSerial int64) error

	// GetBet retrieves a bet by serial
	GetBet(ctx context.Context, betSerial int64) (*models.Bet, error)

	// ListPendingBets returns a user's open bets in a guild
	ListPendingBets(ctx context.Context, guildID, userID int64, limit int) ([]*models.Bet, error)
}

// ResolutionService defines the reaction-driven settlement state machine
type ResolutionService interface {
	// HandleReactionAdd processes a reaction-add delivery: audits the
	// reaction and, for resolution markers from an authorized user on a
	// pending bet, settles the bet and updates the ledger
	HandleReactionAdd(ctx context.Context, event ReactionEvent) error

	// HandleReactionRemove deletes the matching audit row; it never
	// unresolves a bet
	HandleReactionRemove(ctx context.Context, event ReactionEvent) error
}

// CleanupService defines the periodic expiry sweep
type CleanupService interface {
	// SweepOnce deletes expired pending bets and abandoned unconfirmed
	// slips, returning the removed counts
	SweepOnce(ctx context.Context) (expired int64, unconfirmed int64, err error)
}

// StatsService defines the ledger read path
type StatsService interface {
	// MonthlyLeaderboard returns the guild's net-unit standings for a period
	MonthlyLeaderboard(ctx context.Context, guildID int64, year, month, limit int) ([]*models.LeaderboardEntry, error)

	// CapperRecord returns a user's win/loss/push record in a guild
	CapperRecord(ctx context.Context, guildID, userID int64) (*models.CapperRecord, error)

	// GuildNetUnits returns the guild's all-time net units
	GuildNetUnits(ctx context.Context, guildID int64) (float64, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	BetRepository() BetRepository
	BetReactionRepository() BetReactionRepository
	UnitRecordRepository() UnitRecordRepository
	CapperRecordRepository() CapperRecordRepository
	GameRepository() GameRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
