package service

import (
	"context"
	"fmt"

	"betbot/events"
	"betbot/models"

	log "github.com/sirupsen/logrus"
)

type betService struct {
	uowFactory UnitOfWorkFactory
	gameSource GameSource
}

// NewBetService creates a new bet service
func NewBetService(uowFactory UnitOfWorkFactory, gameSource GameSource) BetService {
	return &betService{
		uowFactory: uowFactory,
		gameSource: gameSource,
	}
}

// CreateStraightBet validates and persists a single-selection bet
func (s *betService) CreateStraightBet(ctx context.Context, input StraightBetInput) (*models.Bet, error) {
	if input.Units <= 0 {
		return nil, ErrInvalidStake
	}
	if input.Odds == 0 {
		return nil, ErrInvalidOdds
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet := &models.Bet{
		GuildID:   input.GuildID,
		UserID:    input.UserID,
		League:    input.League,
		BetType:   models.BetTypeStraight,
		Units:     input.Units,
		Odds:      input.Odds,
		Team:      input.Team,
		Opponent:  input.Opponent,
		Line:      input.Line,
		Legs:      1,
		ChannelID: &input.ChannelID,
		Status:    models.BetStatusPending,
		Details: models.BetDetails{
			Legs: []models.BetLeg{{
				Odds:        input.Odds,
				Team:        input.Team,
				Opponent:    input.Opponent,
				Line:        input.Line,
				League:      input.League,
				ExternalRef: input.ExternalRef,
			}},
		},
	}

	// A non-manual reference must resolve to a sourced game; the internal
	// row is materialized lazily, keyed by the external reference.
	if input.ExternalRef != "" && input.ExternalRef != models.ManualGameRef {
		game, err := s.materializeGame(ctx, uow, input.ExternalRef)
		if err != nil {
			return nil, err
		}
		bet.GameID = &game.ID
		bet.ScheduledStart = game.StartTime
	}

	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	uow.EventBus().Publish(events.BetPlacedEvent{
		BetSerial: bet.BetSerial,
		GuildID:   bet.GuildID,
		UserID:    bet.UserID,
		BetType:   bet.BetType,
		Units:     bet.Units,
		Odds:      bet.Odds,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bet, nil
}

// CreateParlayBet validates every leg, combines the odds and persists a
// parlay bet. If any leg fails validation nothing is written.
func (s *betService) CreateParlayBet(ctx context.Context, input ParlayBetInput) (*models.Bet, error) {
	if input.Units <= 0 {
		return nil, ErrInvalidStake
	}
	if len(input.Legs) == 0 {
		return nil, ErrNoLegs
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Every sourced leg must resolve before anything is inserted
	legOdds := make([]float64, 0, len(input.Legs))
	for i, leg := range input.Legs {
		if leg.ExternalRef != "" && leg.ExternalRef != models.ManualGameRef {
			if _, err := s.materializeGame(ctx, uow, leg.ExternalRef); err != nil {
				return nil, fmt.Errorf("leg %d: %w", i+1, err)
			}
		}
		legOdds = append(legOdds, leg.Odds)
	}

	combined := CombineParlayOdds(legOdds)
	if combined == 0 {
		log.WithFields(log.Fields{
			"guildID": input.GuildID,
			"userID":  input.UserID,
			"legs":    len(input.Legs),
		}).Warn("Parlay odds combination is degenerate, storing odds of 0")
	}

	bet := &models.Bet{
		GuildID:        input.GuildID,
		UserID:         input.UserID,
		League:         input.League,
		BetType:        models.BetTypeParlay,
		Units:          input.Units,
		Odds:           combined,
		Legs:           len(input.Legs),
		ChannelID:      &input.ChannelID,
		Status:         models.BetStatusPending,
		ScheduledStart: input.ScheduledStart,
		ExpiresAt:      input.ExpiresAt,
		Details: models.BetDetails{
			Legs:         input.Legs,
			CombinedOdds: combined,
		},
	}

	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create parlay: %w", err)
	}

	uow.EventBus().Publish(events.BetPlacedEvent{
		BetSerial: bet.BetSerial,
		GuildID:   bet.GuildID,
		UserID:    bet.UserID,
		BetType:   bet.BetType,
		Units:     bet.Units,
		Odds:      bet.Odds,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bet, nil
}

// materializeGame resolves an external reference against the game source and
// get-or-creates the internal game row for it.
func (s *betService) materializeGame(ctx context.Context, uow UnitOfWork, externalRef string) (*models.Game, error) {
	if existing, err := uow.GameRepository().GetByExternalRef(ctx, externalRef); err != nil {
		return nil, fmt.Errorf("failed to look up game %s: %w", externalRef, err)
	} else if existing != nil {
		return existing, nil
	}

	data, err := s.gameSource.GetGameByExternalRef(ctx, externalRef)
	if err != nil {
		return nil, fmt.Errorf("game source lookup failed for %s: %w", externalRef, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, externalRef)
	}

	game := &models.Game{
		ExternalRef: data.ExternalRef,
		League:      data.League,
		HomeTeam:    data.HomeTeam,
		AwayTeam:    data.AwayTeam,
		StartTime:   data.StartTime,
	}
	if err := uow.GameRepository().GetOrCreate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to materialize game %s: %w", externalRef, err)
	}
	return game, nil
}

// ConfirmBet marks a bet's slip as posted. Retrying with the same message
// identity succeeds; a different identity is a conflict.
func (s *betService) ConfirmBet(ctx context.Context, betSerial, messageID, channelID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	affected, err := uow.BetRepository().Confirm(ctx, betSerial, messageID, channelID)
	if err != nil {
		return fmt.Errorf("failed to confirm bet %d: %w", betSerial, err)
	}

	if affected == 0 {
		bet, err := uow.BetRepository().GetBySerial(ctx, betSerial)
		if err != nil {
			return fmt.Errorf("failed to get bet %d: %w", betSerial, err)
		}
		if bet == nil {
			return ErrBetNotFound
		}
		// Already confirmed: an identical retry is fine, anything else is a
		// conflicting confirmation.
		if bet.MessageID != nil && *bet.MessageID == messageID &&
			bet.ChannelID != nil && *bet.ChannelID == channelID {
			return nil
		}
		return ErrConfirmConflict
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateBet applies a partial update to a bet
func (s *betService) UpdateBet(ctx context.Context, betSerial int64, fields map[string]any) error {
	if len(fields) == 0 {
		return ErrEmptyUpdate
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	affected, err := uow.BetRepository().Update(ctx, betSerial, fields)
	if err != nil {
		return fmt.Errorf("failed to update bet %d: %w", betSerial, err)
	}
	if affected == 0 {
		return ErrBetNotFound
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteBet removes a bet. Reactions cascade in storage; ledger rows for
// already-settled bets are never touched. Deleting a missing bet succeeds.
func (s *betService) DeleteBet(ctx context.Context, betSerial int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.BetRepository().Delete(ctx, betSerial); err != nil {
		return fmt.Errorf("failed to delete bet %d: %w", betSerial, err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBet retrieves a bet by serial
func (s *betService) GetBet(ctx context.Context, betSerial int64) (*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetBySerial(ctx, betSerial)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %d: %w", betSerial, err)
	}
	return bet, nil
}

// ListPendingBets returns a user's open bets in a guild
func (s *betService) ListPendingBets(ctx context.Context, guildID, userID int64, limit int) ([]*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().ListPendingByUser(ctx, guildID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bets: %w", err)
	}
	return bets, nil
}
