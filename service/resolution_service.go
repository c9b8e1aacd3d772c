package service

import (
	"context"
	"fmt"

	"betbot/events"
	"betbot/models"

	log "github.com/sirupsen/logrus"
)

type resolutionService struct {
	uowFactory UnitOfWorkFactory
	markers    map[string]models.BetStatus
}

// NewResolutionService creates the reaction-driven settlement service.
// markers maps resolution emojis to the outcome they settle.
func NewResolutionService(uowFactory UnitOfWorkFactory, markers map[string]models.BetStatus) ResolutionService {
	return &resolutionService{
		uowFactory: uowFactory,
		markers:    markers,
	}
}

// HandleReactionAdd processes one reaction-add delivery. Reaction events
// have no response channel, so every ignored condition is a logged no-op
// rather than an error back to the user.
func (s *resolutionService) HandleReactionAdd(ctx context.Context, event ReactionEvent) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Not every reaction is bet-related
	bet, err := uow.BetRepository().GetByMessage(ctx, event.GuildID, event.MessageID)
	if err != nil {
		return fmt.Errorf("failed to look up bet for message %d: %w", event.MessageID, err)
	}
	if bet == nil {
		return nil
	}

	// Audit trail, independent of whether the emoji resolves anything.
	// Duplicate tuples are ignored, not errors.
	_, err = uow.BetReactionRepository().RecordIfAbsent(ctx, &models.BetReaction{
		BetSerial: bet.BetSerial,
		GuildID:   event.GuildID,
		UserID:    event.UserID,
		Emoji:     event.Emoji,
		ChannelID: event.ChannelID,
		MessageID: event.MessageID,
	})
	if err != nil {
		return fmt.Errorf("failed to record reaction on bet %d: %w", bet.BetSerial, err)
	}

	target, isMarker := s.markers[event.Emoji]
	if !isMarker || bet.IsTerminal() {
		// Plain reaction, or a marker landing on an already-settled bet:
		// keep the audit row, change nothing else.
		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit reaction audit: %w", err)
		}
		return nil
	}

	if !bet.CanBeResolvedBy(event.UserID, event.Privileged) {
		log.WithFields(log.Fields{
			"betSerial": bet.BetSerial,
			"userID":    event.UserID,
			"emoji":     event.Emoji,
		}).Info("Ignoring resolution reaction from unauthorized user")
		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit reaction audit: %w", err)
		}
		return nil
	}

	resultValue := ResultValue(target, bet.Units, bet.Odds)

	// Conditional transition: only the first concurrent resolver observes an
	// affected row, the store serializes the race.
	affected, err := uow.BetRepository().Resolve(ctx, bet.BetSerial, target, resultValue)
	if err != nil {
		return fmt.Errorf("failed to resolve bet %d: %w", bet.BetSerial, err)
	}
	if affected == 0 {
		log.WithFields(log.Fields{
			"betSerial": bet.BetSerial,
			"target":    target,
		}).Info("Bet already settled by a concurrent resolution")
		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit reaction audit: %w", err)
		}
		return nil
	}

	year, month := bet.SettlementPeriod()
	if err := uow.UnitRecordRepository().Upsert(ctx, &models.UnitRecord{
		BetSerial:          bet.BetSerial,
		GuildID:            bet.GuildID,
		UserID:             bet.UserID,
		Year:               year,
		Month:              month,
		Units:              bet.Units,
		Odds:               bet.Odds,
		MonthlyResultValue: resultValue,
		TotalResultValue:   resultValue,
	}); err != nil {
		return fmt.Errorf("failed to upsert unit record for bet %d: %w", bet.BetSerial, err)
	}

	previous, err := uow.CapperRecordRepository().Get(ctx, bet.GuildID, bet.UserID)
	if err != nil {
		return fmt.Errorf("failed to get capper record: %w", err)
	}
	record, err := uow.CapperRecordRepository().Refresh(ctx, bet.GuildID, bet.UserID)
	if err != nil {
		return fmt.Errorf("failed to refresh capper record: %w", err)
	}

	uow.EventBus().Publish(events.BetResolvedEvent{
		BetSerial:   bet.BetSerial,
		GuildID:     bet.GuildID,
		UserID:      bet.UserID,
		Status:      target,
		ResultValue: resultValue,
	})
	uow.EventBus().Publish(events.UnitTotalsChangedEvent{GuildID: bet.GuildID})

	previousWins := 0
	if previous != nil {
		previousWins = previous.Wins
	}
	if milestone := models.MilestoneCrossed(previousWins, record.Wins); milestone > 0 {
		uow.EventBus().Publish(events.AchievementEarnedEvent{
			GuildID:   bet.GuildID,
			UserID:    bet.UserID,
			Milestone: milestone,
			Wins:      record.Wins,
		})
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit resolution of bet %d: %w", bet.BetSerial, err)
	}

	log.WithFields(log.Fields{
		"betSerial":   bet.BetSerial,
		"guildID":     bet.GuildID,
		"userID":      bet.UserID,
		"status":      target,
		"resultValue": resultValue,
	}).Info("Bet resolved")

	return nil
}

// HandleReactionRemove deletes the matching audit row. Resolution, once
// committed, is final: removing the reaction never changes bet status.
func (s *resolutionService) HandleReactionRemove(ctx context.Context, event ReactionEvent) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByMessage(ctx, event.GuildID, event.MessageID)
	if err != nil {
		return fmt.Errorf("failed to look up bet for message %d: %w", event.MessageID, err)
	}
	if bet == nil {
		return nil
	}

	if err := uow.BetReactionRepository().Delete(ctx, bet.BetSerial, event.UserID, event.Emoji, event.MessageID); err != nil {
		return fmt.Errorf("failed to delete reaction on bet %d: %w", bet.BetSerial, err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit reaction removal: %w", err)
	}

	return nil
}
