package service

import (
	"context"
	"fmt"

	"betbot/models"
)

// statsService implements the StatsService interface. The ledger read path
// is pure aggregation over unit_records and capper_records.
type statsService struct {
	uowFactory UnitOfWorkFactory
}

// NewStatsService creates a new stats service
func NewStatsService(uowFactory UnitOfWorkFactory) StatsService {
	return &statsService{
		uowFactory: uowFactory,
	}
}

// MonthlyLeaderboard returns the guild's net-unit standings for a period
func (s *statsService) MonthlyLeaderboard(ctx context.Context, guildID int64, year, month, limit int) ([]*models.LeaderboardEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.UnitRecordRepository().GetMonthlyLeaderboard(ctx, guildID, year, month, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard for guild %d: %w", guildID, err)
	}

	for i, entry := range entries {
		entry.Rank = i + 1
	}
	return entries, nil
}

// CapperRecord returns a user's win/loss/push record in a guild
func (s *statsService) CapperRecord(ctx context.Context, guildID, userID int64) (*models.CapperRecord, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	record, err := uow.CapperRecordRepository().Get(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get capper record for user %d: %w", userID, err)
	}
	return record, nil
}

// GuildNetUnits returns the guild's all-time net units
func (s *statsService) GuildNetUnits(ctx context.Context, guildID int64) (float64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	total, err := uow.UnitRecordRepository().GetGuildNetUnits(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to get net units for guild %d: %w", guildID, err)
	}
	return total, nil
}
