package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"betbot/events"
	"betbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestBetService_CreateStraightBet_Manual(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)
	mockGameRepo := new(MockGameRepository)
	mockPublisher := new(MockEventPublisher)
	mockSource := new(MockGameSource)

	mockUoW.SetRepositories(mockBetRepo, nil, nil, nil, mockGameRepo, mockPublisher)

	svc := NewBetService(mockFactory, mockSource)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("Create", ctx, mock.MatchedBy(func(b *models.Bet) bool {
		return b.BetType == models.BetTypeStraight &&
			b.GuildID == 100 &&
			b.UserID == 200 &&
			b.Units == 2 &&
			b.Odds == -110 &&
			b.Legs == 1 &&
			b.Status == models.BetStatusPending &&
			b.GameID == nil
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Bet).BetSerial = 7
	})

	mockPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		placed, ok := e.(events.BetPlacedEvent)
		return ok && placed.BetSerial == 7 && placed.BetType == models.BetTypeStraight
	})).Return()

	bet, err := svc.CreateStraightBet(ctx, StraightBetInput{
		GuildID:     100,
		UserID:      200,
		League:      "NBA",
		Units:       2,
		Odds:        -110,
		Team:        "Celtics",
		Opponent:    "Lakers",
		Line:        "-3.5",
		ExternalRef: models.ManualGameRef,
		ChannelID:   300,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(7), bet.BetSerial)
	assert.Nil(t, bet.GameID)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
	mockGameRepo.AssertNotCalled(t, "GetByExternalRef")
	mockSource.AssertNotCalled(t, "GetGameByExternalRef")
}

func TestBetService_CreateStraightBet_InvalidInputs(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	mockSource := new(MockGameSource)
	svc := NewBetService(mockFactory, mockSource)

	_, err := svc.CreateStraightBet(ctx, StraightBetInput{Units: 0, Odds: -110})
	assert.ErrorIs(t, err, ErrInvalidStake)

	_, err = svc.CreateStraightBet(ctx, StraightBetInput{Units: -1, Odds: -110})
	assert.ErrorIs(t, err, ErrInvalidStake)

	_, err = svc.CreateStraightBet(ctx, StraightBetInput{Units: 1, Odds: 0})
	assert.ErrorIs(t, err, ErrInvalidOdds)

	// Validation fails before any transaction starts
	mockFactory.AssertNotCalled(t, "Create")
}

func TestBetService_CreateStraightBet_SourcedGame(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)
	mockGameRepo := new(MockGameRepository)
	mockPublisher := new(MockEventPublisher)
	mockSource := new(MockGameSource)

	mockUoW.SetRepositories(mockBetRepo, nil, nil, nil, mockGameRepo, mockPublisher)

	svc := NewBetService(mockFactory, mockSource)

	start := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// Unknown locally, known to the source
	mockGameRepo.On("GetByExternalRef", ctx, "nba-2026-03-14-bos-lal").Return(nil, nil)
	mockSource.On("GetGameByExternalRef", ctx, "nba-2026-03-14-bos-lal").Return(&models.GameData{
		ExternalRef: "nba-2026-03-14-bos-lal",
		League:      "NBA",
		HomeTeam:    "Celtics",
		AwayTeam:    "Lakers",
		StartTime:   &start,
	}, nil)
	mockGameRepo.On("GetOrCreate", ctx, mock.MatchedBy(func(g *models.Game) bool {
		return g.ExternalRef == "nba-2026-03-14-bos-lal"
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Game).ID = 42
	})

	mockBetRepo.On("Create", ctx, mock.MatchedBy(func(b *models.Bet) bool {
		return b.GameID != nil && *b.GameID == 42 &&
			b.ScheduledStart != nil && b.ScheduledStart.Equal(start)
	})).Return(nil)
	mockPublisher.On("Publish", mock.AnythingOfType("events.BetPlacedEvent")).Return()

	bet, err := svc.CreateStraightBet(ctx, StraightBetInput{
		GuildID:     100,
		UserID:      200,
		League:      "NBA",
		Units:       1,
		Odds:        150,
		Team:        "Celtics",
		ExternalRef: "nba-2026-03-14-bos-lal",
		ChannelID:   300,
	})

	assert.NoError(t, err)
	assert.NotNil(t, bet.GameID)

	mockUoW.AssertExpectations(t)
	mockGameRepo.AssertExpectations(t)
	mockSource.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
}

func TestBetService_CreateStraightBet_GameNotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)
	mockGameRepo := new(MockGameRepository)
	mockSource := new(MockGameSource)

	mockUoW.SetRepositories(mockBetRepo, nil, nil, nil, mockGameRepo, nil)

	svc := NewBetService(mockFactory, mockSource)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetByExternalRef", ctx, "bogus-ref").Return(nil, nil)
	mockSource.On("GetGameByExternalRef", ctx, "bogus-ref").Return(nil, nil)

	_, err := svc.CreateStraightBet(ctx, StraightBetInput{
		GuildID:     100,
		UserID:      200,
		Units:       1,
		Odds:        150,
		Team:        "Celtics",
		ExternalRef: "bogus-ref",
		ChannelID:   300,
	})

	assert.ErrorIs(t, err, ErrGameNotFound)
	mockBetRepo.AssertNotCalled(t, "Create")
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBetService_CreateParlayBet(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)
	mockPublisher := new(MockEventPublisher)
	mockSource := new(MockGameSource)

	mockUoW.SetRepositories(mockBetRepo, nil, nil, nil, nil, mockPublisher)

	svc := NewBetService(mockFactory, mockSource)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// 2.5 * 1.5 = 3.75 -> +275
	mockBetRepo.On("Create", ctx, mock.MatchedBy(func(b *models.Bet) bool {
		return b.BetType == models.BetTypeParlay &&
			b.Legs == 2 &&
			b.Odds == 275 &&
			b.Details.CombinedOdds == 275 &&
			b.Status == models.BetStatusPending
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Bet).BetSerial = 9
	})
	mockPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		placed, ok := e.(events.BetPlacedEvent)
		return ok && placed.BetSerial == 9 && placed.BetType == models.BetTypeParlay
	})).Return()

	bet, err := svc.CreateParlayBet(ctx, ParlayBetInput{
		GuildID:   100,
		UserID:    200,
		League:    "NBA",
		Units:     1,
		ChannelID: 300,
		Legs: []models.BetLeg{
			{Odds: 150, Team: "Celtics"},
			{Odds: -200, Team: "Bucks"},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, 275.0, bet.Odds)

	mockUoW.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestBetService_CreateParlayBet_NoLegs(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	svc := NewBetService(mockFactory, new(MockGameSource))

	_, err := svc.CreateParlayBet(ctx, ParlayBetInput{Units: 1})
	assert.ErrorIs(t, err, ErrNoLegs)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestBetService_CreateParlayBet_LegLookupFailureWritesNothing(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)
	mockGameRepo := new(MockGameRepository)
	mockSource := new(MockGameSource)

	mockUoW.SetRepositories(mockBetRepo, nil, nil, nil, mockGameRepo, nil)

	svc := NewBetService(mockFactory, mockSource)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetByExternalRef", ctx, "unknown-game").Return(nil, nil)
	mockSource.On("GetGameByExternalRef", ctx, "unknown-game").Return(nil, nil)

	_, err := svc.CreateParlayBet(ctx, ParlayBetInput{
		GuildID:   100,
		UserID:    200,
		Units:     1,
		ChannelID: 300,
		Legs: []models.BetLeg{
			{Odds: 150, Team: "Celtics"},
			{Odds: -200, Team: "Bucks", ExternalRef: "unknown-game"},
		},
	})

	assert.ErrorIs(t, err, ErrGameNotFound)
	mockBetRepo.AssertNotCalled(t, "Create")
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBetService_ConfirmBet(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(mockBetRepo, nil, nil, nil, nil, nil)

	svc := NewBetService(mockFactory, new(MockGameSource))

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("Confirm", ctx, int64(7), int64(555), int64(300)).Return(int64(1), nil)

	err := svc.ConfirmBet(ctx, 7, 555, 300)
	assert.NoError(t, err)

	mockUoW.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
}

func TestBetService_ConfirmBet_IdempotentRetry(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(mockBetRepo, nil, nil, nil, nil, nil)

	svc := NewBetService(mockFactory, new(MockGameSource))

	messageID := int64(555)
	channelID := int64(300)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("Confirm", ctx, int64(7), messageID, channelID).Return(int64(0), nil)
	mockBetRepo.On("GetBySerial", ctx, int64(7)).Return(&models.Bet{
		BetSerial: 7,
		Confirmed: true,
		MessageID: &messageID,
		ChannelID: &channelID,
	}, nil)

	// Same message identity: the retry succeeds without writing anything
	err := svc.ConfirmBet(ctx, 7, messageID, channelID)
	assert.NoError(t, err)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBetService_ConfirmBet_Conflict(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(mockBetRepo, nil, nil, nil, nil, nil)

	svc := NewBetService(mockFactory, new(MockGameSource))

	otherMessageID := int64(999)
	channelID := int64(300)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("Confirm", ctx, int64(7), int64(555), channelID).Return(int64(0), nil)
	mockBetRepo.On("GetBySerial", ctx, int64(7)).Return(&models.Bet{
		BetSerial: 7,
		Confirmed: true,
		MessageID: &otherMessageID,
		ChannelID: &channelID,
	}, nil)

	err := svc.ConfirmBet(ctx, 7, 555, channelID)
	assert.ErrorIs(t, err, ErrConfirmConflict)
}

func TestBetService_ConfirmBet_NotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(mockBetRepo, nil, nil, nil, nil, nil)

	svc := NewBetService(mockFactory, new(MockGameSource))

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("Confirm", ctx, int64(404), int64(555), int64(300)).Return(int64(0), nil)
	mockBetRepo.On("GetBySerial", ctx, int64(404)).Return(nil, nil)

	err := svc.ConfirmBet(ctx, 404, 555, 300)
	assert.ErrorIs(t, err, ErrBetNotFound)
}

func TestBetService_UpdateBet(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(mockBetRepo, nil, nil, nil, nil, nil)

	svc := NewBetService(mockFactory, new(MockGameSource))

	// Empty field map is rejected before any transaction
	err := svc.UpdateBet(ctx, 7, map[string]any{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)
	mockFactory.AssertNotCalled(t, "Create")

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	fields := map[string]any{"units": 3.0}
	mockBetRepo.On("Update", ctx, int64(7), fields).Return(int64(1), nil)

	err = svc.UpdateBet(ctx, 7, fields)
	assert.NoError(t, err)
	mockBetRepo.AssertExpectations(t)
}

func TestBetService_UpdateBet_NotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(mockBetRepo, nil, nil, nil, nil, nil)

	svc := NewBetService(mockFactory, new(MockGameSource))

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("Update", ctx, int64(404), mock.Anything).Return(int64(0), nil)

	err := svc.UpdateBet(ctx, 404, map[string]any{"units": 3.0})
	assert.ErrorIs(t, err, ErrBetNotFound)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBetService_DeleteBet_MissingIsNoop(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(mockBetRepo, nil, nil, nil, nil, nil)

	svc := NewBetService(mockFactory, new(MockGameSource))

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("Delete", ctx, int64(404)).Return(nil)

	assert.NoError(t, svc.DeleteBet(ctx, 404))
	mockBetRepo.AssertExpectations(t)
}

func TestBetService_CreateStraightBet_RepoErrorPropagates(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(mockBetRepo, nil, nil, nil, nil, nil)

	svc := NewBetService(mockFactory, new(MockGameSource))

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("Create", ctx, mock.Anything).Return(errors.New("connection reset"))

	_, err := svc.CreateStraightBet(ctx, StraightBetInput{
		GuildID:     100,
		UserID:      200,
		Units:       1,
		Odds:        150,
		Team:        "Celtics",
		ExternalRef: models.ManualGameRef,
		ChannelID:   300,
	})

	assert.Error(t, err)
	mockUoW.AssertNotCalled(t, "Commit")
}
