package service

import (
	"context"
	"testing"
	"time"

	"betbot/events"
	"betbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testMarkers() map[string]models.BetStatus {
	return map[string]models.BetStatus{
		"✅": models.BetStatusWon,
		"❌": models.BetStatusLost,
		"🟨": models.BetStatusPush,
	}
}

func pendingBet() *models.Bet {
	start := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	return &models.Bet{
		BetSerial:      7,
		GuildID:        100,
		UserID:         200,
		League:         "NBA",
		BetType:        models.BetTypeStraight,
		Units:          2,
		Odds:           150,
		Team:           "Celtics",
		Confirmed:      true,
		Status:         models.BetStatusPending,
		ScheduledStart: &start,
		CreatedAt:      time.Date(2026, 3, 13, 12, 0, 0, 0, time.UTC),
	}
}

func TestResolutionService_HandleReactionAdd_ResolvesWin(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)
	mockReactionRepo := new(MockBetReactionRepository)
	mockUnitRepo := new(MockUnitRecordRepository)
	mockCapperRepo := new(MockCapperRecordRepository)
	mockPublisher := new(MockEventPublisher)

	mockUoW.SetRepositories(mockBetRepo, mockReactionRepo, mockUnitRepo, mockCapperRepo, nil, mockPublisher)

	svc := NewResolutionService(mockFactory, testMarkers())
	bet := pendingBet()

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByMessage", ctx, int64(100), int64(555)).Return(bet, nil)
	mockReactionRepo.On("RecordIfAbsent", ctx, mock.MatchedBy(func(r *models.BetReaction) bool {
		return r.BetSerial == 7 && r.UserID == 200 && r.Emoji == "✅"
	})).Return(true, nil)

	// 2 units at +150 nets 3.0
	mockBetRepo.On("Resolve", ctx, int64(7), models.BetStatusWon, 3.0).Return(int64(1), nil)

	// Ledger period comes from the scheduled start, not the placement time
	mockUnitRepo.On("Upsert", ctx, mock.MatchedBy(func(r *models.UnitRecord) bool {
		return r.BetSerial == 7 &&
			r.Year == 2026 && r.Month == 3 &&
			r.MonthlyResultValue == 3.0 &&
			r.TotalResultValue == 3.0
	})).Return(nil)

	mockCapperRepo.On("Get", ctx, int64(100), int64(200)).Return(&models.CapperRecord{
		GuildID: 100, UserID: 200, Wins: 3, Losses: 2,
	}, nil)
	mockCapperRepo.On("Refresh", ctx, int64(100), int64(200)).Return(&models.CapperRecord{
		GuildID: 100, UserID: 200, Wins: 4, Losses: 2,
	}, nil)

	mockPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		resolved, ok := e.(events.BetResolvedEvent)
		return ok && resolved.BetSerial == 7 &&
			resolved.Status == models.BetStatusWon &&
			resolved.ResultValue == 3.0
	})).Return()
	mockPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		changed, ok := e.(events.UnitTotalsChangedEvent)
		return ok && changed.GuildID == 100
	})).Return()

	err := svc.HandleReactionAdd(ctx, ReactionEvent{
		GuildID:   100,
		ChannelID: 300,
		MessageID: 555,
		UserID:    200,
		Emoji:     "✅",
	})

	assert.NoError(t, err)
	mockUoW.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
	mockReactionRepo.AssertExpectations(t)
	mockUnitRepo.AssertExpectations(t)
	mockCapperRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestResolutionService_HandleReactionAdd_UnauthorizedUserOnlyAudits(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)
	mockReactionRepo := new(MockBetReactionRepository)
	mockUnitRepo := new(MockUnitRecordRepository)

	mockUoW.SetRepositories(mockBetRepo, mockReactionRepo, mockUnitRepo, nil, nil, nil)

	svc := NewResolutionService(mockFactory, testMarkers())
	bet := pendingBet()

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByMessage", ctx, int64(100), int64(555)).Return(bet, nil)
	mockReactionRepo.On("RecordIfAbsent", ctx, mock.Anything).Return(true, nil)

	// Someone else's marker without moderator permissions
	err := svc.HandleReactionAdd(ctx, ReactionEvent{
		GuildID:    100,
		MessageID:  555,
		UserID:     999,
		Emoji:      "❌",
		Privileged: false,
	})

	assert.NoError(t, err)
	mockBetRepo.AssertNotCalled(t, "Resolve")
	mockUnitRepo.AssertNotCalled(t, "Upsert")
	mockUoW.AssertExpectations(t)
}

func TestResolutionService_HandleReactionAdd_PrivilegedUserResolves(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)
	mockReactionRepo := new(MockBetReactionRepository)
	mockUnitRepo := new(MockUnitRecordRepository)
	mockCapperRepo := new(MockCapperRecordRepository)
	mockPublisher := new(MockEventPublisher)

	mockUoW.SetRepositories(mockBetRepo, mockReactionRepo, mockUnitRepo, mockCapperRepo, nil, mockPublisher)

	svc := NewResolutionService(mockFactory, testMarkers())
	bet := pendingBet()

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByMessage", ctx, int64(100), int64(555)).Return(bet, nil)
	mockReactionRepo.On("RecordIfAbsent", ctx, mock.Anything).Return(true, nil)

	// Lost bet forfeits the full stake
	mockBetRepo.On("Resolve", ctx, int64(7), models.BetStatusLost, -2.0).Return(int64(1), nil)
	mockUnitRepo.On("Upsert", ctx, mock.Anything).Return(nil)
	mockCapperRepo.On("Get", ctx, int64(100), int64(200)).Return(nil, nil)
	mockCapperRepo.On("Refresh", ctx, int64(100), int64(200)).Return(&models.CapperRecord{
		GuildID: 100, UserID: 200, Losses: 1,
	}, nil)
	mockPublisher.On("Publish", mock.Anything).Return()

	err := svc.HandleReactionAdd(ctx, ReactionEvent{
		GuildID:    100,
		MessageID:  555,
		UserID:     999,
		Emoji:      "❌",
		Privileged: true,
	})

	assert.NoError(t, err)
	mockBetRepo.AssertExpectations(t)
	mockUnitRepo.AssertExpectations(t)
}

func TestResolutionService_HandleReactionAdd_NonMarkerOnlyAudits(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)
	mockReactionRepo := new(MockBetReactionRepository)

	mockUoW.SetRepositories(mockBetRepo, mockReactionRepo, nil, nil, nil, nil)

	svc := NewResolutionService(mockFactory, testMarkers())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByMessage", ctx, int64(100), int64(555)).Return(pendingBet(), nil)
	mockReactionRepo.On("RecordIfAbsent", ctx, mock.MatchedBy(func(r *models.BetReaction) bool {
		return r.Emoji == "🔥"
	})).Return(true, nil)

	err := svc.HandleReactionAdd(ctx, ReactionEvent{
		GuildID:   100,
		MessageID: 555,
		UserID:    200,
		Emoji:     "🔥",
	})

	assert.NoError(t, err)
	mockBetRepo.AssertNotCalled(t, "Resolve")
	mockUoW.AssertExpectations(t)
}

func TestResolutionService_HandleReactionAdd_TerminalBetStaysSettled(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)
	mockReactionRepo := new(MockBetReactionRepository)
	mockUnitRepo := new(MockUnitRecordRepository)

	mockUoW.SetRepositories(mockBetRepo, mockReactionRepo, mockUnitRepo, nil, nil, nil)

	svc := NewResolutionService(mockFactory, testMarkers())

	bet := pendingBet()
	bet.Status = models.BetStatusWon

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByMessage", ctx, int64(100), int64(555)).Return(bet, nil)
	mockReactionRepo.On("RecordIfAbsent", ctx, mock.Anything).Return(true, nil)

	// A second marker on a settled bet must never rewrite the ledger
	err := svc.HandleReactionAdd(ctx, ReactionEvent{
		GuildID:   100,
		MessageID: 555,
		UserID:    200,
		Emoji:     "❌",
	})

	assert.NoError(t, err)
	mockBetRepo.AssertNotCalled(t, "Resolve")
	mockUnitRepo.AssertNotCalled(t, "Upsert")
}

func TestResolutionService_HandleReactionAdd_UnrelatedMessageIgnored(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)
	mockReactionRepo := new(MockBetReactionRepository)

	mockUoW.SetRepositories(mockBetRepo, mockReactionRepo, nil, nil, nil, nil)

	svc := NewResolutionService(mockFactory, testMarkers())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByMessage", ctx, int64(100), int64(777)).Return(nil, nil)

	err := svc.HandleReactionAdd(ctx, ReactionEvent{
		GuildID:   100,
		MessageID: 777,
		UserID:    200,
		Emoji:     "✅",
	})

	assert.NoError(t, err)
	mockReactionRepo.AssertNotCalled(t, "RecordIfAbsent")
}

func TestResolutionService_HandleReactionAdd_ConcurrentLoserKeepsAudit(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)
	mockReactionRepo := new(MockBetReactionRepository)
	mockUnitRepo := new(MockUnitRecordRepository)
	mockPublisher := new(MockEventPublisher)

	mockUoW.SetRepositories(mockBetRepo, mockReactionRepo, mockUnitRepo, nil, nil, mockPublisher)

	svc := NewResolutionService(mockFactory, testMarkers())
	bet := pendingBet()

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByMessage", ctx, int64(100), int64(555)).Return(bet, nil)
	mockReactionRepo.On("RecordIfAbsent", ctx, mock.Anything).Return(true, nil)

	// Another resolver won the race between the read and the update
	mockBetRepo.On("Resolve", ctx, int64(7), models.BetStatusWon, 3.0).Return(int64(0), nil)

	err := svc.HandleReactionAdd(ctx, ReactionEvent{
		GuildID:   100,
		MessageID: 555,
		UserID:    200,
		Emoji:     "✅",
	})

	assert.NoError(t, err)
	mockUnitRepo.AssertNotCalled(t, "Upsert")
	mockPublisher.AssertNotCalled(t, "Publish")
	mockUoW.AssertExpectations(t)
}

func TestResolutionService_HandleReactionAdd_MilestoneEvent(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)
	mockReactionRepo := new(MockBetReactionRepository)
	mockUnitRepo := new(MockUnitRecordRepository)
	mockCapperRepo := new(MockCapperRecordRepository)
	mockPublisher := new(MockEventPublisher)

	mockUoW.SetRepositories(mockBetRepo, mockReactionRepo, mockUnitRepo, mockCapperRepo, nil, mockPublisher)

	svc := NewResolutionService(mockFactory, testMarkers())
	bet := pendingBet()

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByMessage", ctx, int64(100), int64(555)).Return(bet, nil)
	mockReactionRepo.On("RecordIfAbsent", ctx, mock.Anything).Return(true, nil)
	mockBetRepo.On("Resolve", ctx, int64(7), models.BetStatusWon, 3.0).Return(int64(1), nil)
	mockUnitRepo.On("Upsert", ctx, mock.Anything).Return(nil)

	// Crossing the 10-win milestone
	mockCapperRepo.On("Get", ctx, int64(100), int64(200)).Return(&models.CapperRecord{
		GuildID: 100, UserID: 200, Wins: 9,
	}, nil)
	mockCapperRepo.On("Refresh", ctx, int64(100), int64(200)).Return(&models.CapperRecord{
		GuildID: 100, UserID: 200, Wins: 10,
	}, nil)

	mockPublisher.On("Publish", mock.AnythingOfType("events.BetResolvedEvent")).Return()
	mockPublisher.On("Publish", mock.AnythingOfType("events.UnitTotalsChangedEvent")).Return()
	mockPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		earned, ok := e.(events.AchievementEarnedEvent)
		return ok && earned.Milestone == 10 && earned.Wins == 10
	})).Return()

	err := svc.HandleReactionAdd(ctx, ReactionEvent{
		GuildID:   100,
		MessageID: 555,
		UserID:    200,
		Emoji:     "✅",
	})

	assert.NoError(t, err)
	mockPublisher.AssertExpectations(t)
}

func TestResolutionService_HandleReactionRemove_NeverUnresolves(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)
	mockReactionRepo := new(MockBetReactionRepository)

	mockUoW.SetRepositories(mockBetRepo, mockReactionRepo, nil, nil, nil, nil)

	svc := NewResolutionService(mockFactory, testMarkers())

	bet := pendingBet()
	bet.Status = models.BetStatusWon

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByMessage", ctx, int64(100), int64(555)).Return(bet, nil)
	mockReactionRepo.On("Delete", ctx, int64(7), int64(200), "✅", int64(555)).Return(nil)

	err := svc.HandleReactionRemove(ctx, ReactionEvent{
		GuildID:   100,
		MessageID: 555,
		UserID:    200,
		Emoji:     "✅",
	})

	assert.NoError(t, err)
	mockBetRepo.AssertNotCalled(t, "Resolve")
	mockReactionRepo.AssertExpectations(t)
}
