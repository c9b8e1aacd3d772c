package service

import (
	"context"
	"time"

	"betbot/events"
	"betbot/models"

	"github.com/stretchr/testify/mock"
)

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetBySerial(ctx context.Context, betSerial int64) (*models.Bet, error) {
	args := m.Called(ctx, betSerial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByMessage(ctx context.Context, guildID, messageID int64) (*models.Bet, error) {
	args := m.Called(ctx, guildID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) Confirm(ctx context.Context, betSerial, messageID, channelID int64) (int64, error) {
	args := m.Called(ctx, betSerial, messageID, channelID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBetRepository) Resolve(ctx context.Context, betSerial int64, status models.BetStatus, resultValue float64) (int64, error) {
	args := m.Called(ctx, betSerial, status, resultValue)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBetRepository) Update(ctx context.Context, betSerial int64, fields map[string]any) (int64, error) {
	args := m.Called(ctx, betSerial, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBetRepository) Delete(ctx context.Context, betSerial int64) error {
	args := m.Called(ctx, betSerial)
	return args.Error(0)
}

func (m *MockBetRepository) ListPendingByUser(ctx context.Context, guildID, userID int64, limit int) ([]*models.Bet, error) {
	args := m.Called(ctx, guildID, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetRepository) DeleteExpiredPending(ctx context.Context, ttl time.Duration) (int64, error) {
	args := m.Called(ctx, ttl)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBetRepository) DeleteUnconfirmed(ctx context.Context, grace time.Duration) (int64, error) {
	args := m.Called(ctx, grace)
	return args.Get(0).(int64), args.Error(1)
}

// MockBetReactionRepository is a mock implementation of BetReactionRepository
type MockBetReactionRepository struct {
	mock.Mock
}

func (m *MockBetReactionRepository) RecordIfAbsent(ctx context.Context, reaction *models.BetReaction) (bool, error) {
	args := m.Called(ctx, reaction)
	return args.Bool(0), args.Error(1)
}

func (m *MockBetReactionRepository) Delete(ctx context.Context, betSerial, userID int64, emoji string, messageID int64) error {
	args := m.Called(ctx, betSerial, userID, emoji, messageID)
	return args.Error(0)
}

func (m *MockBetReactionRepository) GetByBet(ctx context.Context, betSerial int64) ([]*models.BetReaction, error) {
	args := m.Called(ctx, betSerial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BetReaction), args.Error(1)
}

// MockUnitRecordRepository is a mock implementation of UnitRecordRepository
type MockUnitRecordRepository struct {
	mock.Mock
}

func (m *MockUnitRecordRepository) Upsert(ctx context.Context, record *models.UnitRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockUnitRecordRepository) GetByBetSerial(ctx context.Context, betSerial int64) (*models.UnitRecord, error) {
	args := m.Called(ctx, betSerial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UnitRecord), args.Error(1)
}

func (m *MockUnitRecordRepository) GetMonthlyLeaderboard(ctx context.Context, guildID int64, year, month, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, guildID, year, month, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

func (m *MockUnitRecordRepository) GetGuildNetUnits(ctx context.Context, guildID int64) (float64, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(float64), args.Error(1)
}

// MockCapperRecordRepository is a mock implementation of CapperRecordRepository
type MockCapperRecordRepository struct {
	mock.Mock
}

func (m *MockCapperRecordRepository) Refresh(ctx context.Context, guildID, userID int64) (*models.CapperRecord, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CapperRecord), args.Error(1)
}

func (m *MockCapperRecordRepository) Get(ctx context.Context, guildID, userID int64) (*models.CapperRecord, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CapperRecord), args.Error(1)
}

// MockGameRepository is a mock implementation of GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) GetByExternalRef(ctx context.Context, externalRef string) (*models.Game, error) {
	args := m.Called(ctx, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockGameRepository) GetOrCreate(ctx context.Context, game *models.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

// MockGameSource is a mock implementation of GameSource
type MockGameSource struct {
	mock.Mock
}

func (m *MockGameSource) GetGameByExternalRef(ctx context.Context, externalRef string) (*models.GameData, error) {
	args := m.Called(ctx, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameData), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository getters
// return the instances handed to SetRepositories rather than going through
// the expectation machinery.
type MockUnitOfWork struct {
	mock.Mock

	betRepo      BetRepository
	reactionRepo BetReactionRepository
	unitRepo     UnitRecordRepository
	capperRepo   CapperRecordRepository
	gameRepo     GameRepository
	eventBus     EventPublisher
}

// SetRepositories wires the repositories the mocked transaction hands out
func (m *MockUnitOfWork) SetRepositories(betRepo BetRepository, reactionRepo BetReactionRepository, unitRepo UnitRecordRepository, capperRepo CapperRecordRepository, gameRepo GameRepository, eventBus EventPublisher) {
	m.betRepo = betRepo
	m.reactionRepo = reactionRepo
	m.unitRepo = unitRepo
	m.capperRepo = capperRepo
	m.gameRepo = gameRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) BetRepository() BetRepository {
	return m.betRepo
}

func (m *MockUnitOfWork) BetReactionRepository() BetReactionRepository {
	return m.reactionRepo
}

func (m *MockUnitOfWork) UnitRecordRepository() UnitRecordRepository {
	return m.unitRepo
}

func (m *MockUnitOfWork) CapperRecordRepository() CapperRecordRepository {
	return m.capperRepo
}

func (m *MockUnitOfWork) GameRepository() GameRepository {
	return m.gameRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
