package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCleanupService_SweepOnce(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(mockBetRepo, nil, nil, nil, nil, nil)

	svc := NewCleanupService(mockFactory, 24*time.Hour, 5*time.Minute)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("DeleteExpiredPending", ctx, 24*time.Hour).Return(int64(3), nil)
	mockBetRepo.On("DeleteUnconfirmed", ctx, 5*time.Minute).Return(int64(1), nil)

	expired, unconfirmed, err := svc.SweepOnce(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), expired)
	assert.Equal(t, int64(1), unconfirmed)

	mockUoW.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
}

func TestCleanupService_SweepOnce_NothingToDelete(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(mockBetRepo, nil, nil, nil, nil, nil)

	svc := NewCleanupService(mockFactory, 24*time.Hour, 5*time.Minute)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("DeleteExpiredPending", ctx, 24*time.Hour).Return(int64(0), nil)
	mockBetRepo.On("DeleteUnconfirmed", ctx, 5*time.Minute).Return(int64(0), nil)

	expired, unconfirmed, err := svc.SweepOnce(ctx)

	assert.NoError(t, err)
	assert.Zero(t, expired)
	assert.Zero(t, unconfirmed)
}

func TestCleanupService_SweepOnce_ErrorAbortsSweep(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(mockBetRepo, nil, nil, nil, nil, nil)

	svc := NewCleanupService(mockFactory, 24*time.Hour, 5*time.Minute)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("DeleteExpiredPending", ctx, 24*time.Hour).Return(int64(0), errors.New("deadlock detected"))

	_, _, err := svc.SweepOnce(ctx)

	assert.Error(t, err)
	mockBetRepo.AssertNotCalled(t, "DeleteUnconfirmed")
	mockUoW.AssertNotCalled(t, "Commit")
}
