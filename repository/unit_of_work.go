package repository

import (
	"context"
	"fmt"

	"betbot/database"
	"betbot/events"
	"betbot/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the service.UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	betRepo          service.BetRepository
	reactionRepo     service.BetReactionRepository
	unitRecordRepo   service.UnitRecordRepository
	capperRepo       service.CapperRecordRepository
	gameRepo         service.GameRepository
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.betRepo = newBetRepositoryWithTx(tx)
	u.reactionRepo = newBetReactionRepositoryWithTx(tx)
	u.unitRecordRepo = newUnitRecordRepositoryWithTx(tx)
	u.capperRepo = newCapperRecordRepositoryWithTx(tx)
	u.gameRepo = newGameRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction and discards pending events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// BetRepository returns the bet repository for this unit of work
func (u *unitOfWork) BetRepository() service.BetRepository {
	if u.betRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.betRepo
}

// BetReactionRepository returns the reaction repository for this unit of work
func (u *unitOfWork) BetReactionRepository() service.BetReactionRepository {
	if u.reactionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.reactionRepo
}

// UnitRecordRepository returns the unit record repository for this unit of work
func (u *unitOfWork) UnitRecordRepository() service.UnitRecordRepository {
	if u.unitRecordRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.unitRecordRepo
}

// CapperRecordRepository returns the capper record repository for this unit of work
func (u *unitOfWork) CapperRecordRepository() service.CapperRecordRepository {
	if u.capperRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.capperRepo
}

// GameRepository returns the game repository for this unit of work
func (u *unitOfWork) GameRepository() service.GameRepository {
	if u.gameRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.gameRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
