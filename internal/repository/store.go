package repository

import (
	"database/sql"
	"log/slog"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/errors"
)

// Storer is the unit of work over all repositories. WithTransaction derives
// a store whose repositories share one database transaction; services that
// must commit several writes atomically use it as a single critical section.
type Storer interface {
	Account() domain.AccountRepository
	Movement() domain.MovementRepository
	User() domain.UserRepository
	WithTransaction(fn func(Storer) error) error
}

// Store implements Storer on Postgres. Built from *sql.DB it runs each call
// in autocommit mode.
type Store struct {
	executor SQLExecutor
	logger   *slog.Logger
}

func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		executor: db,
		logger:   logger,
	}
}

func (s *Store) Account() domain.AccountRepository {
	return NewAccountRepository(s.executor, s.logger)
}

func (s *Store) Movement() domain.MovementRepository {
	return NewMovementRepository(s.executor, s.logger)
}

func (s *Store) User() domain.UserRepository {
	return NewUserRepository(s.executor, s.logger)
}

// WithTransaction executes fn inside a database transaction. Any error or
// panic from fn rolls the whole transaction back, so balance updates and
// their ledger entries commit both-or-neither.
func (s *Store) WithTransaction(fn func(Storer) error) error {
	db, ok := s.executor.(*sql.DB)
	if !ok {
		return errors.ErrCannotBeginTransaction
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	txStore := &Store{
		executor: &TxWrapper{Tx: tx},
		logger:   s.logger,
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txStore); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

var _ Storer = (*Store)(nil)
