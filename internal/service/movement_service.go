package service

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/repository"
)

const defaultMovementListLimit = 100

// MovementService is the append-only ledger. Entries are written once and
// never updated; a store write failure propagates to the caller untouched so
// the enclosing transaction rolls back.
type MovementService struct {
	store  repository.Storer
	logger *slog.Logger
}

func NewMovementService(store repository.Storer, logger *slog.Logger) *MovementService {
	return &MovementService{
		store:  store,
		logger: logger,
	}
}

// WithStore returns a copy bound to another store, typically one scoped to
// an open database transaction.
func (s *MovementService) WithStore(store repository.Storer) *MovementService {
	return &MovementService{
		store:  store,
		logger: s.logger,
	}
}

// RecordOutcome appends an outcome entry for money leaving an account.
// counterparty is the receiving account for peer transfers, nil otherwise.
func (s *MovementService) RecordOutcome(accountID uuid.UUID, amount decimal.Decimal, counterparty *uuid.UUID) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	movement := &domain.Movement{
		ID:                    uuid.New(),
		AccountID:             accountID,
		Amount:                amount,
		Direction:             domain.DirectionOutcome,
		CounterpartyAccountID: counterparty,
	}

	return s.store.Movement().CreateMovement(movement)
}

// RecordIncome appends an income entry for money entering an account.
// counterparty is the sending account for peer transfers; externalLabel names
// the originating bank for externally funded credits. At most one is set.
func (s *MovementService) RecordIncome(accountID uuid.UUID, amount decimal.Decimal, counterparty *uuid.UUID, externalLabel string) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	movement := &domain.Movement{
		ID:        uuid.New(),
		AccountID: accountID,
		Amount:    amount,
		Direction: domain.DirectionIncome,
	}
	if counterparty != nil {
		movement.CounterpartyAccountID = counterparty
	} else if externalLabel != "" {
		movement.ExternalLabel = &externalLabel
	}

	return s.store.Movement().CreateMovement(movement)
}

// ListByAccount returns an account's ledger entries newest-first.
func (s *MovementService) ListByAccount(accountID uuid.UUID, limit int) ([]*domain.Movement, error) {
	if limit <= 0 {
		limit = defaultMovementListLimit
	}
	return s.store.Movement().ListMovementsByAccount(accountID, limit)
}
