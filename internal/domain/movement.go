package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementDirection string

const (
	DirectionIncome  MovementDirection = "income"
	DirectionOutcome MovementDirection = "outcome"
)

// Movement is an append-only ledger entry. Amount is always a positive
// magnitude; the direction says which way the balance moved. Exactly one of
// CounterpartyAccountID (peer transfers) or ExternalLabel (bank credits) is
// set, or neither for plain top-ups.
type Movement struct {
	ID                    uuid.UUID         `json:"id"`
	AccountID             uuid.UUID         `json:"account_id"`
	Amount                decimal.Decimal   `json:"amount"`
	Direction             MovementDirection `json:"direction"`
	CounterpartyAccountID *uuid.UUID        `json:"counterparty_account_id,omitempty"`
	ExternalLabel         *string           `json:"external_label,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
}

type MovementRepository interface {
	CreateMovement(movement *Movement) error
	// ListMovementsByAccount returns entries newest-first.
	ListMovementsByAccount(accountID uuid.UUID, limit int) ([]*Movement, error)
}
