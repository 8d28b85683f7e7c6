package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Account struct {
	ID        uuid.UUID       `json:"account_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type AccountRepository interface {
	CreateAccount(account *Account) error
	GetAccount(id uuid.UUID) (*Account, error)
	// GetAccountForUpdate locks the account row until the enclosing
	// database transaction ends. Only meaningful inside WithTransaction.
	GetAccountForUpdate(id uuid.UUID) (*Account, error)
	GetAccountByEmail(email string) (*Account, error)
	UpdateAccountBalance(id uuid.UUID, newBalance decimal.Decimal) error
}
