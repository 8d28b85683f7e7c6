package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"wallet-ledger/internal/errors"
)

// Stateless validation helpers shared across services.

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() || amount.IsZero() {
		return errors.ErrInvalidAmount
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" || !strings.Contains(email, "@") {
		return errors.ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return errors.ErrWeakPassword
	}
	return nil
}
