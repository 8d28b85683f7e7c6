package service

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/errors"
	"wallet-ledger/internal/repository"
)

// WalletService owns every balance mutation. Both sides of a transfer and
// their ledger entries commit in one database transaction, with the balance
// check and debit inside the same per-row critical section
// (SELECT ... FOR UPDATE), so concurrent transfers draining one sender
// serialize and the sufficient-balance check can never read a stale value.
type WalletService struct {
	store     repository.Storer
	movements *MovementService
	logger    *slog.Logger
}

func NewWalletService(store repository.Storer, movements *MovementService, logger *slog.Logger) *WalletService {
	return &WalletService{
		store:     store,
		movements: movements,
		logger:    logger,
	}
}

// ResolveAccountID accepts an account UUID or a user email and returns the
// account id it names.
func (s *WalletService) ResolveAccountID(identifier string) (uuid.UUID, error) {
	return resolveAccountID(s.store, identifier)
}

func resolveAccountID(store repository.Storer, identifier string) (uuid.UUID, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		return id, nil
	}
	if strings.Contains(identifier, "@") {
		account, err := store.Account().GetAccountByEmail(identifier)
		if err != nil {
			return uuid.Nil, err
		}
		return account.ID, nil
	}
	return uuid.Nil, errors.ErrInvalidIdentifier
}

// GetBalance returns the account's current balance.
func (s *WalletService) GetBalance(identifier string) (decimal.Decimal, error) {
	accountID, err := s.ResolveAccountID(identifier)
	if err != nil {
		return decimal.Zero, err
	}

	account, err := s.store.Account().GetAccount(accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// Transfer moves amount from sender to receiver as one logical unit: both
// balance updates and both ledger entries, or nothing.
func (s *WalletService) Transfer(senderIdentifier, receiverIdentifier string, amount decimal.Decimal) error {
	s.logger.Info("Processing transfer",
		"sender", senderIdentifier,
		"receiver", receiverIdentifier,
		"amount", amount)

	if err := validateAmount(amount); err != nil {
		return err
	}

	senderID, err := s.ResolveAccountID(senderIdentifier)
	if err != nil {
		return err
	}
	receiverID, err := s.ResolveAccountID(receiverIdentifier)
	if err != nil {
		return err
	}

	if senderID == receiverID {
		return errors.ErrSelfTransfer
	}

	err = s.store.WithTransaction(func(tx repository.Storer) error {
		sender, receiver, err := lockAccountPair(tx, senderID, receiverID)
		if err != nil {
			return err
		}

		if sender.Balance.LessThan(amount) {
			return errors.ErrInsufficientBalance
		}

		if err := tx.Account().UpdateAccountBalance(senderID, sender.Balance.Sub(amount)); err != nil {
			return err
		}
		if err := tx.Account().UpdateAccountBalance(receiverID, receiver.Balance.Add(amount)); err != nil {
			return err
		}

		movements := s.movements.WithStore(tx)
		if err := movements.RecordOutcome(senderID, amount, &receiverID); err != nil {
			return err
		}
		return movements.RecordIncome(receiverID, amount, &senderID, "")
	})

	if err != nil {
		s.logger.Error("Transfer failed", "sender", senderID, "receiver", receiverID, "error", err)
		return err
	}

	s.logger.Info("Transfer completed", "sender", senderID, "receiver", receiverID, "amount", amount)
	return nil
}

// lockAccountPair takes both row locks in a fixed order so two transfers
// touching the same accounts in opposite directions cannot deadlock.
func lockAccountPair(tx repository.Storer, senderID, receiverID uuid.UUID) (sender, receiver *domain.Account, err error) {
	first, second := senderID, receiverID
	if second.String() < first.String() {
		first, second = second, first
	}

	a, err := tx.Account().GetAccountForUpdate(first)
	if err != nil {
		return nil, nil, err
	}
	b, err := tx.Account().GetAccountForUpdate(second)
	if err != nil {
		return nil, nil, err
	}

	if a.ID == senderID {
		return a, b, nil
	}
	return b, a, nil
}

// AddBalance credits an account from outside the wallet system. When
// externalLabel is set, an income ledger entry names the originating bank.
func (s *WalletService) AddBalance(identifier string, amount decimal.Decimal, externalLabel string) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	accountID, err := s.ResolveAccountID(identifier)
	if err != nil {
		return err
	}

	err = s.store.WithTransaction(func(tx repository.Storer) error {
		account, err := tx.Account().GetAccountForUpdate(accountID)
		if err != nil {
			return err
		}

		if err := tx.Account().UpdateAccountBalance(accountID, account.Balance.Add(amount)); err != nil {
			return err
		}

		return s.movements.WithStore(tx).RecordIncome(accountID, amount, nil, externalLabel)
	})

	if err != nil {
		s.logger.Error("Credit failed", "account_id", accountID, "error", err)
		return err
	}

	s.logger.Info("Account credited", "account_id", accountID, "amount", amount, "external_label", externalLabel)
	return nil
}
