package service

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/errors"
	"wallet-ledger/internal/repository"
)

type UserService struct {
	store          repository.Storer
	initialBalance decimal.Decimal
	logger         *slog.Logger
}

func NewUserService(store repository.Storer, initialBalance decimal.Decimal, logger *slog.Logger) *UserService {
	return &UserService{
		store:          store,
		initialBalance: initialBalance,
		logger:         logger,
	}
}

// Register creates a user and their wallet account with the configured
// initial balance. The user and account rows commit together.
func (s *UserService) Register(email, password string) (*domain.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to hash password").WithDetails(err.Error())
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		AccountID:    uuid.New(),
	}

	err = s.store.WithTransaction(func(tx repository.Storer) error {
		existing, err := tx.User().GetUserByEmail(email)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.ErrDuplicateUser
		}

		account := &domain.Account{
			ID:      user.AccountID,
			UserID:  user.ID,
			Balance: s.initialBalance,
		}
		if err := tx.Account().CreateAccount(account); err != nil {
			return err
		}
		return tx.User().CreateUser(user)
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID, "account_id", user.AccountID)
	return user, nil
}

func (s *UserService) FindByEmail(email string) (*domain.User, error) {
	return s.store.User().GetUserByEmail(email)
}
