package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/errors"
	"wallet-ledger/internal/repository"
)

// memStore is an in-memory Storer for unit tests. WithTransaction serializes
// callers on a single mutex and restores a snapshot on error, mirroring the
// row-lock-and-rollback semantics the Postgres store gets from the database.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	accounts  map[uuid.UUID]*domain.Account
	users     map[uuid.UUID]*domain.User
	movements []*domain.Movement

	// failBalanceUpdates makes the next N UpdateAccountBalance calls fail.
	failBalanceUpdates int
	// failMovementCreates makes the next N CreateMovement calls fail.
	failMovementCreates int
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[uuid.UUID]*domain.Account),
		users:    make(map[uuid.UUID]*domain.User),
	}
}

func (m *memStore) addAccount(balance string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.accounts[id] = &domain.Account{
		ID:      id,
		UserID:  uuid.New(),
		Balance: decimal.RequireFromString(balance),
	}
	return id
}

func (m *memStore) addUserWithAccount(email, balance string) (userID, accountID uuid.UUID) {
	accountID = m.addAccount(balance)
	m.mu.Lock()
	defer m.mu.Unlock()
	userID = uuid.New()
	m.accounts[accountID].UserID = userID
	m.users[userID] = &domain.User{
		ID:        userID,
		Email:     email,
		AccountID: accountID,
	}
	return userID, accountID
}

func (m *memStore) balance(id uuid.UUID) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[id].Balance
}

func (m *memStore) movementsFor(id uuid.UUID) []*domain.Movement {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Movement
	for _, mv := range m.movements {
		if mv.AccountID == id {
			out = append(out, mv)
		}
	}
	return out
}

func (m *memStore) Account() domain.AccountRepository   { return (*memAccountRepo)(m) }
func (m *memStore) Movement() domain.MovementRepository { return (*memMovementRepo)(m) }
func (m *memStore) User() domain.UserRepository         { return (*memUserRepo)(m) }

func (m *memStore) WithTransaction(fn func(repository.Storer) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapAccounts := make(map[uuid.UUID]*domain.Account, len(m.accounts))
	for id, a := range m.accounts {
		cp := *a
		snapAccounts[id] = &cp
	}
	snapUsers := make(map[uuid.UUID]*domain.User, len(m.users))
	for id, u := range m.users {
		cp := *u
		snapUsers[id] = &cp
	}
	snapMovements := len(m.movements)
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.accounts = snapAccounts
		m.users = snapUsers
		m.movements = m.movements[:snapMovements]
		m.mu.Unlock()
		return err
	}
	return nil
}

var _ repository.Storer = (*memStore)(nil)

type memAccountRepo memStore

func (r *memAccountRepo) CreateAccount(account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.ID]; ok {
		return errors.NewAppError(errors.InternalError, "account already exists")
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	cp := *account
	r.accounts[account.ID] = &cp
	return nil
}

func (r *memAccountRepo) GetAccount(id uuid.UUID) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, errors.NewAccountNotFound(id.String())
	}
	cp := *a
	return &cp, nil
}

func (r *memAccountRepo) GetAccountForUpdate(id uuid.UUID) (*domain.Account, error) {
	return r.GetAccount(id)
}

func (r *memAccountRepo) GetAccountByEmail(email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			a, ok := r.accounts[u.AccountID]
			if !ok {
				break
			}
			cp := *a
			return &cp, nil
		}
	}
	return nil, errors.NewAccountNotFound(email)
}

func (r *memAccountRepo) UpdateAccountBalance(id uuid.UUID, newBalance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failBalanceUpdates > 0 {
		r.failBalanceUpdates--
		return errors.NewAppError(errors.InternalError, "simulated store failure")
	}
	a, ok := r.accounts[id]
	if !ok {
		return errors.NewAccountNotFound(id.String())
	}
	a.Balance = newBalance
	a.UpdatedAt = time.Now()
	return nil
}

type memMovementRepo memStore

func (r *memMovementRepo) CreateMovement(movement *domain.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failMovementCreates > 0 {
		r.failMovementCreates--
		return errors.NewAppError(errors.InternalError, "simulated store failure")
	}
	movement.CreatedAt = time.Now()
	cp := *movement
	r.movements = append(r.movements, &cp)
	return nil
}

func (r *memMovementRepo) ListMovementsByAccount(accountID uuid.UUID, limit int) ([]*domain.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Movement
	for _, mv := range r.movements {
		if mv.AccountID == accountID {
			cp := *mv
			out = append(out, &cp)
		}
	}
	// Newest-first; appends happen in timestamp order so reversing suffices.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memUserRepo memStore

func (r *memUserRepo) CreateUser(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return errors.ErrDuplicateUser
		}
	}
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetUserByEmail(email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetUserByID(id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}
