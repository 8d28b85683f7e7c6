package service

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newWalletFixture(t *testing.T) (*memStore, *WalletService) {
	t.Helper()
	store := newMemStore()
	logger := testLogger()
	movements := NewMovementService(store, logger)
	return store, NewWalletService(store, movements, logger)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTransferMovesFundsAndWritesLedger(t *testing.T) {
	store, wallet := newWalletFixture(t)
	sender := store.addAccount("1000")
	receiver := store.addAccount("1000")

	err := wallet.Transfer(sender.String(), receiver.String(), dec("100"))
	require.NoError(t, err)

	assert.True(t, dec("900").Equal(store.balance(sender)), "sender balance: %s", store.balance(sender))
	assert.True(t, dec("1100").Equal(store.balance(receiver)), "receiver balance: %s", store.balance(receiver))

	senderMoves := store.movementsFor(sender)
	require.Len(t, senderMoves, 1)
	assert.Equal(t, domain.DirectionOutcome, senderMoves[0].Direction)
	assert.True(t, dec("100").Equal(senderMoves[0].Amount))
	require.NotNil(t, senderMoves[0].CounterpartyAccountID)
	assert.Equal(t, receiver, *senderMoves[0].CounterpartyAccountID)

	receiverMoves := store.movementsFor(receiver)
	require.Len(t, receiverMoves, 1)
	assert.Equal(t, domain.DirectionIncome, receiverMoves[0].Direction)
	assert.True(t, dec("100").Equal(receiverMoves[0].Amount))
	require.NotNil(t, receiverMoves[0].CounterpartyAccountID)
	assert.Equal(t, sender, *receiverMoves[0].CounterpartyAccountID)
}

func TestTransferConservesTotalBalance(t *testing.T) {
	store, wallet := newWalletFixture(t)
	sender := store.addAccount("730.25")
	receiver := store.addAccount("19.75")
	before := store.balance(sender).Add(store.balance(receiver))

	require.NoError(t, wallet.Transfer(sender.String(), receiver.String(), dec("730.25")))

	after := store.balance(sender).Add(store.balance(receiver))
	assert.True(t, before.Equal(after), "before=%s after=%s", before, after)
	assert.True(t, store.balance(sender).GreaterThanOrEqual(decimal.Zero))
}

func TestTransferRejectsNonPositiveAmount(t *testing.T) {
	store, wallet := newWalletFixture(t)
	sender := store.addAccount("1000")
	receiver := store.addAccount("1000")

	for _, amount := range []string{"0", "-5"} {
		err := wallet.Transfer(sender.String(), receiver.String(), dec(amount))
		require.Error(t, err)
		appErr, ok := err.(*errors.AppError)
		require.True(t, ok)
		assert.Equal(t, errors.InvalidAmount, appErr.Code)
	}

	assert.True(t, dec("1000").Equal(store.balance(sender)))
	assert.True(t, dec("1000").Equal(store.balance(receiver)))
	assert.Empty(t, store.movementsFor(sender))
	assert.Empty(t, store.movementsFor(receiver))
}

func TestTransferRejectsSelfTransfer(t *testing.T) {
	store, wallet := newWalletFixture(t)
	account := store.addAccount("1000")

	err := wallet.Transfer(account.String(), account.String(), dec("10"))
	assert.Equal(t, errors.ErrSelfTransfer, err)
	assert.True(t, dec("1000").Equal(store.balance(account)))
}

func TestTransferRejectsSelfTransferViaEmail(t *testing.T) {
	store, wallet := newWalletFixture(t)
	_, account := store.addUserWithAccount("solo@example.com", "1000")

	// Same account named two different ways still counts as a self transfer.
	err := wallet.Transfer(account.String(), "solo@example.com", dec("10"))
	assert.Equal(t, errors.ErrSelfTransfer, err)
}

func TestTransferInsufficientBalance(t *testing.T) {
	store, wallet := newWalletFixture(t)
	sender := store.addAccount("50")
	receiver := store.addAccount("10")

	err := wallet.Transfer(sender.String(), receiver.String(), dec("50.01"))
	assert.Equal(t, errors.ErrInsufficientBalance, err)

	assert.True(t, dec("50").Equal(store.balance(sender)))
	assert.True(t, dec("10").Equal(store.balance(receiver)))
	assert.Empty(t, store.movementsFor(sender))
	assert.Empty(t, store.movementsFor(receiver))
}

func TestTransferUnknownAccounts(t *testing.T) {
	store, wallet := newWalletFixture(t)
	known := store.addAccount("100")
	unknown := uuid.New()

	err := wallet.Transfer(unknown.String(), known.String(), dec("10"))
	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, errors.AccountNotFound, appErr.Code)
	assert.Contains(t, appErr.Message, unknown.String())

	err = wallet.Transfer(known.String(), "ghost@example.com", dec("10"))
	require.Error(t, err)
	appErr = err.(*errors.AppError)
	assert.Equal(t, errors.AccountNotFound, appErr.Code)
	assert.Contains(t, appErr.Message, "ghost@example.com")

	assert.True(t, dec("100").Equal(store.balance(known)))
}

func TestTransferResolvesEmails(t *testing.T) {
	store, wallet := newWalletFixture(t)
	_, sender := store.addUserWithAccount("alice@example.com", "200")
	_, receiver := store.addUserWithAccount("bob@example.com", "0")

	require.NoError(t, wallet.Transfer("alice@example.com", "bob@example.com", dec("75")))

	assert.True(t, dec("125").Equal(store.balance(sender)))
	assert.True(t, dec("75").Equal(store.balance(receiver)))
}

func TestTransferRollsBackWhenLedgerWriteFails(t *testing.T) {
	store, wallet := newWalletFixture(t)
	sender := store.addAccount("1000")
	receiver := store.addAccount("1000")

	store.failMovementCreates = 1

	err := wallet.Transfer(sender.String(), receiver.String(), dec("100"))
	require.Error(t, err)

	// Balances and ledger stay untouched: both-or-neither.
	assert.True(t, dec("1000").Equal(store.balance(sender)))
	assert.True(t, dec("1000").Equal(store.balance(receiver)))
	assert.Empty(t, store.movementsFor(sender))
	assert.Empty(t, store.movementsFor(receiver))
}

func TestConcurrentTransfersFromSameSender(t *testing.T) {
	store, wallet := newWalletFixture(t)
	sender := store.addAccount("100")
	receiverA := store.addAccount("0")
	receiverB := store.addAccount("0")

	// Each transfer alone fits the balance; together they overdraw it.
	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, receiver := range []uuid.UUID{receiverA, receiverB} {
		wg.Add(1)
		go func(receiver uuid.UUID) {
			defer wg.Done()
			results <- wallet.Transfer(sender.String(), receiver.String(), dec("80"))
		}(receiver)
	}
	wg.Wait()
	close(results)

	var succeeded, insufficient int
	for err := range results {
		switch err {
		case nil:
			succeeded++
		case errors.ErrInsufficientBalance:
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, insufficient)
	assert.True(t, dec("20").Equal(store.balance(sender)), "final sender balance: %s", store.balance(sender))
	assert.True(t, store.balance(sender).GreaterThanOrEqual(decimal.Zero))
}

func TestGetBalance(t *testing.T) {
	store, wallet := newWalletFixture(t)
	_, account := store.addUserWithAccount("carol@example.com", "321.50")

	byID, err := wallet.GetBalance(account.String())
	require.NoError(t, err)
	assert.True(t, dec("321.50").Equal(byID))

	byEmail, err := wallet.GetBalance("carol@example.com")
	require.NoError(t, err)
	assert.True(t, dec("321.50").Equal(byEmail))

	_, err = wallet.GetBalance(uuid.New().String())
	require.Error(t, err)
	assert.Equal(t, errors.AccountNotFound, err.(*errors.AppError).Code)
}

func TestGetBalanceRejectsBadIdentifier(t *testing.T) {
	_, wallet := newWalletFixture(t)

	_, err := wallet.GetBalance("not-an-id-or-email")
	assert.Equal(t, errors.ErrInvalidIdentifier, err)
}

func TestAddBalanceCreditsAndTagsBank(t *testing.T) {
	store, wallet := newWalletFixture(t)
	account := store.addAccount("10")

	require.NoError(t, wallet.AddBalance(account.String(), dec("90"), "galicia"))

	assert.True(t, dec("100").Equal(store.balance(account)))

	moves := store.movementsFor(account)
	require.Len(t, moves, 1)
	assert.Equal(t, domain.DirectionIncome, moves[0].Direction)
	require.NotNil(t, moves[0].ExternalLabel)
	assert.Equal(t, "galicia", *moves[0].ExternalLabel)
	assert.Nil(t, moves[0].CounterpartyAccountID)
}

func TestAddBalanceRejectsNonPositiveAmount(t *testing.T) {
	store, wallet := newWalletFixture(t)
	account := store.addAccount("10")

	err := wallet.AddBalance(account.String(), dec("0"), "galicia")
	assert.Equal(t, errors.ErrInvalidAmount, err)
	assert.True(t, dec("10").Equal(store.balance(account)))
}
