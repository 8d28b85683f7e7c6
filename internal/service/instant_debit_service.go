package service

import (
	"log/slog"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wallet-ledger/internal/authorizer"
	"wallet-ledger/internal/config"
	"wallet-ledger/internal/errors"
	"wallet-ledger/internal/repository"
)

// DebinState tracks an instant-debit request through its lifecycle.
type DebinState string

const (
	StateReceived    DebinState = "RECEIVED"
	StateValidating  DebinState = "VALIDATING"
	StateAuthorizing DebinState = "AUTHORIZING"
	StateAuthorized  DebinState = "AUTHORIZED"
	StateCrediting   DebinState = "CREDITING"
	StateDone        DebinState = "DONE"
	StateRejected    DebinState = "REJECTED"
	StateError       DebinState = "ERROR"
)

// InstantDebitRequest asks to pull amount from an external bank into the
// receiver's wallet. The receiver may be named by account id or email.
type InstantDebitRequest struct {
	ReceiverIdentifier string
	Bank               string
	Amount             decimal.Decimal
}

// InstantDebitResult is the terminal outcome. Approved is false for a
// rejection, with Reason carrying the bank's message.
type InstantDebitResult struct {
	Approved bool       `json:"approved"`
	State    DebinState `json:"state"`
	Reason   string     `json:"reason,omitempty"`
}

// InstantDebitService gates a wallet credit behind an external bank
// authorization and owns the compensation policy when the credit fails after
// the bank already approved the pull.
type InstantDebitService struct {
	store      repository.Storer
	wallet     *WalletService
	auth       authorizer.ExternalAuthorizer
	maxAmount  decimal.Decimal
	banks      map[string]struct{}
	mode       config.CompensationMode
	maxRetries int
	logger     *slog.Logger
}

func NewInstantDebitService(
	store repository.Storer,
	wallet *WalletService,
	auth authorizer.ExternalAuthorizer,
	cfg *config.Config,
	logger *slog.Logger,
) *InstantDebitService {
	banks := make(map[string]struct{}, len(cfg.DebinAllowedBanks))
	for _, b := range cfg.DebinAllowedBanks {
		banks[b] = struct{}{}
	}

	return &InstantDebitService{
		store:      store,
		wallet:     wallet,
		auth:       auth,
		maxAmount:  cfg.DebinMaxAmount,
		banks:      banks,
		mode:       cfg.DebinCompensation,
		maxRetries: cfg.CreditRetryMaxAttempts,
		logger:     logger,
	}
}

// HandleInstantDebit drives the request through
// RECEIVED -> VALIDATING -> AUTHORIZING -> AUTHORIZED -> CREDITING -> DONE,
// terminating early in REJECTED or ERROR. No balance is touched before a
// positive authorization.
func (s *InstantDebitService) HandleInstantDebit(req *InstantDebitRequest) (*InstantDebitResult, error) {
	state := StateReceived
	s.logTransition(req, state)

	state = StateValidating
	s.logTransition(req, state)
	receiverID, err := s.validate(req)
	if err != nil {
		s.logTransition(req, StateError)
		return nil, err
	}

	state = StateAuthorizing
	s.logTransition(req, state)
	decision := s.auth.Authorize(receiverID, req.Bank, req.Amount)

	switch decision.Outcome {
	case authorizer.Rejected:
		s.logTransition(req, StateRejected)
		return &InstantDebitResult{
			Approved: false,
			State:    StateRejected,
			Reason:   "authorization rejected by external system: " + decision.Reason,
		}, nil
	case authorizer.ChannelError:
		s.logTransition(req, StateError)
		return nil, errors.NewAppError(errors.AuthorizationChannel,
			"could not reach external authorizer").WithDetails(decision.Reason)
	}

	s.logTransition(req, StateAuthorized)

	s.logTransition(req, StateCrediting)
	if err := s.credit(receiverID, req); err != nil {
		s.logTransition(req, StateError)
		// The bank already approved the pull but the local credit never
		// landed. Surface this distinctly so operators reconcile instead of
		// the caller resubmitting.
		return nil, errors.NewAppError(errors.InternalConsistency,
			"internal error after approval: credit not applied, manual reconciliation required").
			WithDetails(err.Error())
	}

	s.logTransition(req, StateDone)
	return &InstantDebitResult{Approved: true, State: StateDone}, nil
}

func (s *InstantDebitService) validate(req *InstantDebitRequest) (uuid.UUID, error) {
	receiverID, err := resolveAccountID(s.store, req.ReceiverIdentifier)
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := s.store.Account().GetAccount(receiverID); err != nil {
		return uuid.Nil, err
	}

	if err := validateAmount(req.Amount); err != nil {
		return uuid.Nil, err
	}
	if req.Amount.GreaterThan(s.maxAmount) {
		return uuid.Nil, errors.NewAppErrorf(errors.AmountLimitExceeded,
			"amount exceeds instant debit limit of %s", s.maxAmount)
	}

	if _, ok := s.banks[req.Bank]; !ok {
		return uuid.Nil, errors.NewAppErrorf(errors.UnknownExternalSystem,
			"bank not allowed: %s", req.Bank)
	}

	return receiverID, nil
}

// credit applies the local side of an approved pull. In retry mode the write
// is retried with exponential backoff before escalating; in escalate mode a
// single failure goes straight to reconciliation.
func (s *InstantDebitService) credit(receiverID uuid.UUID, req *InstantDebitRequest) error {
	apply := func() error {
		return s.wallet.AddBalance(receiverID.String(), req.Amount, req.Bank)
	}

	if s.mode == config.CompensationEscalate {
		return apply()
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(s.maxRetries))
	return backoff.Retry(func() error {
		if err := apply(); err != nil {
			s.logger.Warn("Credit attempt failed, retrying",
				"account_id", receiverID, "bank", req.Bank, "error", err)
			return err
		}
		return nil
	}, policy)
}

func (s *InstantDebitService) logTransition(req *InstantDebitRequest, state DebinState) {
	s.logger.Info("Instant debit state",
		"state", state,
		"receiver", req.ReceiverIdentifier,
		"bank", req.Bank,
		"amount", req.Amount)
}
