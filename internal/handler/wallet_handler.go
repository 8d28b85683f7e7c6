package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"wallet-ledger/internal/errors"
	"wallet-ledger/internal/service"
)

type WalletHandler struct {
	walletService *service.WalletService
	debinService  *service.InstantDebitService
}

func NewWalletHandler(walletService *service.WalletService, debinService *service.InstantDebitService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		debinService:  debinService,
	}
}

type BalanceResponse struct {
	Identifier string `json:"identifier"`
	Balance    string `json:"balance"`
}

func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	identifier := r.URL.Query().Get("identifier")
	if identifier == "" {
		writeError(w, errors.NewAppError(errors.InvalidInput, "identifier query parameter is required"))
		return
	}

	balance, err := h.walletService.GetBalance(identifier)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{
		Identifier: identifier,
		Balance:    balance.String(),
	})
}

type TransferRequest struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
}

type TransferResponse struct {
	Status string `json:"status"`
}

func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidAmount, "invalid amount format").WithDetails(err.Error()))
		return
	}

	if err := h.walletService.Transfer(req.Sender, req.Receiver, amount); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, TransferResponse{Status: "completed"})
}

type InstantDebitHTTPRequest struct {
	Receiver string `json:"receiver"`
	Bank     string `json:"bank"`
	Amount   string `json:"amount"`
}

func (h *WalletHandler) RequestInstantDebit(w http.ResponseWriter, r *http.Request) {
	var req InstantDebitHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidAmount, "invalid amount format").WithDetails(err.Error()))
		return
	}

	result, err := h.debinService.HandleInstantDebit(&service.InstantDebitRequest{
		ReceiverIdentifier: req.Receiver,
		Bank:               req.Bank,
		Amount:             amount,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if !result.Approved {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}
