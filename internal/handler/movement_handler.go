package handler

import (
	"net/http"
	"strconv"

	"wallet-ledger/internal/errors"
	"wallet-ledger/internal/service"
)

type MovementHandler struct {
	walletService   *service.WalletService
	movementService *service.MovementService
}

func NewMovementHandler(walletService *service.WalletService, movementService *service.MovementService) *MovementHandler {
	return &MovementHandler{
		walletService:   walletService,
		movementService: movementService,
	}
}

func (h *MovementHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	identifier := r.URL.Query().Get("identifier")
	if identifier == "" {
		writeError(w, errors.NewAppError(errors.InvalidInput, "identifier query parameter is required"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, errors.NewAppError(errors.InvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	accountID, err := h.walletService.ResolveAccountID(identifier)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	movements, err := h.movementService.ListByAccount(accountID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, movements)
}
