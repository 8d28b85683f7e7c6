package authorizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HTTPAuthorizer calls the simulated bank API over HTTP. The client timeout
// bounds the round trip; a timeout or transport failure is a ChannelError,
// never a rejection.
type HTTPAuthorizer struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewHTTPAuthorizer(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPAuthorizer {
	return &HTTPAuthorizer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type authorizeRequest struct {
	AccountID string `json:"account_id"`
	Bank      string `json:"bank"`
	Amount    string `json:"amount"`
}

type authorizeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (a *HTTPAuthorizer) Authorize(targetAccountID uuid.UUID, bank string, amount decimal.Decimal) Decision {
	payload, err := json.Marshal(authorizeRequest{
		AccountID: targetAccountID.String(),
		Bank:      bank,
		Amount:    amount.String(),
	})
	if err != nil {
		return Decision{Outcome: ChannelError, Reason: err.Error()}
	}

	resp, err := a.client.Post(a.baseURL+"/debin", "application/json", bytes.NewReader(payload))
	if err != nil {
		a.logger.Error("Authorization call failed", "bank", bank, "error", err)
		return Decision{Outcome: ChannelError, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("Authorization call returned unexpected status", "bank", bank, "status", resp.StatusCode)
		return Decision{Outcome: ChannelError, Reason: fmt.Sprintf("bank api returned status %d", resp.StatusCode)}
	}

	var body authorizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Decision{Outcome: ChannelError, Reason: "malformed bank api response: " + err.Error()}
	}

	if !body.Success {
		a.logger.Info("Authorization rejected", "bank", bank, "reason", body.Message)
		return Decision{Outcome: Rejected, Reason: body.Message}
	}

	return Decision{Outcome: Approved, Reason: body.Message}
}

var _ ExternalAuthorizer = (*HTTPAuthorizer)(nil)
