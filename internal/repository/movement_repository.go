package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/errors"
)

type movementRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewMovementRepository(db SQLExecutor, logger *slog.Logger) domain.MovementRepository {
	return &movementRepository{
		db:     db,
		logger: logger,
	}
}

func (r *movementRepository) CreateMovement(movement *domain.Movement) error {
	query := `
		INSERT INTO movements
		(id, account_id, amount, direction, counterparty_account_id, external_label, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	now := time.Now()

	var counterparty interface{}
	if movement.CounterpartyAccountID != nil {
		counterparty = *movement.CounterpartyAccountID
	}

	var label interface{}
	if movement.ExternalLabel != nil {
		label = *movement.ExternalLabel
	}

	_, err := r.db.Exec(
		query,
		movement.ID,
		movement.AccountID,
		movement.Amount.String(),
		string(movement.Direction),
		counterparty,
		label,
		now,
	)

	if err != nil {
		r.logger.Error("Failed to create movement",
			"account_id", movement.AccountID,
			"direction", movement.Direction,
			"amount", movement.Amount,
			"error", err)
		return errors.NewAppError(errors.InternalError, "failed to create movement").WithDetails(err.Error())
	}

	movement.CreatedAt = now
	r.logger.Info("Movement recorded",
		"movement_id", movement.ID,
		"account_id", movement.AccountID,
		"direction", movement.Direction)
	return nil
}

func (r *movementRepository) ListMovementsByAccount(accountID uuid.UUID, limit int) ([]*domain.Movement, error) {
	query := `
		SELECT id, account_id, amount, direction, counterparty_account_id, external_label, created_at
		FROM movements
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(query, accountID, limit)
	if err != nil {
		r.logger.Error("Failed to list movements", "account_id", accountID, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to list movements").WithDetails(err.Error())
	}
	defer rows.Close()

	var movements []*domain.Movement
	for rows.Next() {
		movement, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to list movements").WithDetails(err.Error())
	}

	return movements, nil
}

func scanMovement(rows *sql.Rows) (*domain.Movement, error) {
	var movement domain.Movement
	var amountStr string
	var direction string
	var counterparty sql.NullString
	var label sql.NullString

	err := rows.Scan(
		&movement.ID,
		&movement.AccountID,
		&amountStr,
		&direction,
		&counterparty,
		&label,
		&movement.CreatedAt,
	)
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to scan movement").WithDetails(err.Error())
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to parse amount").WithDetails(err.Error())
	}
	movement.Amount = amount
	movement.Direction = domain.MovementDirection(direction)

	if counterparty.Valid {
		id, err := uuid.Parse(counterparty.String)
		if err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to parse counterparty id").WithDetails(err.Error())
		}
		movement.CounterpartyAccountID = &id
	}

	if label.Valid {
		movement.ExternalLabel = &label.String
	}

	return &movement, nil
}
