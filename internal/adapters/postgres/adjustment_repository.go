package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
)

// AdjustmentRepository implements ports.AdjustmentRepository
type AdjustmentRepository struct {
	pool ports.DBTX
}

// NewAdjustmentRepository creates a new adjustment repository
func NewAdjustmentRepository(db ports.DBPort) *AdjustmentRepository {
	return &AdjustmentRepository{pool: db.GetDB()}
}

const adjustmentColumns = `id, ledger_line_id, requested_amount, reason, status,
       requested_by, approved_by, requested_at, decided_at`

func scanAdjustment(row pgx.Row) (*models.Adjustment, error) {
	var a models.Adjustment
	var approvedBy pgtype.UUID
	var decidedAt pgtype.Timestamptz
	if err := row.Scan(&a.ID, &a.LedgerLineID, &a.RequestedAmount, &a.Reason, &a.Status,
		&a.RequestedBy, &approvedBy, &a.RequestedAt, &decidedAt); err != nil {
		return nil, err
	}
	a.ApprovedBy = uuidToStringPtr(approvedBy)
	a.DecidedAt = timePtr(decidedAt)
	return &a, nil
}

// Create persists a new PENDING adjustment
func (r *AdjustmentRepository) Create(ctx context.Context, db ports.DBTX, adjustment *models.Adjustment) error {
	adjID, err := parseID("adjustment ID", adjustment.ID)
	if err != nil {
		return err
	}
	lineID, err := parseID("ledger line ID", adjustment.LedgerLineID)
	if err != nil {
		return err
	}
	requestedBy, err := parseID("requester ID", adjustment.RequestedBy)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO adjustments
    (id, ledger_line_id, requested_amount, reason, status, requested_by, requested_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err = queryer(db, r.pool).Exec(ctx, q, adjID, lineID, adjustment.RequestedAmount,
		adjustment.Reason, adjustment.Status, requestedBy, adjustment.RequestedAt)
	if err != nil {
		return fmt.Errorf("create adjustment: %w", err)
	}
	return nil
}

// GetByID retrieves an adjustment by its ID
func (r *AdjustmentRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.Adjustment, error) {
	adjID, err := parseID("adjustment ID", id)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + adjustmentColumns + ` FROM adjustments WHERE id = $1`
	adj, err := scanAdjustment(queryer(db, r.pool).QueryRow(ctx, q, adjID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAdjustmentNotFound.WithDetail("adjustment_id", id)
		}
		return nil, fmt.Errorf("get adjustment by id: %w", err)
	}
	return adj, nil
}

// Decide transitions a PENDING adjustment to a terminal state. The status
// predicate makes the transition race-safe: the second of two racing
// deciders matches zero rows and receives ErrAlreadyDecided.
func (r *AdjustmentRepository) Decide(ctx context.Context, db ports.DBTX, id string, status models.AdjustmentStatus, approvedBy string, decidedAt time.Time) error {
	adjID, err := parseID("adjustment ID", id)
	if err != nil {
		return err
	}
	deciderID, err := parseID("approver ID", approvedBy)
	if err != nil {
		return err
	}

	const q = `
UPDATE adjustments
SET status = $2, approved_by = $3, decided_at = $4
WHERE id = $1 AND status = 'PENDING'
`
	tag, err := queryer(db, r.pool).Exec(ctx, q, adjID, status, deciderID, decidedAt)
	if err != nil {
		return fmt.Errorf("decide adjustment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyDecided.WithDetail("adjustment_id", id)
	}
	return nil
}

// ListByLedgerLine returns the line's adjustment history, newest first
func (r *AdjustmentRepository) ListByLedgerLine(ctx context.Context, db ports.DBTX, ledgerLineID string) ([]*models.Adjustment, error) {
	lineID, err := parseID("ledger line ID", ledgerLineID)
	if err != nil {
		return nil, err
	}

	q := `
SELECT ` + adjustmentColumns + `
FROM adjustments
WHERE ledger_line_id = $1
ORDER BY requested_at DESC
`
	rows, err := queryer(db, r.pool).Query(ctx, q, lineID)
	if err != nil {
		return nil, fmt.Errorf("list adjustments by ledger line: %w", err)
	}
	defer rows.Close()

	var adjustments []*models.Adjustment
	for rows.Next() {
		adj, err := scanAdjustment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		adjustments = append(adjustments, adj)
	}
	return adjustments, rows.Err()
}

// HasPending reports whether the ledger line has an open adjustment
func (r *AdjustmentRepository) HasPending(ctx context.Context, db ports.DBTX, ledgerLineID string) (bool, error) {
	lineID, err := parseID("ledger line ID", ledgerLineID)
	if err != nil {
		return false, err
	}

	const q = `SELECT EXISTS (SELECT 1 FROM adjustments WHERE ledger_line_id = $1 AND status = 'PENDING')`
	var exists bool
	if err := queryer(db, r.pool).QueryRow(ctx, q, lineID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check pending adjustment: %w", err)
	}
	return exists, nil
}
