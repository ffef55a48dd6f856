package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
)

// SettlementRepository implements ports.SettlementRepository
type SettlementRepository struct {
	pool ports.DBTX
}

// NewSettlementRepository creates a new settlement repository
func NewSettlementRepository(db ports.DBPort) *SettlementRepository {
	return &SettlementRepository{pool: db.GetDB()}
}

const statementColumns = `id, profile_id, period, total_gross, total_withholding, total_net,
       line_count, line_details, status, paid_at, created_at, updated_at`

func scanStatement(row pgx.Row) (*models.SettlementStatement, error) {
	var s models.SettlementStatement
	var details []byte
	var paidAt pgtype.Timestamptz
	if err := row.Scan(&s.ID, &s.ProfileID, &s.Period, &s.TotalGross, &s.TotalWithholding,
		&s.TotalNet, &s.LineCount, &details, &s.Status, &paidAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.PaidAt = timePtr(paidAt)
	if len(details) > 0 {
		if err := json.Unmarshal(details, &s.LineDetails); err != nil {
			return nil, fmt.Errorf("unmarshal line details: %w", err)
		}
	}
	return &s, nil
}

// Upsert writes a statement keyed by (profile_id, period). The caller holds
// the period advisory lock and hands in cumulative totals, so the conflict
// branch writes them through; PAID rows are never touched (the service
// refuses them first, the WHERE guard backstops it).
func (r *SettlementRepository) Upsert(ctx context.Context, db ports.DBTX, statement *models.SettlementStatement) error {
	stmtID, err := parseID("statement ID", statement.ID)
	if err != nil {
		return err
	}
	profileID, err := parseID("profile ID", statement.ProfileID)
	if err != nil {
		return err
	}
	details, err := json.Marshal(statement.LineDetails)
	if err != nil {
		return fmt.Errorf("marshal line details: %w", err)
	}

	const q = `
INSERT INTO settlement_statements
    (id, profile_id, period, total_gross, total_withholding, total_net,
     line_count, line_details, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
ON CONFLICT (profile_id, period) DO UPDATE
SET total_gross = EXCLUDED.total_gross,
    total_withholding = EXCLUDED.total_withholding,
    total_net = EXCLUDED.total_net,
    line_count = EXCLUDED.line_count,
    line_details = EXCLUDED.line_details,
    updated_at = now()
WHERE settlement_statements.status = 'PENDING'
`
	_, err = queryer(db, r.pool).Exec(ctx, q, stmtID, profileID, statement.Period,
		statement.TotalGross, statement.TotalWithholding, statement.TotalNet,
		statement.LineCount, details, statement.Status)
	if err != nil {
		return fmt.Errorf("upsert settlement statement: %w", err)
	}
	return nil
}

// GetByID retrieves a statement by its ID
func (r *SettlementRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.SettlementStatement, error) {
	stmtID, err := parseID("statement ID", id)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + statementColumns + ` FROM settlement_statements WHERE id = $1`
	stmt, err := scanStatement(queryer(db, r.pool).QueryRow(ctx, q, stmtID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStatementNotFound.WithDetail("statement_id", id)
		}
		return nil, fmt.Errorf("get statement by id: %w", err)
	}
	return stmt, nil
}

// GetByProfilePeriod retrieves the statement for one profile and period
func (r *SettlementRepository) GetByProfilePeriod(ctx context.Context, db ports.DBTX, profileID string, period models.Period) (*models.SettlementStatement, error) {
	pID, err := parseID("profile ID", profileID)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + statementColumns + ` FROM settlement_statements WHERE profile_id = $1 AND period = $2`
	stmt, err := scanStatement(queryer(db, r.pool).QueryRow(ctx, q, pID, period))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStatementNotFound.
				WithDetail("profile_id", profileID).
				WithDetail("period", period.String())
		}
		return nil, fmt.Errorf("get statement by profile and period: %w", err)
	}
	return stmt, nil
}

// ListByProfile lists a profile's statements with pagination, newest first
func (r *SettlementRepository) ListByProfile(ctx context.Context, db ports.DBTX, profileID string, limit, offset int32) ([]*models.SettlementStatement, error) {
	pID, err := parseID("profile ID", profileID)
	if err != nil {
		return nil, err
	}

	q := `
SELECT ` + statementColumns + `
FROM settlement_statements
WHERE profile_id = $1
ORDER BY period DESC
LIMIT $2 OFFSET $3
`
	rows, err := queryer(db, r.pool).Query(ctx, q, pID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list statements by profile: %w", err)
	}
	defer rows.Close()

	var statements []*models.SettlementStatement
	for rows.Next() {
		stmt, err := scanStatement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		statements = append(statements, stmt)
	}
	return statements, rows.Err()
}

// MarkPaid transitions a PENDING statement to PAID
func (r *SettlementRepository) MarkPaid(ctx context.Context, db ports.DBTX, id string) error {
	stmtID, err := parseID("statement ID", id)
	if err != nil {
		return err
	}

	const q = `
UPDATE settlement_statements
SET status = 'PAID', paid_at = now(), updated_at = now()
WHERE id = $1 AND status = 'PENDING'
`
	tag, err := queryer(db, r.pool).Exec(ctx, q, stmtID)
	if err != nil {
		return fmt.Errorf("mark statement paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStatementNotPending.WithDetail("statement_id", id)
	}
	return nil
}

// AcquirePeriodLock takes a transaction-scoped advisory lock keyed by
// (profile, period) so aggregation re-runs for the same profile and period
// serialize instead of double-counting. The lock releases on commit or
// rollback.
func (r *SettlementRepository) AcquirePeriodLock(ctx context.Context, db ports.DBTX, profileID string, period models.Period) error {
	const q = `SELECT pg_advisory_xact_lock(hashtext($1))`
	key := profileID + ":" + period.String()
	if _, err := queryer(db, r.pool).Exec(ctx, q, key); err != nil {
		return fmt.Errorf("acquire settlement period lock: %w", err)
	}
	return nil
}
