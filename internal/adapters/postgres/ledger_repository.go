package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
)

// LedgerRepository implements ports.LedgerRepository
type LedgerRepository struct {
	pool ports.DBTX
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db ports.DBPort) *LedgerRepository {
	return &LedgerRepository{pool: db.GetDB()}
}

const ledgerColumns = `id, sale_id, profile_id, role, gross_amount, commission_rate,
       withholding_rate, withholding_amount, net_amount, is_settled, created_at, updated_at`

func scanLedgerLine(row pgx.Row) (*models.LedgerLine, error) {
	var l models.LedgerLine
	var commissionRate, withholdingRate pgtype.Numeric
	if err := row.Scan(&l.ID, &l.SaleID, &l.ProfileID, &l.Role, &l.GrossAmount,
		&commissionRate, &withholdingRate, &l.WithholdingAmount, &l.NetAmount,
		&l.IsSettled, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if l.CommissionRate, err = numericToDecimal(commissionRate); err != nil {
		return nil, fmt.Errorf("convert commission rate: %w", err)
	}
	if l.WithholdingRate, err = numericToDecimal(withholdingRate); err != nil {
		return nil, fmt.Errorf("convert withholding rate: %w", err)
	}
	return &l, nil
}

// Create persists a new ledger line. The unique constraint on
// (sale_id, profile_id) serializes duplicate postings; the loser gets
// ErrConcurrentModification and re-reads the surviving line.
func (r *LedgerRepository) Create(ctx context.Context, db ports.DBTX, line *models.LedgerLine) error {
	lineID, err := parseID("ledger line ID", line.ID)
	if err != nil {
		return err
	}
	saleID, err := parseID("sale ID", line.SaleID)
	if err != nil {
		return err
	}
	profileID, err := parseID("profile ID", line.ProfileID)
	if err != nil {
		return err
	}
	commissionRate, err := decimalToNumeric(line.CommissionRate)
	if err != nil {
		return err
	}
	withholdingRate, err := decimalToNumeric(line.WithholdingRate)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO ledger_lines
    (id, sale_id, profile_id, role, gross_amount, commission_rate,
     withholding_rate, withholding_amount, net_amount, is_settled, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, now(), now())
`
	_, err = queryer(db, r.pool).Exec(ctx, q, lineID, saleID, profileID, line.Role,
		line.GrossAmount, commissionRate, withholdingRate, line.WithholdingAmount, line.NetAmount)
	if err != nil {
		if isUniqueViolation(err, "ledger_lines_sale_profile_key") {
			return domain.ErrConcurrentModification.
				WithDetail("sale_id", line.SaleID).
				WithDetail("profile_id", line.ProfileID)
		}
		return fmt.Errorf("create ledger line: %w", err)
	}
	return nil
}

// GetByID retrieves a ledger line by its ID
func (r *LedgerRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.LedgerLine, error) {
	return r.getByID(ctx, db, id, false)
}

// GetByIDForUpdate retrieves a ledger line and locks its row for the
// enclosing transaction
func (r *LedgerRepository) GetByIDForUpdate(ctx context.Context, db ports.DBTX, id string) (*models.LedgerLine, error) {
	return r.getByID(ctx, db, id, true)
}

func (r *LedgerRepository) getByID(ctx context.Context, db ports.DBTX, id string, forUpdate bool) (*models.LedgerLine, error) {
	lineID, err := parseID("ledger line ID", id)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + ledgerColumns + ` FROM ledger_lines WHERE id = $1`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	line, err := scanLedgerLine(queryer(db, r.pool).QueryRow(ctx, q, lineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLineNotFound.WithDetail("ledger_line_id", id)
		}
		return nil, fmt.Errorf("get ledger line by id: %w", err)
	}
	return line, nil
}

// ListBySale lists all commission lines for one sale
func (r *LedgerRepository) ListBySale(ctx context.Context, db ports.DBTX, saleID string) ([]*models.LedgerLine, error) {
	sID, err := parseID("sale ID", saleID)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + ledgerColumns + ` FROM ledger_lines WHERE sale_id = $1 ORDER BY role`
	return r.list(ctx, db, q, sID)
}

// ListByProfile lists a profile's lines with pagination, newest first
func (r *LedgerRepository) ListByProfile(ctx context.Context, db ports.DBTX, profileID string, limit, offset int32) ([]*models.LedgerLine, error) {
	pID, err := parseID("profile ID", profileID)
	if err != nil {
		return nil, err
	}

	q := `
SELECT ` + ledgerColumns + `
FROM ledger_lines
WHERE profile_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`
	return r.list(ctx, db, q, pID, limit, offset)
}

// ListSettleable returns the profile's unsettled lines dated within the
// period, excluding lines blocked by a PENDING adjustment. Rows are locked
// so concurrent settlement runs cannot double-count.
func (r *LedgerRepository) ListSettleable(ctx context.Context, db ports.DBTX, profileID string, period models.Period) ([]*models.LedgerLine, error) {
	pID, err := parseID("profile ID", profileID)
	if err != nil {
		return nil, err
	}
	start, end := period.Bounds()

	q := `
SELECT ` + ledgerColumns + `
FROM ledger_lines l
WHERE l.profile_id = $1
  AND l.is_settled = false
  AND l.created_at >= $2 AND l.created_at < $3
  AND NOT EXISTS (
        SELECT 1 FROM adjustments a
        WHERE a.ledger_line_id = l.id AND a.status = 'PENDING'
  )
ORDER BY l.created_at
FOR UPDATE OF l
`
	return r.list(ctx, db, q, pID, start, end)
}

// ListSettleableProfiles returns the distinct profiles with at least one
// settleable line in the period
func (r *LedgerRepository) ListSettleableProfiles(ctx context.Context, db ports.DBTX, period models.Period) ([]string, error) {
	start, end := period.Bounds()

	const q = `
SELECT DISTINCT l.profile_id
FROM ledger_lines l
WHERE l.is_settled = false
  AND l.created_at >= $1 AND l.created_at < $2
  AND NOT EXISTS (
        SELECT 1 FROM adjustments a
        WHERE a.ledger_line_id = l.id AND a.status = 'PENDING'
  )
ORDER BY l.profile_id
`
	rows, err := queryer(db, r.pool).Query(ctx, q, start, end)
	if err != nil {
		return nil, fmt.Errorf("list settleable profiles: %w", err)
	}
	defer rows.Close()

	var profiles []string
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan profile id: %w", err)
		}
		profiles = append(profiles, id.String())
	}
	return profiles, rows.Err()
}

// UpdateAmounts persists a recomputed gross/withholding/net triple
func (r *LedgerRepository) UpdateAmounts(ctx context.Context, db ports.DBTX, line *models.LedgerLine) error {
	lineID, err := parseID("ledger line ID", line.ID)
	if err != nil {
		return err
	}

	const q = `
UPDATE ledger_lines
SET gross_amount = $2, withholding_amount = $3, net_amount = $4, updated_at = now()
WHERE id = $1
`
	tag, err := queryer(db, r.pool).Exec(ctx, q, lineID,
		line.GrossAmount, line.WithholdingAmount, line.NetAmount)
	if err != nil {
		return fmt.Errorf("update ledger line amounts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLineNotFound.WithDetail("ledger_line_id", line.ID)
	}
	return nil
}

// MarkSettled flags the given lines as settled
func (r *LedgerRepository) MarkSettled(ctx context.Context, db ports.DBTX, lineIDs []string) error {
	if len(lineIDs) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(lineIDs))
	for i, raw := range lineIDs {
		id, err := parseID("ledger line ID", raw)
		if err != nil {
			return err
		}
		ids[i] = id
	}

	const q = `
UPDATE ledger_lines
SET is_settled = true, updated_at = now()
WHERE id = ANY($1)
`
	if _, err := queryer(db, r.pool).Exec(ctx, q, ids); err != nil {
		return fmt.Errorf("mark ledger lines settled: %w", err)
	}
	return nil
}

func (r *LedgerRepository) list(ctx context.Context, db ports.DBTX, q string, args ...interface{}) ([]*models.LedgerLine, error) {
	rows, err := queryer(db, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger lines: %w", err)
	}
	defer rows.Close()

	var lines []*models.LedgerLine
	for rows.Next() {
		line, err := scanLedgerLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
