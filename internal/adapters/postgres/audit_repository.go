package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
)

// AuditRepository implements ports.AuditRepository. Append-only: this file
// contains no update or delete statements.
type AuditRepository struct {
	pool ports.DBTX
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db ports.DBPort) *AuditRepository {
	return &AuditRepository{pool: db.GetDB()}
}

const auditColumns = `id, category, action, sale_id, ledger_line_id, actor_id, detail, created_at`

func scanAuditEntry(row pgx.Row) (*models.AuditEntry, error) {
	var e models.AuditEntry
	var saleID, lineID pgtype.UUID
	var detail []byte
	if err := row.Scan(&e.ID, &e.Category, &e.Action, &saleID, &lineID,
		&e.ActorID, &detail, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.SaleID = uuidToStringPtr(saleID)
	e.LedgerLineID = uuidToStringPtr(lineID)
	if len(detail) > 0 {
		if err := json.Unmarshal(detail, &e.Detail); err != nil {
			return nil, fmt.Errorf("unmarshal audit detail: %w", err)
		}
	}
	return &e, nil
}

// Append writes one audit entry. Must run inside the caller's transaction
// when it accompanies a ledger mutation.
func (r *AuditRepository) Append(ctx context.Context, db ports.DBTX, entry *models.AuditEntry) error {
	entryID, err := parseID("audit entry ID", entry.ID)
	if err != nil {
		return err
	}
	saleID, err := parseOptionalID("sale ID", entry.SaleID)
	if err != nil {
		return err
	}
	lineID, err := parseOptionalID("ledger line ID", entry.LedgerLineID)
	if err != nil {
		return err
	}

	var detail []byte
	if entry.Detail != nil {
		if detail, err = json.Marshal(entry.Detail); err != nil {
			return fmt.Errorf("marshal audit detail: %w", err)
		}
	} else {
		detail = []byte("{}")
	}

	const q = `
INSERT INTO audit_entries
    (id, category, action, sale_id, ledger_line_id, actor_id, detail, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
`
	_, err = queryer(db, r.pool).Exec(ctx, q, entryID, entry.Category, entry.Action,
		saleID, lineID, entry.ActorID, detail)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// ListBySale returns all audit entries referencing the sale, oldest first
func (r *AuditRepository) ListBySale(ctx context.Context, db ports.DBTX, saleID string) ([]*models.AuditEntry, error) {
	sID, err := parseID("sale ID", saleID)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + auditColumns + ` FROM audit_entries WHERE sale_id = $1 ORDER BY created_at`
	return r.list(ctx, db, q, sID)
}

// ListByCategory returns entries of one category with pagination, newest first
func (r *AuditRepository) ListByCategory(ctx context.Context, db ports.DBTX, category models.AuditCategory, limit, offset int32) ([]*models.AuditEntry, error) {
	q := `
SELECT ` + auditColumns + `
FROM audit_entries
WHERE category = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`
	return r.list(ctx, db, q, category, limit, offset)
}

func (r *AuditRepository) list(ctx context.Context, db ports.DBTX, q string, args ...interface{}) ([]*models.AuditEntry, error) {
	rows, err := queryer(db, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
