package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
)

// SaleRepository implements ports.SaleRepository
type SaleRepository struct {
	pool ports.DBTX
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db ports.DBPort) *SaleRepository {
	return &SaleRepository{pool: db.GetDB()}
}

const saleColumns = `id, product_code, product_category, amount, agent_id, manager_id, sale_date, status, created_at, updated_at`

func scanSale(row pgx.Row) (*models.Sale, error) {
	var s models.Sale
	var managerID pgtype.UUID
	if err := row.Scan(&s.ID, &s.ProductCode, &s.ProductCategory, &s.Amount,
		&s.AgentID, &managerID, &s.SaleDate, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.ManagerID = uuidToStringPtr(managerID)
	return &s, nil
}

// Upsert records a sale-completion event. A sale that already reached
// COMPLETED is immutable: the conflict branch refuses to touch it.
func (r *SaleRepository) Upsert(ctx context.Context, db ports.DBTX, sale *models.Sale) error {
	saleID, err := parseID("sale ID", sale.ID)
	if err != nil {
		return err
	}
	agentID, err := parseID("agent ID", sale.AgentID)
	if err != nil {
		return err
	}
	managerID, err := parseOptionalID("manager ID", sale.ManagerID)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO sales
    (id, product_code, product_category, amount, agent_id, manager_id, sale_date, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
ON CONFLICT (id) DO UPDATE
SET status = EXCLUDED.status,
    updated_at = now()
WHERE sales.status <> 'COMPLETED'
`
	_, err = queryer(db, r.pool).Exec(ctx, q, saleID, sale.ProductCode, sale.ProductCategory,
		sale.Amount, agentID, managerID, sale.SaleDate, sale.Status)
	if err != nil {
		return fmt.Errorf("upsert sale: %w", err)
	}
	return nil
}

// GetByID retrieves a sale by its ID
func (r *SaleRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.Sale, error) {
	saleID, err := parseID("sale ID", id)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	sale, err := scanSale(queryer(db, r.pool).QueryRow(ctx, q, saleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSaleNotFound.WithDetail("sale_id", id)
		}
		return nil, fmt.Errorf("get sale by id: %w", err)
	}
	return sale, nil
}

// ListByAgent lists an agent's sales with pagination, newest first
func (r *SaleRepository) ListByAgent(ctx context.Context, db ports.DBTX, agentID string, limit, offset int32) ([]*models.Sale, error) {
	aID, err := parseID("agent ID", agentID)
	if err != nil {
		return nil, err
	}

	q := `
SELECT ` + saleColumns + `
FROM sales
WHERE agent_id = $1
ORDER BY sale_date DESC
LIMIT $2 OFFSET $3
`
	rows, err := queryer(db, r.pool).Query(ctx, q, aID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales by agent: %w", err)
	}
	defer rows.Close()

	var sales []*models.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}
