// Package mocks provides shared mock implementations for testing.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
)

// MockProfileRepository mocks ports.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.AffiliateProfile, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AffiliateProfile), args.Error(1)
}

func (m *MockProfileRepository) Upsert(ctx context.Context, db ports.DBTX, profile *models.AffiliateProfile) error {
	args := m.Called(ctx, db, profile)
	return args.Error(0)
}

// MockRelationRepository mocks ports.RelationRepository
type MockRelationRepository struct {
	mock.Mock
}

func (m *MockRelationRepository) Create(ctx context.Context, db ports.DBTX, relation *models.AffiliateRelation) error {
	args := m.Called(ctx, db, relation)
	return args.Error(0)
}

func (m *MockRelationRepository) Close(ctx context.Context, db ports.DBTX, managerID, agentID string, at time.Time) error {
	args := m.Called(ctx, db, managerID, agentID, at)
	return args.Error(0)
}

func (m *MockRelationRepository) GetActiveByAgent(ctx context.Context, db ports.DBTX, agentID string) (*models.AffiliateRelation, error) {
	args := m.Called(ctx, db, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AffiliateRelation), args.Error(1)
}

func (m *MockRelationRepository) GetAt(ctx context.Context, db ports.DBTX, managerID, agentID string, at time.Time) (*models.AffiliateRelation, error) {
	args := m.Called(ctx, db, managerID, agentID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AffiliateRelation), args.Error(1)
}

func (m *MockRelationRepository) ListByAgent(ctx context.Context, db ports.DBTX, agentID string) ([]*models.AffiliateRelation, error) {
	args := m.Called(ctx, db, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AffiliateRelation), args.Error(1)
}

// MockSaleRepository mocks ports.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Upsert(ctx context.Context, db ports.DBTX, sale *models.Sale) error {
	args := m.Called(ctx, db, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.Sale, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sale), args.Error(1)
}

func (m *MockSaleRepository) ListByAgent(ctx context.Context, db ports.DBTX, agentID string, limit, offset int32) ([]*models.Sale, error) {
	args := m.Called(ctx, db, agentID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Sale), args.Error(1)
}

// MockLedgerRepository mocks ports.LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, db ports.DBTX, line *models.LedgerLine) error {
	args := m.Called(ctx, db, line)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.LedgerLine, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerLine), args.Error(1)
}

func (m *MockLedgerRepository) GetByIDForUpdate(ctx context.Context, db ports.DBTX, id string) (*models.LedgerLine, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerLine), args.Error(1)
}

func (m *MockLedgerRepository) ListBySale(ctx context.Context, db ports.DBTX, saleID string) ([]*models.LedgerLine, error) {
	args := m.Called(ctx, db, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerLine), args.Error(1)
}

func (m *MockLedgerRepository) ListByProfile(ctx context.Context, db ports.DBTX, profileID string, limit, offset int32) ([]*models.LedgerLine, error) {
	args := m.Called(ctx, db, profileID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerLine), args.Error(1)
}

func (m *MockLedgerRepository) ListSettleable(ctx context.Context, db ports.DBTX, profileID string, period models.Period) ([]*models.LedgerLine, error) {
	args := m.Called(ctx, db, profileID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerLine), args.Error(1)
}

func (m *MockLedgerRepository) ListSettleableProfiles(ctx context.Context, db ports.DBTX, period models.Period) ([]string, error) {
	args := m.Called(ctx, db, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockLedgerRepository) UpdateAmounts(ctx context.Context, db ports.DBTX, line *models.LedgerLine) error {
	args := m.Called(ctx, db, line)
	return args.Error(0)
}

func (m *MockLedgerRepository) MarkSettled(ctx context.Context, db ports.DBTX, lineIDs []string) error {
	args := m.Called(ctx, db, lineIDs)
	return args.Error(0)
}

// MockAdjustmentRepository mocks ports.AdjustmentRepository
type MockAdjustmentRepository struct {
	mock.Mock
}

func (m *MockAdjustmentRepository) Create(ctx context.Context, db ports.DBTX, adjustment *models.Adjustment) error {
	args := m.Called(ctx, db, adjustment)
	return args.Error(0)
}

func (m *MockAdjustmentRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.Adjustment, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Adjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) Decide(ctx context.Context, db ports.DBTX, id string, status models.AdjustmentStatus, approvedBy string, decidedAt time.Time) error {
	args := m.Called(ctx, db, id, status, approvedBy, decidedAt)
	return args.Error(0)
}

func (m *MockAdjustmentRepository) ListByLedgerLine(ctx context.Context, db ports.DBTX, ledgerLineID string) ([]*models.Adjustment, error) {
	args := m.Called(ctx, db, ledgerLineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Adjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) HasPending(ctx context.Context, db ports.DBTX, ledgerLineID string) (bool, error) {
	args := m.Called(ctx, db, ledgerLineID)
	return args.Bool(0), args.Error(1)
}

// MockSettlementRepository mocks ports.SettlementRepository
type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) Upsert(ctx context.Context, db ports.DBTX, statement *models.SettlementStatement) error {
	args := m.Called(ctx, db, statement)
	return args.Error(0)
}

func (m *MockSettlementRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.SettlementStatement, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettlementStatement), args.Error(1)
}

func (m *MockSettlementRepository) GetByProfilePeriod(ctx context.Context, db ports.DBTX, profileID string, period models.Period) (*models.SettlementStatement, error) {
	args := m.Called(ctx, db, profileID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettlementStatement), args.Error(1)
}

func (m *MockSettlementRepository) ListByProfile(ctx context.Context, db ports.DBTX, profileID string, limit, offset int32) ([]*models.SettlementStatement, error) {
	args := m.Called(ctx, db, profileID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SettlementStatement), args.Error(1)
}

func (m *MockSettlementRepository) MarkPaid(ctx context.Context, db ports.DBTX, id string) error {
	args := m.Called(ctx, db, id)
	return args.Error(0)
}

func (m *MockSettlementRepository) AcquirePeriodLock(ctx context.Context, db ports.DBTX, profileID string, period models.Period) error {
	args := m.Called(ctx, db, profileID, period)
	return args.Error(0)
}

// MockAuditRepository mocks ports.AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, db ports.DBTX, entry *models.AuditEntry) error {
	args := m.Called(ctx, db, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) ListBySale(ctx context.Context, db ports.DBTX, saleID string) ([]*models.AuditEntry, error) {
	args := m.Called(ctx, db, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditEntry), args.Error(1)
}

func (m *MockAuditRepository) ListByCategory(ctx context.Context, db ports.DBTX, category models.AuditCategory, limit, offset int32) ([]*models.AuditEntry, error) {
	args := m.Called(ctx, db, category, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditEntry), args.Error(1)
}
