package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
)

// MockRelationshipService mocks ports.RelationshipService
type MockRelationshipService struct {
	mock.Mock
}

func (m *MockRelationshipService) ResolveManagerFor(ctx context.Context, agentID string) (*string, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *MockRelationshipService) IsActive(ctx context.Context, profileID string) (bool, error) {
	args := m.Called(ctx, profileID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRelationshipService) IsRelationActiveAt(ctx context.Context, managerID, agentID string, asOf time.Time) (bool, error) {
	args := m.Called(ctx, managerID, agentID, asOf)
	return args.Bool(0), args.Error(1)
}

func (m *MockRelationshipService) OpenRelation(ctx context.Context, managerID, agentID, actorID string, from time.Time) (*models.AffiliateRelation, error) {
	args := m.Called(ctx, managerID, agentID, actorID, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AffiliateRelation), args.Error(1)
}

func (m *MockRelationshipService) CloseRelation(ctx context.Context, managerID, agentID, actorID string, at time.Time) error {
	args := m.Called(ctx, managerID, agentID, actorID, at)
	return args.Error(0)
}

func (m *MockRelationshipService) HistoryForAgent(ctx context.Context, agentID string) ([]*models.AffiliateRelation, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AffiliateRelation), args.Error(1)
}

// MockSettlementService mocks ports.SettlementService
type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) Run(ctx context.Context, period models.Period) (*ports.BatchResult, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.BatchResult), args.Error(1)
}

func (m *MockSettlementService) MarkPaid(ctx context.Context, statementID, actorID string) error {
	args := m.Called(ctx, statementID, actorID)
	return args.Error(0)
}

func (m *MockSettlementService) StatementForProfile(ctx context.Context, profileID string, period models.Period) (*models.SettlementStatement, error) {
	args := m.Called(ctx, profileID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettlementStatement), args.Error(1)
}

func (m *MockSettlementService) StatementsByProfile(ctx context.Context, profileID string, limit, offset int32) ([]*models.SettlementStatement, error) {
	args := m.Called(ctx, profileID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SettlementStatement), args.Error(1)
}

// MockLedgerService is a testify mock for ports.LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) PostSale(ctx context.Context, sale *models.Sale) ([]*models.LedgerLine, error) {
	args := m.Called(ctx, sale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerLine), args.Error(1)
}

func (m *MockLedgerService) LinesForSale(ctx context.Context, saleID string) ([]*models.LedgerLine, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerLine), args.Error(1)
}

func (m *MockLedgerService) LinesForProfile(ctx context.Context, profileID string, limit, offset int32) ([]*models.LedgerLine, error) {
	args := m.Called(ctx, profileID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerLine), args.Error(1)
}

// MockAdjustmentService is a testify mock for ports.AdjustmentService
type MockAdjustmentService struct {
	mock.Mock
}

func (m *MockAdjustmentService) Request(ctx context.Context, ledgerLineID string, delta int64, reason, requestedBy string) (*models.Adjustment, error) {
	args := m.Called(ctx, ledgerLineID, delta, reason, requestedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Adjustment), args.Error(1)
}

func (m *MockAdjustmentService) Decide(ctx context.Context, adjustmentID string, outcome models.AdjustmentOutcome, approvedBy string) (*models.Adjustment, error) {
	args := m.Called(ctx, adjustmentID, outcome, approvedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Adjustment), args.Error(1)
}

func (m *MockAdjustmentService) HistoryForLine(ctx context.Context, ledgerLineID string) ([]*models.Adjustment, error) {
	args := m.Called(ctx, ledgerLineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Adjustment), args.Error(1)
}
