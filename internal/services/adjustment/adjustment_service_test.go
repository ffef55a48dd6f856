package adjustment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/services/adjustment"
	"github.com/tourvia/commission-service/internal/testutil/fixtures"
	"github.com/tourvia/commission-service/internal/testutil/mocks"
)

type adjustmentServiceMocks struct {
	db         *mocks.MockDBPort
	ledgerRepo *mocks.MockLedgerRepository
	adjRepo    *mocks.MockAdjustmentRepository
	auditRepo  *mocks.MockAuditRepository
}

func newAdjustmentService(t *testing.T) (*adjustment.Service, *adjustmentServiceMocks) {
	t.Helper()
	m := &adjustmentServiceMocks{
		db:         new(mocks.MockDBPort),
		ledgerRepo: new(mocks.MockLedgerRepository),
		adjRepo:    new(mocks.MockAdjustmentRepository),
		auditRepo:  new(mocks.MockAuditRepository),
	}
	svc := adjustment.NewService(m.db, m.ledgerRepo, m.adjRepo, m.auditRepo, mocks.NopLogger{})
	return svc, m
}

func TestRequest_CreatesPendingAdjustment(t *testing.T) {
	svc, m := newAdjustmentService(t)
	line := fixtures.LedgerLine("sale-1", "profile-1", models.RoleAgent, 100_000)

	m.ledgerRepo.On("GetByID", mock.Anything, nil, line.ID).Return(line, nil)
	m.adjRepo.On("Create", mock.Anything, nil, mock.Anything).Return(nil)

	adj, err := svc.Request(context.Background(), line.ID, 10_000, "missed upsell credit", "finance-kim")
	require.NoError(t, err)
	assert.Equal(t, models.AdjustmentPending, adj.Status)
	assert.Equal(t, int64(10_000), adj.RequestedAmount)
	assert.Equal(t, "finance-kim", adj.RequestedBy)
	assert.Nil(t, adj.ApprovedBy)
	assert.Nil(t, adj.DecidedAt)
}

func TestRequest_Validation(t *testing.T) {
	tests := []struct {
		name        string
		delta       int64
		reason      string
		requestedBy string
	}{
		{"zero delta", 0, "reason", "finance-kim"},
		{"missing requester", 10_000, "reason", ""},
		{"missing reason", 10_000, "", "finance-kim"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAdjustmentService(t)

			_, err := svc.Request(context.Background(), "line-1", tt.delta, tt.reason, tt.requestedBy)
			require.Error(t, err)
			assert.True(t, domain.IsValidationError(err), "want validation error, got %v", err)
			m.ledgerRepo.AssertNotCalled(t, "GetByID")
			m.adjRepo.AssertNotCalled(t, "Create")
		})
	}
}

func TestRequest_SettledLineIsFrozen(t *testing.T) {
	svc, m := newAdjustmentService(t)
	line := fixtures.LedgerLine("sale-1", "profile-1", models.RoleAgent, 100_000)
	line.IsSettled = true

	m.ledgerRepo.On("GetByID", mock.Anything, nil, line.ID).Return(line, nil)

	_, err := svc.Request(context.Background(), line.ID, 10_000, "late correction", "finance-kim")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeLineSettled, domain.GetErrorCode(err))
	m.adjRepo.AssertNotCalled(t, "Create")
}

func TestRequest_RejectsNegativeGross(t *testing.T) {
	svc, m := newAdjustmentService(t)
	line := fixtures.LedgerLine("sale-1", "profile-1", models.RoleAgent, 100_000)

	m.ledgerRepo.On("GetByID", mock.Anything, nil, line.ID).Return(line, nil)

	_, err := svc.Request(context.Background(), line.ID, -100_001, "clawback", "finance-kim")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeValidationAmountInvalid, domain.GetErrorCode(err))
	m.adjRepo.AssertNotCalled(t, "Create")

	// a clawback down to exactly zero is allowed
	m.adjRepo.On("Create", mock.Anything, nil, mock.Anything).Return(nil)
	adj, err := svc.Request(context.Background(), line.ID, -100_000, "clawback", "finance-kim")
	require.NoError(t, err)
	assert.Equal(t, int64(-100_000), adj.RequestedAmount)
}

func TestDecide_ApproveRecomputesLine(t *testing.T) {
	svc, m := newAdjustmentService(t)
	line := fixtures.LedgerLine("sale-1", "profile-1", models.RoleAgent, 100_000)
	adj := fixtures.PendingAdjustment(line.ID, 10_000, "finance-kim")

	m.adjRepo.On("GetByID", mock.Anything, nil, adj.ID).Return(adj, nil)
	m.db.ExpectTransaction()
	m.adjRepo.On("Decide", mock.Anything, mock.Anything, adj.ID,
		models.AdjustmentApproved, "finance-lee", mock.Anything).Return(nil)
	m.ledgerRepo.On("GetByIDForUpdate", mock.Anything, mock.Anything, line.ID).Return(line, nil)

	var updated *models.LedgerLine
	m.ledgerRepo.On("UpdateAmounts", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			updated = args.Get(2).(*models.LedgerLine)
		}).Return(nil)

	var entry *models.AuditEntry
	m.auditRepo.On("Append", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			entry = args.Get(2).(*models.AuditEntry)
		}).Return(nil)

	decided, err := svc.Decide(context.Background(), adj.ID, models.OutcomeApprove, "finance-lee")
	require.NoError(t, err)
	assert.Equal(t, models.AdjustmentApproved, decided.Status)
	require.NotNil(t, decided.ApprovedBy)
	assert.Equal(t, "finance-lee", *decided.ApprovedBy)
	assert.NotNil(t, decided.DecidedAt)

	// rates are untouched; the amounts re-derive from the new gross
	require.NotNil(t, updated)
	assert.Equal(t, int64(110_000), updated.GrossAmount)
	assert.Equal(t, int64(3_630), updated.WithholdingAmount)
	assert.Equal(t, int64(106_370), updated.NetAmount)

	require.NotNil(t, entry)
	assert.Equal(t, models.AuditAdjustmentApplied, entry.Category)
	assert.Equal(t, "finance-lee", entry.ActorID)
}

func TestDecide_RejectLeavesLineUntouched(t *testing.T) {
	svc, m := newAdjustmentService(t)
	adj := fixtures.PendingAdjustment("line-1", 10_000, "finance-kim")

	m.adjRepo.On("GetByID", mock.Anything, nil, adj.ID).Return(adj, nil)
	m.db.ExpectTransaction()
	m.adjRepo.On("Decide", mock.Anything, mock.Anything, adj.ID,
		models.AdjustmentRejected, "finance-lee", mock.Anything).Return(nil)

	var entry *models.AuditEntry
	m.auditRepo.On("Append", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			entry = args.Get(2).(*models.AuditEntry)
		}).Return(nil)

	decided, err := svc.Decide(context.Background(), adj.ID, models.OutcomeReject, "finance-lee")
	require.NoError(t, err)
	assert.Equal(t, models.AdjustmentRejected, decided.Status)

	m.ledgerRepo.AssertNotCalled(t, "GetByIDForUpdate")
	m.ledgerRepo.AssertNotCalled(t, "UpdateAmounts")
	require.NotNil(t, entry)
	assert.Equal(t, models.AuditAdjustmentRejected, entry.Category)
}

func TestDecide_SelfApprovalForbidden(t *testing.T) {
	svc, m := newAdjustmentService(t)
	adj := fixtures.PendingAdjustment("line-1", 10_000, "finance-kim")

	m.adjRepo.On("GetByID", mock.Anything, nil, adj.ID).Return(adj, nil)

	for _, outcome := range []models.AdjustmentOutcome{models.OutcomeApprove, models.OutcomeReject} {
		_, err := svc.Decide(context.Background(), adj.ID, outcome, "finance-kim")
		require.Error(t, err)
		assert.Equal(t, domain.ErrorCodeSelfApprovalForbidden, domain.GetErrorCode(err))
	}
	m.db.AssertNotCalled(t, "WithTransaction")
}

func TestDecide_AlreadyDecided(t *testing.T) {
	svc, m := newAdjustmentService(t)
	adj := fixtures.PendingAdjustment("line-1", 10_000, "finance-kim")
	adj.Status = models.AdjustmentApproved
	adj.ApprovedBy = fixtures.StringPtr("finance-choi")
	adj.DecidedAt = fixtures.TimePtr(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	m.adjRepo.On("GetByID", mock.Anything, nil, adj.ID).Return(adj, nil)

	_, err := svc.Decide(context.Background(), adj.ID, models.OutcomeReject, "finance-lee")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeAlreadyDecided, domain.GetErrorCode(err))
	m.db.AssertNotCalled(t, "WithTransaction")
}

func TestDecide_ApproveFailsWhenLineSettledMeanwhile(t *testing.T) {
	svc, m := newAdjustmentService(t)
	line := fixtures.LedgerLine("sale-1", "profile-1", models.RoleAgent, 100_000)
	line.IsSettled = true
	adj := fixtures.PendingAdjustment(line.ID, 10_000, "finance-kim")

	m.adjRepo.On("GetByID", mock.Anything, nil, adj.ID).Return(adj, nil)
	m.db.ExpectTransaction()
	m.adjRepo.On("Decide", mock.Anything, mock.Anything, adj.ID,
		models.AdjustmentApproved, "finance-lee", mock.Anything).Return(nil)
	m.ledgerRepo.On("GetByIDForUpdate", mock.Anything, mock.Anything, line.ID).Return(line, nil)

	_, err := svc.Decide(context.Background(), adj.ID, models.OutcomeApprove, "finance-lee")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeLineSettled, domain.GetErrorCode(err))
	m.ledgerRepo.AssertNotCalled(t, "UpdateAmounts")
}

func TestDecide_InvalidOutcome(t *testing.T) {
	svc, m := newAdjustmentService(t)

	_, err := svc.Decide(context.Background(), "adj-1", models.AdjustmentOutcome("MAYBE"), "finance-lee")
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	m.adjRepo.AssertNotCalled(t, "GetByID")
}

func TestHistoryForLine_UnknownLine(t *testing.T) {
	svc, m := newAdjustmentService(t)

	m.ledgerRepo.On("GetByID", mock.Anything, nil, "missing").Return(nil, domain.ErrLineNotFound)

	_, err := svc.HistoryForLine(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeLineNotFound, domain.GetErrorCode(err))
	m.adjRepo.AssertNotCalled(t, "ListByLedgerLine")
}
