package settlement_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/services/settlement"
	"github.com/tourvia/commission-service/internal/testutil/fixtures"
	"github.com/tourvia/commission-service/internal/testutil/mocks"
)

const testPeriod = models.Period("2026-03")

type settlementServiceMocks struct {
	db             *mocks.MockDBPort
	ledgerRepo     *mocks.MockLedgerRepository
	settlementRepo *mocks.MockSettlementRepository
	auditRepo      *mocks.MockAuditRepository
}

func newSettlementService(t *testing.T) (*settlement.Service, *settlementServiceMocks) {
	t.Helper()
	m := &settlementServiceMocks{
		db:             new(mocks.MockDBPort),
		ledgerRepo:     new(mocks.MockLedgerRepository),
		settlementRepo: new(mocks.MockSettlementRepository),
		auditRepo:      new(mocks.MockAuditRepository),
	}
	svc := settlement.NewService(m.db, m.ledgerRepo, m.settlementRepo, m.auditRepo, 2, mocks.NopLogger{})
	return svc, m
}

func TestRun_AggregatesProfileLines(t *testing.T) {
	svc, m := newSettlementService(t)

	lineA := fixtures.LedgerLine("sale-1", "profile-1", models.RoleAgent, 100_000)
	lineB := fixtures.LedgerLine("sale-2", "profile-1", models.RoleAgent, 50_000)

	m.ledgerRepo.On("ListSettleableProfiles", mock.Anything, nil, testPeriod).
		Return([]string{"profile-1"}, nil)
	m.db.ExpectTransaction()
	m.settlementRepo.On("AcquirePeriodLock", mock.Anything, mock.Anything, "profile-1", testPeriod).
		Return(nil)
	m.ledgerRepo.On("ListSettleable", mock.Anything, mock.Anything, "profile-1", testPeriod).
		Return([]*models.LedgerLine{lineA, lineB}, nil)
	m.settlementRepo.On("GetByProfilePeriod", mock.Anything, mock.Anything, "profile-1", testPeriod).
		Return(nil, domain.ErrStatementNotFound)

	var statement *models.SettlementStatement
	m.settlementRepo.On("Upsert", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			statement = args.Get(2).(*models.SettlementStatement)
		}).Return(nil)
	m.ledgerRepo.On("MarkSettled", mock.Anything, mock.Anything, []string{lineA.ID, lineB.ID}).
		Return(nil)
	m.auditRepo.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	batch, err := svc.Run(context.Background(), testPeriod)
	require.NoError(t, err)
	require.Len(t, batch.Succeeded, 1)
	assert.Empty(t, batch.Failed)

	require.NotNil(t, statement)
	assert.Equal(t, "profile-1", statement.ProfileID)
	assert.Equal(t, testPeriod, statement.Period)
	assert.Equal(t, models.StatementPending, statement.Status)
	assert.Equal(t, int32(2), statement.LineCount)
	// 100,000 + 50,000 gross, 3,300 + 1,650 withholding
	assert.Equal(t, int64(150_000), statement.TotalGross)
	assert.Equal(t, int64(4_950), statement.TotalWithholding)
	assert.Equal(t, int64(145_050), statement.TotalNet)
	assert.Len(t, statement.LineDetails, 2)

	assert.Equal(t, statement.ID, batch.Succeeded[0].StatementID)
	assert.Equal(t, statement.TotalNet, batch.Succeeded[0].TotalNet)
}

func TestRun_PartialFailureIsolatedPerProfile(t *testing.T) {
	svc, m := newSettlementService(t)

	good := fixtures.LedgerLine("sale-1", "profile-ok", models.RoleAgent, 100_000)

	m.ledgerRepo.On("ListSettleableProfiles", mock.Anything, nil, testPeriod).
		Return([]string{"profile-ok", "profile-bad"}, nil)
	m.db.ExpectTransaction()
	m.settlementRepo.On("AcquirePeriodLock", mock.Anything, mock.Anything, "profile-ok", testPeriod).
		Return(nil)
	m.settlementRepo.On("AcquirePeriodLock", mock.Anything, mock.Anything, "profile-bad", testPeriod).
		Return(errors.New("lock wait timeout"))
	m.ledgerRepo.On("ListSettleable", mock.Anything, mock.Anything, "profile-ok", testPeriod).
		Return([]*models.LedgerLine{good}, nil)
	m.settlementRepo.On("GetByProfilePeriod", mock.Anything, mock.Anything, "profile-ok", testPeriod).
		Return(nil, domain.ErrStatementNotFound)
	m.settlementRepo.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.ledgerRepo.On("MarkSettled", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.auditRepo.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	batch, err := svc.Run(context.Background(), testPeriod)
	require.NoError(t, err, "one bad profile must not fail the batch")
	require.Len(t, batch.Succeeded, 1)
	require.Len(t, batch.Failed, 1)

	assert.Equal(t, "profile-ok", batch.Succeeded[0].ProfileID)
	failed := batch.Failed[0]
	assert.Equal(t, "profile-bad", failed.ProfileID)
	assert.Equal(t, domain.ErrorCodeAggregationPartial, domain.GetErrorCode(failed.Err))
}

func TestRun_NoProfilesIsEmptyBatch(t *testing.T) {
	svc, m := newSettlementService(t)

	m.ledgerRepo.On("ListSettleableProfiles", mock.Anything, nil, testPeriod).
		Return([]string{}, nil)

	batch, err := svc.Run(context.Background(), testPeriod)
	require.NoError(t, err)
	assert.Empty(t, batch.Succeeded)
	assert.Empty(t, batch.Failed)
	m.db.AssertNotCalled(t, "WithTransaction")
}

func TestRun_EmptyLinesUnderLockIsNoOp(t *testing.T) {
	// The profile list and the per-profile transaction race against
	// concurrent runs; an empty selection under the advisory lock means
	// another run already settled the profile.
	svc, m := newSettlementService(t)

	m.ledgerRepo.On("ListSettleableProfiles", mock.Anything, nil, testPeriod).
		Return([]string{"profile-1"}, nil)
	m.db.ExpectTransaction()
	m.settlementRepo.On("AcquirePeriodLock", mock.Anything, mock.Anything, "profile-1", testPeriod).
		Return(nil)
	m.ledgerRepo.On("ListSettleable", mock.Anything, mock.Anything, "profile-1", testPeriod).
		Return([]*models.LedgerLine{}, nil)

	batch, err := svc.Run(context.Background(), testPeriod)
	require.NoError(t, err)
	require.Len(t, batch.Succeeded, 1)
	assert.Empty(t, batch.Succeeded[0].StatementID)
	assert.Zero(t, batch.Succeeded[0].LineCount)

	m.settlementRepo.AssertNotCalled(t, "Upsert")
	m.ledgerRepo.AssertNotCalled(t, "MarkSettled")
	m.auditRepo.AssertNotCalled(t, "Append")
}

func TestRun_LateLinesExtendExistingStatement(t *testing.T) {
	// A line freed after the first run, for example by a decided adjustment,
	// settles on the next run. The statement must keep the first run's
	// totals and grow by the late line, not be rebuilt from it alone.
	svc, m := newSettlementService(t)

	late := fixtures.LedgerLine("sale-3", "profile-1", models.RoleAgent, 20_000)
	existing := &models.SettlementStatement{
		ID:               "stmt-existing",
		ProfileID:        "profile-1",
		Period:           testPeriod,
		Status:           models.StatementPending,
		TotalGross:       150_000,
		TotalWithholding: 4_950,
		TotalNet:         145_050,
		LineCount:        2,
		LineDetails: []models.StatementLine{
			{LedgerLineID: "line-a", SaleID: "sale-1", GrossAmount: 100_000, WithholdingAmount: 3_300, NetAmount: 96_700},
			{LedgerLineID: "line-b", SaleID: "sale-2", GrossAmount: 50_000, WithholdingAmount: 1_650, NetAmount: 48_350},
		},
	}

	m.ledgerRepo.On("ListSettleableProfiles", mock.Anything, nil, testPeriod).
		Return([]string{"profile-1"}, nil)
	m.db.ExpectTransaction()
	m.settlementRepo.On("AcquirePeriodLock", mock.Anything, mock.Anything, "profile-1", testPeriod).
		Return(nil)
	m.ledgerRepo.On("ListSettleable", mock.Anything, mock.Anything, "profile-1", testPeriod).
		Return([]*models.LedgerLine{late}, nil)
	m.settlementRepo.On("GetByProfilePeriod", mock.Anything, mock.Anything, "profile-1", testPeriod).
		Return(existing, nil)

	var statement *models.SettlementStatement
	m.settlementRepo.On("Upsert", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			statement = args.Get(2).(*models.SettlementStatement)
		}).Return(nil)
	m.ledgerRepo.On("MarkSettled", mock.Anything, mock.Anything, []string{late.ID}).
		Return(nil)
	m.auditRepo.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	batch, err := svc.Run(context.Background(), testPeriod)
	require.NoError(t, err)
	require.Len(t, batch.Succeeded, 1)

	require.NotNil(t, statement)
	assert.Equal(t, "stmt-existing", statement.ID)
	// 150,000 + 20,000 gross, 4,950 + 660 withholding
	assert.Equal(t, int64(170_000), statement.TotalGross)
	assert.Equal(t, int64(5_610), statement.TotalWithholding)
	assert.Equal(t, int64(164_390), statement.TotalNet)
	assert.Equal(t, int32(3), statement.LineCount)
	assert.Len(t, statement.LineDetails, 3)
}

func TestRun_RefusesToSettleIntoPaidStatement(t *testing.T) {
	svc, m := newSettlementService(t)

	late := fixtures.LedgerLine("sale-3", "profile-1", models.RoleAgent, 20_000)
	paid := &models.SettlementStatement{
		ID:        "stmt-paid",
		ProfileID: "profile-1",
		Period:    testPeriod,
		Status:    models.StatementPaid,
		TotalNet:  145_050,
	}

	m.ledgerRepo.On("ListSettleableProfiles", mock.Anything, nil, testPeriod).
		Return([]string{"profile-1"}, nil)
	m.db.ExpectTransaction()
	m.settlementRepo.On("AcquirePeriodLock", mock.Anything, mock.Anything, "profile-1", testPeriod).
		Return(nil)
	m.ledgerRepo.On("ListSettleable", mock.Anything, mock.Anything, "profile-1", testPeriod).
		Return([]*models.LedgerLine{late}, nil)
	m.settlementRepo.On("GetByProfilePeriod", mock.Anything, mock.Anything, "profile-1", testPeriod).
		Return(paid, nil)

	batch, err := svc.Run(context.Background(), testPeriod)
	require.NoError(t, err)
	require.Len(t, batch.Failed, 1)
	assert.Equal(t, domain.ErrorCodeAggregationPartial, domain.GetErrorCode(batch.Failed[0].Err))

	m.settlementRepo.AssertNotCalled(t, "Upsert")
	m.ledgerRepo.AssertNotCalled(t, "MarkSettled")
	m.auditRepo.AssertNotCalled(t, "Append")
}

func TestMarkPaid_RecordsAudit(t *testing.T) {
	svc, m := newSettlementService(t)
	statement := &models.SettlementStatement{
		ID:        "stmt-1",
		ProfileID: "profile-1",
		Period:    testPeriod,
		Status:    models.StatementPending,
		TotalNet:  145_050,
	}

	m.settlementRepo.On("GetByID", mock.Anything, nil, "stmt-1").Return(statement, nil)
	m.db.ExpectTransaction()
	m.settlementRepo.On("MarkPaid", mock.Anything, mock.Anything, "stmt-1").Return(nil)

	var entry *models.AuditEntry
	m.auditRepo.On("Append", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			entry = args.Get(2).(*models.AuditEntry)
		}).Return(nil)

	err := svc.MarkPaid(context.Background(), "stmt-1", "finance-lee")
	require.NoError(t, err)

	require.NotNil(t, entry)
	assert.Equal(t, models.AuditStatementPaid, entry.Category)
	assert.Equal(t, "finance-lee", entry.ActorID)
	assert.Equal(t, "stmt-1", entry.Detail["statement_id"])
}

func TestMarkPaid_RequiresActor(t *testing.T) {
	svc, m := newSettlementService(t)

	err := svc.MarkPaid(context.Background(), "stmt-1", "")
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	m.settlementRepo.AssertNotCalled(t, "GetByID")
}

func TestMarkPaid_NotPendingSurfacesRepoError(t *testing.T) {
	svc, m := newSettlementService(t)
	statement := &models.SettlementStatement{
		ID:     "stmt-1",
		Period: testPeriod,
		Status: models.StatementPaid,
	}

	m.settlementRepo.On("GetByID", mock.Anything, nil, "stmt-1").Return(statement, nil)
	m.db.ExpectTransaction()
	m.settlementRepo.On("MarkPaid", mock.Anything, mock.Anything, "stmt-1").
		Return(domain.ErrStatementNotPending)

	err := svc.MarkPaid(context.Background(), "stmt-1", "finance-lee")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeStatementNotPending, domain.GetErrorCode(err))
	m.auditRepo.AssertNotCalled(t, "Append")
}
