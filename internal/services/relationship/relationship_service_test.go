package relationship_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/services/relationship"
	"github.com/tourvia/commission-service/internal/testutil/fixtures"
	"github.com/tourvia/commission-service/internal/testutil/mocks"
)

type relationshipServiceMocks struct {
	db           *mocks.MockDBPort
	profileRepo  *mocks.MockProfileRepository
	relationRepo *mocks.MockRelationRepository
	auditRepo    *mocks.MockAuditRepository
}

func newRelationshipService(t *testing.T) (*relationship.Service, *relationshipServiceMocks) {
	t.Helper()
	m := &relationshipServiceMocks{
		db:           new(mocks.MockDBPort),
		profileRepo:  new(mocks.MockProfileRepository),
		relationRepo: new(mocks.MockRelationRepository),
		auditRepo:    new(mocks.MockAuditRepository),
	}
	svc := relationship.NewService(m.db, m.profileRepo, m.relationRepo, m.auditRepo, mocks.NopLogger{})
	return svc, m
}

func TestResolveManagerFor(t *testing.T) {
	t.Run("open relation resolves to manager", func(t *testing.T) {
		svc, m := newRelationshipService(t)
		agent := fixtures.ActiveProfile(models.RoleAgent)
		relation := fixtures.OpenRelation("manager-1", agent.ID, time.Now().AddDate(0, -6, 0))

		m.profileRepo.On("GetByID", mock.Anything, nil, agent.ID).Return(agent, nil)
		m.relationRepo.On("GetActiveByAgent", mock.Anything, nil, agent.ID).Return(relation, nil)

		managerID, err := svc.ResolveManagerFor(context.Background(), agent.ID)
		require.NoError(t, err)
		require.NotNil(t, managerID)
		assert.Equal(t, "manager-1", *managerID)
	})

	t.Run("no open relation resolves to nil", func(t *testing.T) {
		svc, m := newRelationshipService(t)
		agent := fixtures.ActiveProfile(models.RoleAgent)

		m.profileRepo.On("GetByID", mock.Anything, nil, agent.ID).Return(agent, nil)
		m.relationRepo.On("GetActiveByAgent", mock.Anything, nil, agent.ID).Return(nil, nil)

		managerID, err := svc.ResolveManagerFor(context.Background(), agent.ID)
		require.NoError(t, err)
		assert.Nil(t, managerID)
	})

	t.Run("unknown agent is not found", func(t *testing.T) {
		svc, m := newRelationshipService(t)

		m.profileRepo.On("GetByID", mock.Anything, nil, "missing").
			Return(nil, domain.ErrProfileNotFound)

		_, err := svc.ResolveManagerFor(context.Background(), "missing")
		require.Error(t, err)
		assert.Equal(t, domain.ErrorCodeProfileNotFound, domain.GetErrorCode(err))
		m.relationRepo.AssertNotCalled(t, "GetActiveByAgent")
	})
}

func TestIsActive(t *testing.T) {
	t.Run("active profile", func(t *testing.T) {
		svc, m := newRelationshipService(t)
		agent := fixtures.ActiveProfile(models.RoleAgent)

		m.profileRepo.On("GetByID", mock.Anything, nil, agent.ID).Return(agent, nil)

		active, err := svc.IsActive(context.Background(), agent.ID)
		require.NoError(t, err)
		assert.True(t, active)
	})

	t.Run("suspended profile", func(t *testing.T) {
		svc, m := newRelationshipService(t)
		agent := fixtures.ActiveProfile(models.RoleAgent)
		agent.Status = models.ProfileSuspended

		m.profileRepo.On("GetByID", mock.Anything, nil, agent.ID).Return(agent, nil)

		active, err := svc.IsActive(context.Background(), agent.ID)
		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("unknown profile is not found", func(t *testing.T) {
		svc, m := newRelationshipService(t)

		m.profileRepo.On("GetByID", mock.Anything, nil, "missing").
			Return(nil, domain.ErrProfileNotFound)

		_, err := svc.IsActive(context.Background(), "missing")
		require.Error(t, err)
		assert.Equal(t, domain.ErrorCodeProfileNotFound, domain.GetErrorCode(err))
	})
}

func TestIsRelationActiveAt(t *testing.T) {
	asOf := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("episode covering the instant", func(t *testing.T) {
		svc, m := newRelationshipService(t)
		relation := fixtures.OpenRelation("manager-1", "agent-1", asOf.AddDate(-1, 0, 0))

		m.relationRepo.On("GetAt", mock.Anything, nil, "manager-1", "agent-1", asOf).
			Return(relation, nil)

		active, err := svc.IsRelationActiveAt(context.Background(), "manager-1", "agent-1", asOf)
		require.NoError(t, err)
		assert.True(t, active)
	})

	t.Run("no episode at the instant", func(t *testing.T) {
		svc, m := newRelationshipService(t)

		m.relationRepo.On("GetAt", mock.Anything, nil, "manager-1", "agent-1", asOf).
			Return(nil, nil)

		active, err := svc.IsRelationActiveAt(context.Background(), "manager-1", "agent-1", asOf)
		require.NoError(t, err)
		assert.False(t, active)
	})
}

func TestOpenRelation(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("opens and audits", func(t *testing.T) {
		svc, m := newRelationshipService(t)
		manager := fixtures.ActiveProfile(models.RoleManager)
		agent := fixtures.ActiveProfile(models.RoleAgent)

		m.profileRepo.On("GetByID", mock.Anything, nil, manager.ID).Return(manager, nil)
		m.profileRepo.On("GetByID", mock.Anything, nil, agent.ID).Return(agent, nil)
		m.db.ExpectTransaction()
		m.relationRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		var entry *models.AuditEntry
		m.auditRepo.On("Append", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				entry = args.Get(2).(*models.AuditEntry)
			}).Return(nil)

		relation, err := svc.OpenRelation(context.Background(), manager.ID, agent.ID, "admin-choi", from)
		require.NoError(t, err)
		assert.Equal(t, manager.ID, relation.ManagerID)
		assert.Equal(t, agent.ID, relation.AgentID)
		assert.Equal(t, models.RelationActive, relation.Status)
		assert.Equal(t, from, relation.EffectiveFrom)
		assert.Nil(t, relation.EffectiveUntil)

		require.NotNil(t, entry)
		assert.Equal(t, models.AuditRelationChanged, entry.Category)
		assert.Equal(t, "relation_opened", entry.Action)
		assert.Equal(t, "admin-choi", entry.ActorID)
	})

	t.Run("role mismatch rejected", func(t *testing.T) {
		svc, m := newRelationshipService(t)
		// two agents: the first cannot act as a manager
		notManager := fixtures.ActiveProfile(models.RoleAgent)
		agent := fixtures.ActiveProfile(models.RoleAgent)

		m.profileRepo.On("GetByID", mock.Anything, nil, notManager.ID).Return(notManager, nil)
		m.profileRepo.On("GetByID", mock.Anything, nil, agent.ID).Return(agent, nil)

		_, err := svc.OpenRelation(context.Background(), notManager.ID, agent.ID, "admin-choi", from)
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
		m.relationRepo.AssertNotCalled(t, "Create")
	})

	t.Run("agent with open relation rejected", func(t *testing.T) {
		svc, m := newRelationshipService(t)
		manager := fixtures.ActiveProfile(models.RoleManager)
		agent := fixtures.ActiveProfile(models.RoleAgent)

		m.profileRepo.On("GetByID", mock.Anything, nil, manager.ID).Return(manager, nil)
		m.profileRepo.On("GetByID", mock.Anything, nil, agent.ID).Return(agent, nil)
		m.db.ExpectTransaction()
		// the partial unique index on open relations surfaces as a conflict
		m.relationRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(domain.ErrConcurrentModification)

		_, err := svc.OpenRelation(context.Background(), manager.ID, agent.ID, "admin-choi", from)
		require.Error(t, err)
		m.auditRepo.AssertNotCalled(t, "Append")
	})
}

func TestCloseRelation(t *testing.T) {
	at := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	t.Run("closes and audits", func(t *testing.T) {
		svc, m := newRelationshipService(t)

		m.db.ExpectTransaction()
		m.relationRepo.On("Close", mock.Anything, mock.Anything, "manager-1", "agent-1", at).
			Return(nil)

		var entry *models.AuditEntry
		m.auditRepo.On("Append", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				entry = args.Get(2).(*models.AuditEntry)
			}).Return(nil)

		err := svc.CloseRelation(context.Background(), "manager-1", "agent-1", "admin-choi", at)
		require.NoError(t, err)

		require.NotNil(t, entry)
		assert.Equal(t, "relation_closed", entry.Action)
	})

	t.Run("no open relation surfaces repo error", func(t *testing.T) {
		svc, m := newRelationshipService(t)

		m.db.ExpectTransaction()
		m.relationRepo.On("Close", mock.Anything, mock.Anything, "manager-1", "agent-1", at).
			Return(domain.ErrRelationNotFound)

		err := svc.CloseRelation(context.Background(), "manager-1", "agent-1", "admin-choi", at)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorCodeRelationNotFound, domain.GetErrorCode(err))
		m.auditRepo.AssertNotCalled(t, "Append")
	})
}

func TestHistoryForAgent(t *testing.T) {
	svc, m := newRelationshipService(t)
	history := []*models.AffiliateRelation{
		fixtures.OpenRelation("manager-1", "agent-1", time.Now().AddDate(-2, 0, 0)),
		fixtures.OpenRelation("manager-2", "agent-1", time.Now().AddDate(0, -3, 0)),
	}

	m.relationRepo.On("ListByAgent", mock.Anything, nil, "agent-1").Return(history, nil)

	got, err := svc.HistoryForAgent(context.Background(), "agent-1")
	require.NoError(t, err)
	assert.Equal(t, history, got)
}
