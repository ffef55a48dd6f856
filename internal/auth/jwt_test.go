package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough"

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(testSecret, "commission-service", "commission-api", 15*time.Minute)
	require.NoError(t, err)
	return m
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager("", "iss", "aud", time.Minute)
	require.Error(t, err)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	token, err := m.Issue(now, "finance-kim", RoleFinance)
	require.NoError(t, err)

	claims, err := m.Verify(token, now.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "finance-kim", claims.UserID)
	assert.Equal(t, RoleFinance, claims.Role)
	assert.Equal(t, "commission-service", claims.Issuer)
	assert.NotEmpty(t, claims.ID, "token needs a jti for traceability")
}

func TestVerify_ExpiredToken(t *testing.T) {
	m := newTestManager(t)
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	token, err := m.Issue(now, "finance-kim", RoleFinance)
	require.NoError(t, err)

	// inside the 30s leeway window still passes
	_, err = m.Verify(token, now.Add(15*time.Minute+10*time.Second))
	assert.NoError(t, err)

	_, err = m.Verify(token, now.Add(16*time.Minute))
	assert.Error(t, err)
}

func TestVerify_WrongSecret(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager("a-completely-different-secret-value", "commission-service", "commission-api", 15*time.Minute)
	require.NoError(t, err)

	now := time.Now().UTC()
	token, err := m.Issue(now, "finance-kim", RoleFinance)
	require.NoError(t, err)

	_, err = other.Verify(token, now)
	assert.Error(t, err)
}

func TestVerify_WrongIssuerOrAudience(t *testing.T) {
	now := time.Now().UTC()

	issuerA, err := NewManager(testSecret, "issuer-a", "", 15*time.Minute)
	require.NoError(t, err)
	issuerB, err := NewManager(testSecret, "issuer-b", "", 15*time.Minute)
	require.NoError(t, err)

	token, err := issuerA.Issue(now, "finance-kim", RoleFinance)
	require.NoError(t, err)
	_, err = issuerB.Verify(token, now)
	assert.Error(t, err, "issuer mismatch must fail")

	audA, err := NewManager(testSecret, "iss", "aud-a", 15*time.Minute)
	require.NoError(t, err)
	audB, err := NewManager(testSecret, "iss", "aud-b", 15*time.Minute)
	require.NoError(t, err)

	token, err = audA.Issue(now, "finance-kim", RoleFinance)
	require.NoError(t, err)
	_, err = audB.Verify(token, now)
	assert.Error(t, err, "audience mismatch must fail")
}

func TestVerify_GarbageToken(t *testing.T) {
	m := newTestManager(t)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := m.Verify(token, time.Now().UTC())
		assert.Error(t, err, "token %q must not verify", token)
	}
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		role    Role
		granted []Capability
		denied  []Capability
	}{
		{RoleAdmin,
			[]Capability{CapLedgerRead, CapSaleIngest, CapAdjustmentDecide, CapSettlementPay, CapRelationWrite},
			nil},
		{RoleFinance,
			[]Capability{CapLedgerRead, CapAdjustmentRequest, CapAdjustmentDecide, CapSettlementRun, CapSettlementPay},
			[]Capability{CapSaleIngest, CapRelationWrite}},
		{RoleSupport,
			[]Capability{CapLedgerRead, CapAdjustmentRequest},
			[]Capability{CapAdjustmentDecide, CapSettlementRun, CapSettlementPay, CapSaleIngest}},
		{RoleIngest,
			[]Capability{CapSaleIngest, CapRelationWrite},
			[]Capability{CapLedgerRead, CapAdjustmentDecide, CapSettlementRun}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			caps := Capabilities(tt.role)
			for _, c := range tt.granted {
				assert.True(t, caps[c], "%s should hold %s", tt.role, c)
			}
			for _, c := range tt.denied {
				assert.False(t, caps[c], "%s should not hold %s", tt.role, c)
			}
		})
	}

	assert.Empty(t, Capabilities(Role("INTERN")), "unknown role gets nothing")
}

func TestContextIdentity(t *testing.T) {
	ctx := WithIdentity(context.Background(), "finance-kim", RoleFinance)

	userID, err := UserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "finance-kim", userID)

	role, err := RoleFrom(ctx)
	require.NoError(t, err)
	assert.Equal(t, RoleFinance, role)

	assert.True(t, Can(ctx, CapAdjustmentDecide))
	assert.False(t, Can(ctx, CapSaleIngest))
}

func TestContextIdentity_Missing(t *testing.T) {
	ctx := context.Background()

	_, err := UserID(ctx)
	assert.Error(t, err)
	_, err = RoleFrom(ctx)
	assert.Error(t, err)
	assert.False(t, Can(ctx, CapLedgerRead))
}
