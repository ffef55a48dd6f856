package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tourvia/commission-service/internal/auth"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
	"github.com/tourvia/commission-service/internal/handlers"
	"github.com/tourvia/commission-service/internal/testutil/fixtures"
	"github.com/tourvia/commission-service/internal/testutil/mocks"
	"go.uber.org/zap"
)

type testAPI struct {
	router      http.Handler
	authManager *auth.Manager
	ledger      *mocks.MockLedgerService
	adjustments *mocks.MockAdjustmentService
	settlements *mocks.MockSettlementService
	relations   *mocks.MockRelationshipService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	authManager, err := auth.NewManager("router-test-secret", "commission-service", "", time.Hour)
	require.NoError(t, err)

	api := &testAPI{
		authManager: authManager,
		ledger:      new(mocks.MockLedgerService),
		adjustments: new(mocks.MockAdjustmentService),
		settlements: new(mocks.MockSettlementService),
		relations:   new(mocks.MockRelationshipService),
	}
	h := handlers.New(api.ledger, api.adjustments, api.settlements, api.relations, zap.NewNop())
	api.router = handlers.NewRouter(h, authManager, zap.NewNop(), handlers.RouterConfig{
		IsDevelopment:  true,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	})
	return api
}

func (api *testAPI) token(t *testing.T, userID string, role auth.Role) string {
	t.Helper()
	token, err := api.authManager.Issue(time.Now().UTC(), userID, role)
	require.NoError(t, err)
	return token
}

func (api *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

type jsonBody = map[string]any

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRouter_RejectsMissingAndInvalidTokens(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/v1/sales/s-1/lines", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_MISSING", decodeBody(t, w)["code"])

	w = api.do(t, http.MethodGet, "/v1/sales/s-1/lines", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_INVALID", decodeBody(t, w)["code"])
}

func TestRouter_EnforcesCapabilities(t *testing.T) {
	api := newTestAPI(t)

	// SUPPORT can read but cannot ingest sales or decide adjustments
	support := api.token(t, "support-park", auth.RoleSupport)

	w := api.do(t, http.MethodPost, "/v1/sales", support, jsonBody{"sale_id": "s-1"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUTH_INSUFFICIENT_CAPABILITIES", decodeBody(t, w)["code"])

	w = api.do(t, http.MethodPost, "/v1/adjustments/a-1/decision", support, jsonBody{"outcome": "APPROVE"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// INGEST can post sales but cannot read the ledger
	ingest := api.token(t, "order-sync", auth.RoleIngest)
	w = api.do(t, http.MethodGet, "/v1/sales/s-1/lines", ingest, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPostSale_EndToEnd(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "order-sync", auth.RoleIngest)

	lines := []*models.LedgerLine{
		fixtures.LedgerLine("s-1", "agent-1", models.RoleAgent, 100_000),
	}
	api.ledger.On("PostSale", mock.Anything, mock.MatchedBy(func(s *models.Sale) bool {
		return s.ID == "s-1" && s.Amount == 1_000_000 && s.Status == models.SaleCompleted
	})).Return(lines, nil)

	w := api.do(t, http.MethodPost, "/v1/sales", token, jsonBody{
		"sale_id":          "s-1",
		"product_code":     "PKG-TOKYO-5D",
		"product_category": "package-tour",
		"amount":           1_000_000,
		"agent_id":         "agent-1",
		"sale_date":        "2026-03-15T09:30:00Z",
		"status":           "COMPLETED",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "s-1", body["sale_id"])
	assert.Len(t, body["lines"], 1)
}

func TestPostSale_BadRequestBodies(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "order-sync", auth.RoleIngest)

	// missing required fields
	w := api.do(t, http.MethodPost, "/v1/sales", token, jsonBody{"sale_id": "s-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// malformed sale_date
	w = api.do(t, http.MethodPost, "/v1/sales", token, jsonBody{
		"sale_id":          "s-1",
		"product_category": "package-tour",
		"amount":           1_000_000,
		"agent_id":         "agent-1",
		"sale_date":        "2026/03/15",
		"status":           "COMPLETED",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	api.ledger.AssertNotCalled(t, "PostSale")
}

func TestPostSale_RateErrorsMapTo422(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "order-sync", auth.RoleIngest)

	api.ledger.On("PostSale", mock.Anything, mock.Anything).
		Return(nil, domain.ErrRateNotConfigured)

	w := api.do(t, http.MethodPost, "/v1/sales", token, jsonBody{
		"sale_id":          "s-1",
		"product_category": "esoteric-cruise",
		"amount":           1_000_000,
		"agent_id":         "agent-1",
		"sale_date":        "2026-03-15T09:30:00Z",
		"status":           "COMPLETED",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "RATE_NOT_CONFIGURED", decodeBody(t, w)["code"])
}

func TestRequestAdjustment_RequesterFromToken(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "support-park", auth.RoleSupport)

	adj := fixtures.PendingAdjustment("line-1", 10_000, "support-park")
	api.adjustments.On("Request", mock.Anything, "line-1", int64(10_000), "missed credit", "support-park").
		Return(adj, nil)

	w := api.do(t, http.MethodPost, "/v1/lines/line-1/adjustments", token,
		jsonBody{"delta": 10_000, "reason": "missed credit"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "PENDING", decodeBody(t, w)["status"])
}

func TestDecideAdjustment_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"self approval", domain.ErrSelfApprovalForbidden, http.StatusForbidden, "ADJ_SELF_APPROVAL_FORBIDDEN"},
		{"already decided", domain.ErrAlreadyDecided, http.StatusConflict, "ADJ_ALREADY_DECIDED"},
		{"line settled", domain.ErrLineSettled, http.StatusConflict, "ADJ_LINE_SETTLED"},
		{"not found", domain.ErrAdjustmentNotFound, http.StatusNotFound, "ADJUSTMENT_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			token := api.token(t, "finance-lee", auth.RoleFinance)

			api.adjustments.On("Decide", mock.Anything, "a-1", models.OutcomeApprove, "finance-lee").
				Return(nil, tt.serviceErr)

			w := api.do(t, http.MethodPost, "/v1/adjustments/a-1/decision", token,
				jsonBody{"outcome": "APPROVE"})
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeBody(t, w)["code"])
		})
	}
}

func TestRunSettlement_PartialFailureIs207(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "finance-lee", auth.RoleFinance)

	api.settlements.On("Run", mock.Anything, models.Period("2026-03")).
		Return(&ports.BatchResult{
			Period: "2026-03",
			Succeeded: []ports.ProfileResult{
				{ProfileID: "profile-ok", StatementID: "stmt-1", LineCount: 3, TotalNet: 145_050},
			},
			Failed: []ports.ProfileResult{
				{ProfileID: "profile-bad", Err: domain.ErrConcurrentModification},
			},
		}, nil)

	w := api.do(t, http.MethodPost, "/v1/settlements/run", token, jsonBody{"period": "2026-03"})
	assert.Equal(t, http.StatusMultiStatus, w.Code)

	body := decodeBody(t, w)
	assert.Len(t, body["succeeded"], 1)
	assert.Len(t, body["failed"], 1)
}

func TestRunSettlement_BadPeriod(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "finance-lee", auth.RoleFinance)

	w := api.do(t, http.MethodPost, "/v1/settlements/run", token, jsonBody{"period": "March 2026"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	api.settlements.AssertNotCalled(t, "Run")
}

func TestLinesForProfile_PaginationValidation(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "support-park", auth.RoleSupport)

	api.ledger.On("LinesForProfile", mock.Anything, "p-1", int32(25), int32(50)).
		Return([]*models.LedgerLine{}, nil)

	w := api.do(t, http.MethodGet, "/v1/profiles/p-1/lines?limit=25&offset=50", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	for _, q := range []string{"limit=0", "limit=501", "limit=abc", "offset=-1"} {
		w = api.do(t, http.MethodGet, "/v1/profiles/p-1/lines?"+q, token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q must be rejected", q)
	}
}
