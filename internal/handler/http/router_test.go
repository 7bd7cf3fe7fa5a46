package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRunHandler answers every run endpoint with 204 so the tests observe
// only what the router's middleware chain does with the request.
type stubRunHandler struct{}

func (stubRunHandler) ok(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

func (s stubRunHandler) ComputeRun(w http.ResponseWriter, r *http.Request)          { s.ok(w) }
func (s stubRunHandler) GetRun(w http.ResponseWriter, r *http.Request)              { s.ok(w) }
func (s stubRunHandler) ListRuns(w http.ResponseWriter, r *http.Request)            { s.ok(w) }
func (s stubRunHandler) SubmitRun(w http.ResponseWriter, r *http.Request)           { s.ok(w) }
func (s stubRunHandler) ApproveRun(w http.ResponseWriter, r *http.Request)          { s.ok(w) }
func (s stubRunHandler) FreezeRun(w http.ResponseWriter, r *http.Request)           { s.ok(w) }
func (s stubRunHandler) UnfreezeRun(w http.ResponseWriter, r *http.Request)         { s.ok(w) }
func (s stubRunHandler) VoidRun(w http.ResponseWriter, r *http.Request)             { s.ok(w) }
func (s stubRunHandler) MarkPaid(w http.ResponseWriter, r *http.Request)            { s.ok(w) }
func (s stubRunHandler) GetIrregularity(w http.ResponseWriter, r *http.Request)     { s.ok(w) }
func (s stubRunHandler) ResolveIrregularity(w http.ResponseWriter, r *http.Request) { s.ok(w) }

type stubPayslipHandler struct{}

func (stubPayslipHandler) ok(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

func (s stubPayslipHandler) GetPayslip(w http.ResponseWriter, r *http.Request)     { s.ok(w) }
func (s stubPayslipHandler) ListByRun(w http.ResponseWriter, r *http.Request)      { s.ok(w) }
func (s stubPayslipHandler) ListByEmployee(w http.ResponseWriter, r *http.Request) { s.ok(w) }

type stubLedgerHandler struct{}

func (stubLedgerHandler) ok(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

func (s stubLedgerHandler) CreateDispute(w http.ResponseWriter, r *http.Request) { s.ok(w) }
func (s stubLedgerHandler) GetDispute(w http.ResponseWriter, r *http.Request)    { s.ok(w) }
func (s stubLedgerHandler) ListDisputes(w http.ResponseWriter, r *http.Request)  { s.ok(w) }
func (s stubLedgerHandler) ReviewDispute(w http.ResponseWriter, r *http.Request) { s.ok(w) }
func (s stubLedgerHandler) CreateClaim(w http.ResponseWriter, r *http.Request)   { s.ok(w) }
func (s stubLedgerHandler) GetClaim(w http.ResponseWriter, r *http.Request)      { s.ok(w) }
func (s stubLedgerHandler) ListClaims(w http.ResponseWriter, r *http.Request)    { s.ok(w) }
func (s stubLedgerHandler) ReviewClaim(w http.ResponseWriter, r *http.Request)   { s.ok(w) }
func (s stubLedgerHandler) CreateRefund(w http.ResponseWriter, r *http.Request)  { s.ok(w) }
func (s stubLedgerHandler) GetRefund(w http.ResponseWriter, r *http.Request)     { s.ok(w) }
func (s stubLedgerHandler) ListRefunds(w http.ResponseWriter, r *http.Request)   { s.ok(w) }
func (s stubLedgerHandler) ApproveRefund(w http.ResponseWriter, r *http.Request) { s.ok(w) }
func (s stubLedgerHandler) PayRefund(w http.ResponseWriter, r *http.Request)     { s.ok(w) }
func (s stubLedgerHandler) Reconcile(w http.ResponseWriter, r *http.Request)     { s.ok(w) }
func (s stubLedgerHandler) ScanIntegrity(w http.ResponseWriter, r *http.Request) { s.ok(w) }

func doAs(t *testing.T, router http.Handler, svc jwt.Service, role, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	token, _, err := svc.GenerateAccessToken("actor-1", role)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_RoleGates(t *testing.T) {
	svc := jwt.NewJWTService("router-test-secret", "1h")
	router := NewRouter(svc, stubRunHandler{}, stubPayslipHandler{}, stubLedgerHandler{})

	cases := []struct {
		name   string
		role   string
		method string
		path   string
		want   int
	}{
		{"manager can freeze", "manager", http.MethodPost, "/api/v1/payroll-runs/r1/freeze", http.StatusNoContent},
		{"finance cannot freeze", "finance", http.MethodPost, "/api/v1/payroll-runs/r1/freeze", http.StatusForbidden},
		{"specialist cannot freeze", "specialist", http.MethodPost, "/api/v1/payroll-runs/r1/freeze", http.StatusForbidden},
		{"manager can unfreeze", "manager", http.MethodPost, "/api/v1/payroll-runs/r1/unfreeze", http.StatusNoContent},
		{"manager can void", "manager", http.MethodPost, "/api/v1/payroll-runs/r1/void", http.StatusNoContent},
		{"finance can pay", "finance", http.MethodPost, "/api/v1/payroll-runs/r1/pay", http.StatusNoContent},
		{"manager cannot pay", "manager", http.MethodPost, "/api/v1/payroll-runs/r1/pay", http.StatusForbidden},
		{"specialist can compute", "specialist", http.MethodPost, "/api/v1/payroll-runs", http.StatusNoContent},
		{"finance cannot compute", "finance", http.MethodPost, "/api/v1/payroll-runs", http.StatusForbidden},
		{"finance can approve", "finance", http.MethodPost, "/api/v1/payroll-runs/r1/approve", http.StatusNoContent},
		{"manager can approve", "manager", http.MethodPost, "/api/v1/payroll-runs/r1/approve", http.StatusNoContent},
		{"specialist cannot approve", "specialist", http.MethodPost, "/api/v1/payroll-runs/r1/approve", http.StatusForbidden},
		{"specialist cannot review claim", "specialist", http.MethodPost, "/api/v1/claims/c1/review", http.StatusForbidden},
		{"finance can reconcile", "finance", http.MethodPost, "/api/v1/ledger/reconcile", http.StatusNoContent},
		{"specialist cannot reconcile", "specialist", http.MethodPost, "/api/v1/ledger/reconcile", http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doAs(t, router, svc, tc.role, tc.method, tc.path)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRouter_RejectsMissingToken(t *testing.T) {
	svc := jwt.NewJWTService("router-test-secret", "1h")
	router := NewRouter(svc, stubRunHandler{}, stubPayslipHandler{}, stubLedgerHandler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payroll-runs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
