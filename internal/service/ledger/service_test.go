package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/ledger"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payrollrun"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payslip"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/service/reference"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== IN-MEMORY FAKES =====

type memPayslipRepo struct {
	slips      map[string]payslip.Payslip
	validRunID string
}

var _ payslip.Repository = (*memPayslipRepo)(nil)

func newMemPayslipRepo() *memPayslipRepo {
	return &memPayslipRepo{slips: make(map[string]payslip.Payslip)}
}

func (r *memPayslipRepo) GetByID(_ context.Context, id string) (payslip.Payslip, error) {
	p, ok := r.slips[id]
	if !ok {
		return payslip.Payslip{}, payslip.ErrPayslipNotFound
	}
	return p, nil
}

func (r *memPayslipRepo) ListByRunID(_ context.Context, runID string) ([]payslip.Payslip, error) {
	var out []payslip.Payslip
	for _, p := range r.slips {
		if p.PayrollRunID == runID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPayslipRepo) ListByEmployeeID(_ context.Context, employeeID string) ([]payslip.Payslip, error) {
	var out []payslip.Payslip
	for _, p := range r.slips {
		if p.EmployeeID == employeeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPayslipRepo) LatestForEmployee(_ context.Context, employeeID string) (payslip.Payslip, error) {
	var latest payslip.Payslip
	found := false
	for _, p := range r.slips {
		if p.EmployeeID == employeeID && (!found || p.IssuedAt.After(latest.IssuedAt)) {
			latest, found = p, true
		}
	}
	if !found {
		return payslip.Payslip{}, payslip.ErrPayslipNotFound
	}
	return latest, nil
}

func (r *memPayslipRepo) LatestValidRunID(_ context.Context) (string, error) {
	if r.validRunID == "" {
		return "", payslip.ErrNoValidRun
	}
	return r.validRunID, nil
}

// stubRunRepo only resolves run ids; nothing else in this package touches runs.
type stubRunRepo struct {
	payrollrun.Repository
	runs map[string]payrollrun.PayrollRun
}

func (r *stubRunRepo) GetRunByID(_ context.Context, id string) (payrollrun.PayrollRun, error) {
	run, ok := r.runs[id]
	if !ok {
		return payrollrun.PayrollRun{}, payrollrun.ErrRunNotFound
	}
	return run, nil
}

type memLedgerRepo struct {
	disputes map[string]ledger.Dispute
	claims   map[string]ledger.Claim
	refunds  map[string]ledger.Refund
}

var _ ledger.Repository = (*memLedgerRepo)(nil)

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{
		disputes: make(map[string]ledger.Dispute),
		claims:   make(map[string]ledger.Claim),
		refunds:  make(map[string]ledger.Refund),
	}
}

func (r *memLedgerRepo) CreateDispute(_ context.Context, d ledger.Dispute) (ledger.Dispute, error) {
	r.disputes[d.ID] = d
	return d, nil
}

func (r *memLedgerRepo) GetDisputeByID(_ context.Context, id string) (ledger.Dispute, error) {
	d, ok := r.disputes[id]
	if !ok {
		return ledger.Dispute{}, ledger.ErrDisputeNotFound
	}
	return d, nil
}

func (r *memLedgerRepo) ListDisputes(_ context.Context) ([]ledger.Dispute, error) {
	var out []ledger.Dispute
	for _, d := range r.disputes {
		out = append(out, d)
	}
	return out, nil
}

func (r *memLedgerRepo) AppendReviewStep(_ context.Context, step ledger.ReviewStep, nextStatus ledger.DisputeStatus) (ledger.ReviewStep, error) {
	d, ok := r.disputes[step.DisputeID]
	if !ok {
		return ledger.ReviewStep{}, ledger.ErrDisputeNotFound
	}
	for _, existing := range d.Reviews {
		if existing.Stage == step.Stage {
			return ledger.ReviewStep{}, ledger.ErrAlreadyReviewed
		}
	}
	step.CreatedAt = time.Now()
	d.Reviews = append(d.Reviews, step)
	d.Status = nextStatus
	r.disputes[step.DisputeID] = d
	return step, nil
}

func (r *memLedgerRepo) CreateClaim(_ context.Context, c ledger.Claim) (ledger.Claim, error) {
	r.claims[c.ID] = c
	return c, nil
}

func (r *memLedgerRepo) GetClaimByID(_ context.Context, id string) (ledger.Claim, error) {
	c, ok := r.claims[id]
	if !ok {
		return ledger.Claim{}, ledger.ErrClaimNotFound
	}
	return c, nil
}

func (r *memLedgerRepo) ListClaims(_ context.Context) ([]ledger.Claim, error) {
	var out []ledger.Claim
	for _, c := range r.claims {
		out = append(out, c)
	}
	return out, nil
}

func (r *memLedgerRepo) UpdateClaimStatus(_ context.Context, id string, expected, next ledger.ClaimStatus, reviewedBy string) error {
	c, ok := r.claims[id]
	if !ok {
		return ledger.ErrClaimNotFound
	}
	if c.Status != expected {
		return ledger.ErrInvalidStatus
	}
	c.Status = next
	c.ReviewedBy = &reviewedBy
	r.claims[id] = c
	return nil
}

func (r *memLedgerRepo) CreateRefund(_ context.Context, ref ledger.Refund) (ledger.Refund, error) {
	r.refunds[ref.ID] = ref
	return ref, nil
}

func (r *memLedgerRepo) GetRefundByID(_ context.Context, id string) (ledger.Refund, error) {
	ref, ok := r.refunds[id]
	if !ok {
		return ledger.Refund{}, ledger.ErrRefundNotFound
	}
	return ref, nil
}

func (r *memLedgerRepo) ListRefunds(_ context.Context) ([]ledger.Refund, error) {
	var out []ledger.Refund
	for _, ref := range r.refunds {
		out = append(out, ref)
	}
	return out, nil
}

func (r *memLedgerRepo) UpdateRefundStatus(_ context.Context, id string, expected, next ledger.RefundStatus, actorID string, paidInRunID *string) error {
	ref, ok := r.refunds[id]
	if !ok {
		return ledger.ErrRefundNotFound
	}
	if ref.Status != expected {
		return ledger.ErrInvalidStatus
	}
	ref.Status = next
	switch next {
	case ledger.RefundApproved:
		ref.ApprovedBy = &actorID
	case ledger.RefundPaid:
		ref.PaidInPayrollRunID = paidInRunID
	}
	r.refunds[id] = ref
	return nil
}

func (r *memLedgerRepo) ListApprovedUnpaidRefunds(_ context.Context, employeeIDs []string) ([]ledger.Refund, error) {
	var out []ledger.Refund
	for _, ref := range r.refunds {
		if ref.Status != ledger.RefundApproved || ref.PaidInPayrollRunID != nil {
			continue
		}
		for _, id := range employeeIDs {
			if ref.EmployeeID == id {
				out = append(out, ref)
			}
		}
	}
	return out, nil
}

func (r *memLedgerRepo) MarkRefundsPaid(_ context.Context, ids []string, runID string) error {
	for _, id := range ids {
		ref := r.refunds[id]
		ref.Status = ledger.RefundPaid
		ref.PaidInPayrollRunID = &runID
		r.refunds[id] = ref
	}
	return nil
}

func (r *memLedgerRepo) RelinkPayslip(_ context.Context, kind ledger.RecordKind, id, payslipID string) error {
	switch kind {
	case ledger.KindDispute:
		d, ok := r.disputes[id]
		if !ok {
			return ledger.ErrDisputeNotFound
		}
		d.PayslipID = payslipID
		r.disputes[id] = d
	case ledger.KindClaim:
		c, ok := r.claims[id]
		if !ok {
			return ledger.ErrClaimNotFound
		}
		c.PayslipID = payslipID
		r.claims[id] = c
	case ledger.KindRefund:
		ref, ok := r.refunds[id]
		if !ok {
			return ledger.ErrRefundNotFound
		}
		ref.PayslipID = payslipID
		r.refunds[id] = ref
	}
	return nil
}

// ===== TEST ENVIRONMENT =====

type ledgerEnv struct {
	svc      *Service
	repo     *memLedgerRepo
	payslips *memPayslipRepo
	runs     *stubRunRepo
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newLedgerEnv() *ledgerEnv {
	payslips := newMemPayslipRepo()
	runs := &stubRunRepo{runs: make(map[string]payrollrun.PayrollRun)}
	repo := newMemLedgerRepo()
	validator := reference.NewValidator(payslips, runs)
	return &ledgerEnv{
		svc:      NewService(repo, payslips, validator),
		repo:     repo,
		payslips: payslips,
		runs:     runs,
	}
}

// addPayslip registers a payslip and, unless runID is already known, the run
// backing it.
func (e *ledgerEnv) addPayslip(id, runID, employeeID string, issuedAt time.Time) {
	if _, ok := e.runs.runs[runID]; !ok {
		e.runs.runs[runID] = payrollrun.PayrollRun{ID: runID, Status: payrollrun.StatusPaid}
	}
	e.payslips.slips[id] = payslip.Payslip{
		ID: id, PayrollRunID: runID, EmployeeID: employeeID,
		NetSalary: money("4300"), IssuedAt: issuedAt,
	}
}

// ===== CREATE =====

func TestCreateDispute_ValidReference(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv()
	env.addPayslip("ps-1", "run-1", "emp-1", time.Now())

	d, err := env.svc.CreateDispute(ctx, ledger.CreateDisputeRequest{
		PayslipID: "ps-1", EmployeeID: "emp-1", Amount: money("120"), Reason: "missing overtime",
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.DisputeOpen, d.Status)
	assert.NotEmpty(t, d.ID)
}

func TestCreateDispute_DanglingPayslipRejected(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv()

	_, err := env.svc.CreateDispute(ctx, ledger.CreateDisputeRequest{
		PayslipID: "ps-missing", EmployeeID: "emp-1", Amount: money("120"), Reason: "missing overtime",
	})
	assert.ErrorIs(t, err, ledger.ErrDanglingReference)
	assert.Empty(t, env.repo.disputes)
}

func TestCreateClaim_DanglingRunRejected(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv()
	// Payslip exists but its run does not.
	env.payslips.slips["ps-orphan"] = payslip.Payslip{
		ID: "ps-orphan", PayrollRunID: "run-gone", EmployeeID: "emp-1", IssuedAt: time.Now(),
	}

	_, err := env.svc.CreateClaim(ctx, ledger.CreateClaimRequest{
		PayslipID: "ps-orphan", EmployeeID: "emp-1", Amount: money("40"),
	})
	assert.ErrorIs(t, err, ledger.ErrDanglingReference)
	assert.Empty(t, env.repo.claims)
}

func TestCreateRefund_ValidationFailsFirst(t *testing.T) {
	env := newLedgerEnv()

	_, err := env.svc.CreateRefund(context.Background(), ledger.CreateRefundRequest{
		PayslipID: "ps-1", EmployeeID: "emp-1", Amount: money("-5"), Reason: "overpaid tax",
	})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ledger.ErrDanglingReference)
}

// ===== DISPUTE REVIEW CHAIN =====

func openDispute(t *testing.T, env *ledgerEnv) string {
	t.Helper()
	env.addPayslip("ps-1", "run-1", "emp-1", time.Now())
	d, err := env.svc.CreateDispute(context.Background(), ledger.CreateDisputeRequest{
		PayslipID: "ps-1", EmployeeID: "emp-1", Amount: money("120"), Reason: "missing overtime",
	})
	require.NoError(t, err)
	return d.ID
}

func TestReviewDispute_FullApprovalChain(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv()
	id := openDispute(t, env)

	d, err := env.svc.ReviewDispute(ctx, id, "spec-1", string(ledger.StageSpecialist), true, nil)
	require.NoError(t, err)
	assert.Equal(t, ledger.DisputeUnderReview, d.Status)
	require.Len(t, d.Reviews, 1)
	assert.Equal(t, ledger.StageSpecialist, d.Reviews[0].Stage)

	d, err = env.svc.ReviewDispute(ctx, id, "mgr-1", string(ledger.StageManager), true, nil)
	require.NoError(t, err)
	assert.Equal(t, ledger.DisputeUnderReview, d.Status)

	d, err = env.svc.ReviewDispute(ctx, id, "fin-1", string(ledger.StageFinance), true, nil)
	require.NoError(t, err)
	assert.Equal(t, ledger.DisputeResolved, d.Status)
	require.Len(t, d.Reviews, 3)
	assert.Equal(t, ledger.StageFinance, d.Reviews[2].Stage)

	_, err = env.svc.ReviewDispute(ctx, id, "fin-2", string(ledger.StageFinance), true, nil)
	assert.ErrorIs(t, err, ledger.ErrAlreadyReviewed)
}

func TestReviewDispute_RoleMustMatchStage(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv()
	id := openDispute(t, env)

	// A fresh dispute awaits the specialist; other roles cannot jump in.
	_, err := env.svc.ReviewDispute(ctx, id, "mgr-1", string(ledger.StageManager), true, nil)
	assert.ErrorIs(t, err, ledger.ErrWrongReviewStage)

	_, err = env.svc.ReviewDispute(ctx, id, "spec-1", string(ledger.StageSpecialist), true, nil)
	require.NoError(t, err)

	// The specialist cannot also record the manager stage.
	_, err = env.svc.ReviewDispute(ctx, id, "spec-1", string(ledger.StageSpecialist), true, nil)
	assert.ErrorIs(t, err, ledger.ErrWrongReviewStage)

	d, err := env.repo.GetDisputeByID(ctx, id)
	require.NoError(t, err)
	assert.Len(t, d.Reviews, 1)
}

func TestReviewDispute_RejectionClosesChain(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv()
	id := openDispute(t, env)

	_, err := env.svc.ReviewDispute(ctx, id, "spec-1", string(ledger.StageSpecialist), true, nil)
	require.NoError(t, err)

	note := "no supporting records"
	d, err := env.svc.ReviewDispute(ctx, id, "mgr-1", string(ledger.StageManager), false, &note)
	require.NoError(t, err)
	assert.Equal(t, ledger.DisputeRejected, d.Status)

	_, err = env.svc.ReviewDispute(ctx, id, "fin-1", string(ledger.StageFinance), true, nil)
	assert.ErrorIs(t, err, ledger.ErrAlreadyReviewed)
}

// ===== CLAIMS =====

func TestReviewClaim_SecondReviewFails(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv()
	env.addPayslip("ps-1", "run-1", "emp-1", time.Now())

	c, err := env.svc.CreateClaim(ctx, ledger.CreateClaimRequest{
		PayslipID: "ps-1", EmployeeID: "emp-1", Amount: money("80"), Description: "travel",
	})
	require.NoError(t, err)

	reviewed, err := env.svc.ReviewClaim(ctx, c.ID, ledger.ReviewClaimRequest{Approve: true, ReviewerID: "fin-1"})
	require.NoError(t, err)
	assert.Equal(t, ledger.ClaimApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, "fin-1", *reviewed.ReviewedBy)

	_, err = env.svc.ReviewClaim(ctx, c.ID, ledger.ReviewClaimRequest{Approve: false, ReviewerID: "fin-2"})
	assert.ErrorIs(t, err, ledger.ErrInvalidStatus)
}

// ===== REFUNDS =====

func TestRefundLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv()
	env.addPayslip("ps-1", "run-1", "emp-1", time.Now())

	ref, err := env.svc.CreateRefund(ctx, ledger.CreateRefundRequest{
		PayslipID: "ps-1", EmployeeID: "emp-1", Amount: money("55"), Reason: "overpaid tax",
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.RefundPending, ref.Status)

	// Pay before approve is a status conflict.
	_, err = env.svc.PayRefund(ctx, ref.ID, ledger.PayRefundRequest{PaidInPayrollRunID: "run-1", ActorID: "fin-1"})
	assert.ErrorIs(t, err, ledger.ErrInvalidStatus)

	ref, err = env.svc.ApproveRefund(ctx, ref.ID, "fin-1")
	require.NoError(t, err)
	assert.Equal(t, ledger.RefundApproved, ref.Status)

	// Paying against a nonexistent run fails the reference check.
	_, err = env.svc.PayRefund(ctx, ref.ID, ledger.PayRefundRequest{PaidInPayrollRunID: "run-gone", ActorID: "fin-1"})
	assert.ErrorIs(t, err, ledger.ErrDanglingReference)

	ref, err = env.svc.PayRefund(ctx, ref.ID, ledger.PayRefundRequest{PaidInPayrollRunID: "run-1", ActorID: "fin-1"})
	require.NoError(t, err)
	assert.Equal(t, ledger.RefundPaid, ref.Status)
	require.NotNil(t, ref.PaidInPayrollRunID)
	assert.Equal(t, "run-1", *ref.PaidInPayrollRunID)
}

// ===== RECONCILE =====

func TestReconcile_RelinksToOwnPayslip(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv()
	env.addPayslip("ps-a", "run-valid", "emp-a", time.Now())
	env.addPayslip("ps-b", "run-valid", "emp-b", time.Now())
	env.payslips.validRunID = "run-valid"

	// Legacy record pointing nowhere.
	env.repo.disputes["d-1"] = ledger.Dispute{
		ID: "d-1", PayslipID: "ps-gone", EmployeeID: "emp-a",
		Amount: money("10"), Status: ledger.DisputeOpen,
	}

	result, err := env.svc.ReconcileReferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Repaired)
	require.Len(t, result.Details, 1)
	assert.Equal(t, "ps-a", result.Details[0].NewPayslipID)
	assert.Equal(t, "ps-gone", result.Details[0].OldPayslipID)

	assert.Equal(t, "ps-a", env.repo.disputes["d-1"].PayslipID)
}

func TestReconcile_FallbackIsDeterministic(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv()
	env.addPayslip("ps-a", "run-valid", "emp-a", time.Now())
	env.addPayslip("ps-b", "run-valid", "emp-b", time.Now())
	env.payslips.validRunID = "run-valid"

	// emp-z has no payslip anywhere; the fallback wraps to the first candidate.
	env.repo.claims["c-1"] = ledger.Claim{
		ID: "c-1", PayslipID: "ps-gone", EmployeeID: "emp-z",
		Amount: money("10"), Status: ledger.ClaimSubmitted,
	}

	first, err := env.svc.ReconcileReferences(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.Repaired)
	assert.Equal(t, "ps-a", first.Details[0].NewPayslipID)
}

func TestReconcile_SecondPassRepairsNothing(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv()
	env.addPayslip("ps-a", "run-valid", "emp-a", time.Now())
	env.payslips.validRunID = "run-valid"

	env.repo.refunds["r-1"] = ledger.Refund{
		ID: "r-1", PayslipID: "ps-gone", EmployeeID: "emp-a",
		Amount: money("10"), Status: ledger.RefundPending,
	}

	first, err := env.svc.ReconcileReferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Repaired)

	second, err := env.svc.ReconcileReferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Repaired)
}

func TestReconcile_NoValidRunLeavesRecordAlone(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv()

	env.repo.disputes["d-1"] = ledger.Dispute{
		ID: "d-1", PayslipID: "ps-gone", EmployeeID: "emp-a",
		Amount: money("10"), Status: ledger.DisputeOpen,
	}

	result, err := env.svc.ReconcileReferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Repaired)
	assert.Equal(t, "ps-gone", env.repo.disputes["d-1"].PayslipID)
}

// ===== INTEGRITY SCAN =====

func TestScanIntegrity_ReportsWithoutRepairing(t *testing.T) {
	ctx := context.Background()
	env := newLedgerEnv()
	env.addPayslip("ps-a", "run-valid", "emp-a", time.Now())

	env.repo.disputes["d-ok"] = ledger.Dispute{
		ID: "d-ok", PayslipID: "ps-a", EmployeeID: "emp-a",
		Amount: money("10"), Status: ledger.DisputeOpen,
	}
	env.repo.claims["c-broken"] = ledger.Claim{
		ID: "c-broken", PayslipID: "ps-gone", EmployeeID: "emp-b",
		Amount: money("10"), Status: ledger.ClaimSubmitted,
	}

	report, err := env.svc.ScanIntegrity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "c-broken", report.Findings[0].RecordID)
	assert.Equal(t, string(ledger.KindClaim), report.Findings[0].Kind)
	assert.Contains(t, report.Findings[0].Problem, "ps-gone")

	// Nothing was rewritten.
	assert.Equal(t, "ps-gone", env.repo.claims["c-broken"].PayslipID)
}
