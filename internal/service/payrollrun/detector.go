package payrollrun

import (
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/config"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payrollrun"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Detector flags computed lines that deviate from expectation. Findings go to
// the operator resolution loop; the detector itself never mutates a line.
type Detector struct {
	cfg config.DetectionConfig
}

func NewDetector(cfg config.DetectionConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Detect scans one line against its prior-period baseline (nil when the
// employee has no earlier line). A line can yield several irregularities.
func (d *Detector) Detect(line payrollrun.EmployeePayrollLine, prior *payrollrun.EmployeePayrollLine) []payrollrun.Irregularity {
	var found []payrollrun.Irregularity

	// Gross deviating from the prior period by more than the configured ratio.
	if prior != nil && prior.GrossSalary.IsPositive() {
		delta := line.GrossSalary.Sub(prior.GrossSalary).Abs()
		if delta.GreaterThan(prior.GrossSalary.Mul(d.cfg.GrossDeltaRatio)) {
			found = append(found, d.newIrregularity(line, payrollrun.KindGrossDelta,
				payrollrun.ComponentGross, line.GrossSalary, prior.GrossSalary))
		}
	}

	// Negative net. The expected value is the penalty level at which net would
	// have been zero, so a rejection reverts penalties rather than net itself
	// and the net-pay invariant keeps holding.
	if line.NetSalary.IsNegative() {
		expectedPenalties := line.Penalties.Add(line.NetSalary)
		if expectedPenalties.IsNegative() {
			expectedPenalties = decimal.Zero
		}
		found = append(found, d.newIrregularity(line, payrollrun.KindNegativeNet,
			payrollrun.ComponentPenalties, line.Penalties, expectedPenalties))
	}

	// Penalties out of proportion to gross.
	if line.GrossSalary.IsPositive() {
		limit := line.GrossSalary.Mul(d.cfg.PenaltyRatio)
		if line.Penalties.GreaterThan(limit) {
			found = append(found, d.newIrregularity(line, payrollrun.KindPenaltySpike,
				payrollrun.ComponentPenalties, line.Penalties, limit))
		}
	}

	return found
}

func (d *Detector) newIrregularity(line payrollrun.EmployeePayrollLine, kind payrollrun.IrregularityKind, component payrollrun.LineComponent, detected, expected decimal.Decimal) payrollrun.Irregularity {
	return payrollrun.Irregularity{
		ID:            uuid.NewString(),
		PayrollRunID:  line.PayrollRunID,
		EmployeeID:    line.EmployeeID,
		Kind:          kind,
		Component:     component,
		DetectedValue: detected,
		ExpectedValue: expected,
		Status:        payrollrun.IrregularityPending,
	}
}
