package payrollrun

import (
	"testing"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/config"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payrollrun"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDetector() *Detector {
	return NewDetector(config.DetectionConfig{
		GrossDeltaRatio: dec("0.25"),
		PenaltyRatio:    dec("0.5"),
	})
}

func testLine(gross, taxes, insurance, penalties string) payrollrun.EmployeePayrollLine {
	line := payrollrun.EmployeePayrollLine{
		ID:           "line-1",
		PayrollRunID: "run-1",
		EmployeeID:   "emp-1",
		GrossSalary:  dec(gross),
		Taxes:        dec(taxes),
		Insurance:    dec(insurance),
		Penalties:    dec(penalties),
		Refunds:      decimal.Zero,
	}
	line.RecomputeNet()
	return line
}

func TestDetect_GrossDelta(t *testing.T) {
	d := testDetector()
	prior := testLine("4000", "400", "160", "0")

	tests := []struct {
		name    string
		gross   string
		flagged bool
	}{
		{"within ratio", "4500", false},
		{"exactly at ratio", "5000", false},
		{"just above ratio", "5000.01", true},
		{"drop above ratio", "2500", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := testLine(tt.gross, "0", "0", "0")
			found := d.Detect(line, &prior)

			hasDelta := false
			for _, irr := range found {
				if irr.Kind == payrollrun.KindGrossDelta {
					hasDelta = true
					assert.True(t, irr.DetectedValue.Equal(line.GrossSalary))
					assert.True(t, irr.ExpectedValue.Equal(prior.GrossSalary))
					assert.Equal(t, payrollrun.ComponentGross, irr.Component)
				}
			}
			assert.Equal(t, tt.flagged, hasDelta)
		})
	}
}

func TestDetect_NoBaselineSkipsGrossDelta(t *testing.T) {
	d := testDetector()
	line := testLine("50000", "5000", "2000", "0")

	found := d.Detect(line, nil)
	assert.Empty(t, found)
}

func TestDetect_NegativeNet(t *testing.T) {
	d := testDetector()
	// net = 1000 - 100 - 40 - 2000 = -1140
	line := testLine("1000", "100", "40", "2000")

	found := d.Detect(line, nil)

	var negNet *payrollrun.Irregularity
	for i, irr := range found {
		if irr.Kind == payrollrun.KindNegativeNet {
			negNet = &found[i]
		}
	}
	require.NotNil(t, negNet)
	assert.Equal(t, payrollrun.ComponentPenalties, negNet.Component)
	assert.True(t, negNet.DetectedValue.Equal(dec("2000")))
	// Penalty level at which net hits zero.
	assert.True(t, negNet.ExpectedValue.Equal(dec("860")), "expected = %s", negNet.ExpectedValue)
	assert.Equal(t, payrollrun.IrregularityPending, negNet.Status)
}

func TestDetect_NegativeNetExpectedFloorsAtZero(t *testing.T) {
	d := testDetector()
	// Taxes alone exceed gross; even zero penalties cannot make net positive.
	line := testLine("100", "500", "0", "50")

	found := d.Detect(line, nil)

	for _, irr := range found {
		if irr.Kind == payrollrun.KindNegativeNet {
			assert.True(t, irr.ExpectedValue.IsZero())
			return
		}
	}
	t.Fatal("negative net irregularity not found")
}

func TestDetect_PenaltySpike(t *testing.T) {
	d := testDetector()

	// Exactly half of gross is not a spike.
	atLimit := testLine("1000", "0", "0", "500")
	for _, irr := range d.Detect(atLimit, nil) {
		assert.NotEqual(t, payrollrun.KindPenaltySpike, irr.Kind)
	}

	over := testLine("1000", "0", "0", "500.01")
	found := d.Detect(over, nil)
	require.Len(t, found, 1)
	assert.Equal(t, payrollrun.KindPenaltySpike, found[0].Kind)
	assert.True(t, found[0].DetectedValue.Equal(dec("500.01")))
	assert.True(t, found[0].ExpectedValue.Equal(dec("500")))
}

func TestDetect_MultipleFindingsOnOneLine(t *testing.T) {
	d := testDetector()
	prior := testLine("5000", "500", "200", "0")
	line := testLine("1000", "100", "40", "2000")

	found := d.Detect(line, &prior)

	kinds := make(map[payrollrun.IrregularityKind]bool)
	for _, irr := range found {
		kinds[irr.Kind] = true
	}
	assert.Len(t, found, 3)
	assert.True(t, kinds[payrollrun.KindGrossDelta])
	assert.True(t, kinds[payrollrun.KindNegativeNet])
	assert.True(t, kinds[payrollrun.KindPenaltySpike])
}

func TestDetect_ZeroGrossSkipsRatioChecks(t *testing.T) {
	d := testDetector()
	line := testLine("0", "0", "0", "10")

	found := d.Detect(line, nil)
	require.Len(t, found, 1)
	assert.Equal(t, payrollrun.KindNegativeNet, found[0].Kind)
}
