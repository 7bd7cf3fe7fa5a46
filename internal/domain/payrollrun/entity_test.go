package payrollrun

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    RunStatus
		to      RunStatus
		allowed bool
	}{
		{"draft to irregularity resolution", StatusDraft, StatusPendingIrregularity, true},
		{"clean draft straight to finance", StatusDraft, StatusPendingFinanceApproval, true},
		{"draft cannot skip to manager", StatusDraft, StatusPendingManagerApproval, false},
		{"resolution done to finance", StatusPendingIrregularity, StatusPendingFinanceApproval, true},
		{"finance to manager", StatusPendingFinanceApproval, StatusPendingManagerApproval, true},
		{"manager to approved", StatusPendingManagerApproval, StatusApproved, true},
		{"approved to frozen", StatusApproved, StatusFrozen, true},
		{"frozen to paid", StatusFrozen, StatusPaid, true},
		{"unfreeze path", StatusFrozen, StatusPendingManagerApproval, true},
		{"frozen cannot be voided", StatusFrozen, StatusVoided, false},
		{"paid is final", StatusPaid, StatusFrozen, false},
		{"voided is final", StatusVoided, StatusDraft, false},
		{"no backward edge from approved", StatusApproved, StatusPendingManagerApproval, false},
		{"void from draft", StatusDraft, StatusVoided, true},
		{"void from approved", StatusApproved, StatusVoided, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusPaid.IsTerminal())
	assert.True(t, StatusVoided.IsTerminal())
	assert.False(t, StatusDraft.IsTerminal())
	assert.False(t, StatusFrozen.IsTerminal())
}

func TestRecomputeNet(t *testing.T) {
	line := EmployeePayrollLine{
		GrossSalary: decimal.RequireFromString("5000"),
		Taxes:       decimal.RequireFromString("500"),
		Insurance:   decimal.RequireFromString("200"),
		Penalties:   decimal.RequireFromString("150"),
		Refunds:     decimal.RequireFromString("75"),
	}
	line.RecomputeNet()

	assert.True(t, line.NetSalary.Equal(decimal.RequireFromString("4225")))
	assert.True(t, line.NetConsistent())

	line.Penalties = decimal.RequireFromString("151")
	assert.False(t, line.NetConsistent())
	line.RecomputeNet()
	assert.True(t, line.NetConsistent())
}
