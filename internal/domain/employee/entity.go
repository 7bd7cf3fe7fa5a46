package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmploymentStatus enum
type EmploymentStatus string

const (
	StatusActive   EmploymentStatus = "active"
	StatusInactive EmploymentStatus = "inactive"
)

// Employee as exposed by the directory. The payroll core only reads it.
type Employee struct {
	ID            string
	FullName      string
	PayrollAreaID string
	Status        EmploymentStatus
	HireDate      time.Time
}

// CompensationRecord - one salary component active over a date range
type CompensationRecord struct {
	ID            string
	EmployeeID    string
	Amount        decimal.Decimal
	EffectiveDate time.Time
	EndDate       *time.Time
}

// ActiveDuring reports whether the record overlaps the given period.
func (c CompensationRecord) ActiveDuring(periodStart, periodEnd time.Time) bool {
	if c.EffectiveDate.After(periodEnd) {
		return false
	}
	if c.EndDate != nil && c.EndDate.Before(periodStart) {
		return false
	}
	return true
}

// TaxBracket - tax and insurance rates applicable to a gross pay range.
// UpperBound nil means the bracket is open-ended.
type TaxBracket struct {
	ID            string
	LowerBound    decimal.Decimal
	UpperBound    *decimal.Decimal
	TaxRate       decimal.Decimal
	InsuranceRate decimal.Decimal
}

// Matches reports whether gross falls inside the bracket.
func (b TaxBracket) Matches(gross decimal.Decimal) bool {
	if gross.LessThan(b.LowerBound) {
		return false
	}
	if b.UpperBound != nil && gross.GreaterThanOrEqual(*b.UpperBound) {
		return false
	}
	return true
}

// Infraction - a recorded penalty-bearing incident
type Infraction struct {
	ID         string
	EmployeeID string
	Amount     decimal.Decimal
	Reason     string
	OccurredAt time.Time
}
