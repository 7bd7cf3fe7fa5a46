package payslip

import (
	"context"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payslip"
)

// Service exposes read access to frozen payslips.
type Service struct {
	repo payslip.Repository
}

func NewService(repo payslip.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetPayslip(ctx context.Context, id string) (payslip.Response, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return payslip.Response{}, err
	}
	return payslip.ToResponse(p), nil
}

func (s *Service) ListByRun(ctx context.Context, runID string) ([]payslip.Response, error) {
	slips, err := s.repo.ListByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}
	return mapResponses(slips), nil
}

func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]payslip.Response, error) {
	slips, err := s.repo.ListByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapResponses(slips), nil
}

func mapResponses(slips []payslip.Payslip) []payslip.Response {
	out := make([]payslip.Response, 0, len(slips))
	for _, p := range slips {
		out = append(out, payslip.ToResponse(p))
	}
	return out
}
