// Package loan implements the amortization engine: given principal, rate
// and term it produces a month-by-month repayment schedule, for both the
// annuity and the differentiated plan, with an optional interest-free
// first month.
//
// The engine is a pure function of its input: no I/O, no hidden state,
// identical requests yield bit-identical schedules. All intermediate
// values stay in full float64 precision; rounding happens only when a
// schedule is turned into a report table.
package loan

import (
	"fmt"
	"math"

	"github.com/fortunamfo/branchbot/internal/domain"
)

// startLabel is the label of row 0; month rows are "<n>-month".
const startLabel = "Start"

// ComputeSchedule builds the repayment schedule for req. It validates the
// request and returns a typed domain error before touching any math:
// principal must be positive, the rate non-negative, the term at least
// one month. A zero rate is legal and degenerates to equal principal
// installments with no interest.
func ComputeSchedule(req domain.ScheduleRequest) (*domain.Schedule, error) {
	if req.Principal <= 0 {
		return nil, &domain.ErrInvalidPrincipal{Principal: req.Principal}
	}
	if req.AnnualRatePercent < 0 {
		return nil, &domain.ErrInvalidRate{Rate: req.AnnualRatePercent}
	}
	if req.TermMonths < 1 {
		return nil, &domain.ErrInvalidTerm{Months: req.TermMonths}
	}

	// Nominal monthly rate: annual percent over 12 months over 100.
	r := req.AnnualRatePercent / 1200

	rows := make([]domain.ScheduleRow, 0, req.TermMonths+1)
	rows = append(rows, domain.ScheduleRow{
		Label:            startLabel,
		RemainingBalance: req.Principal,
	})

	switch req.Kind {
	case domain.Differentiated:
		rows = appendDifferentiated(rows, req, r)
	default:
		rows = appendAnnuity(rows, req, r)
	}

	return &domain.Schedule{Request: req, Rows: rows}, nil
}

// appendAnnuity fills rows 1..n of an annuity plan. The level payment is
// always computed over the full term; under grace the first payment is
// all principal, so the balance falls faster than without grace and the
// loan closes early. A principal portion never exceeds the open balance:
// the closing payment shrinks to whatever is actually owed.
func appendAnnuity(rows []domain.ScheduleRow, req domain.ScheduleRequest, r float64) []domain.ScheduleRow {
	n := req.TermMonths
	pay := annuityPayment(req.Principal, r, n)

	bal := req.Principal
	for i := 1; i <= n; i++ {
		interest := bal * r
		if i == 1 && req.GraceFirstMonth {
			interest = 0
		}
		principal := pay - interest
		if principal > bal {
			principal = bal
		}
		bal -= principal
		rows = append(rows, domain.ScheduleRow{
			Label:            monthLabel(i),
			Interest:         interest,
			PrincipalPortion: principal,
			Payment:          interest + principal,
			RemainingBalance: math.Max(0, bal),
		})
	}
	return rows
}

// appendDifferentiated fills rows 1..n of a differentiated plan: the
// principal portion is constant, interest accrues on the open balance.
func appendDifferentiated(rows []domain.ScheduleRow, req domain.ScheduleRequest, r float64) []domain.ScheduleRow {
	n := req.TermMonths
	principal := req.Principal / float64(n)

	bal := req.Principal
	for i := 1; i <= n; i++ {
		interest := bal * r
		if i == 1 && req.GraceFirstMonth {
			interest = 0
		}
		bal -= principal
		rows = append(rows, domain.ScheduleRow{
			Label:            monthLabel(i),
			Interest:         interest,
			PrincipalPortion: principal,
			Payment:          principal + interest,
			RemainingBalance: math.Max(0, bal),
		})
	}
	return rows
}

// annuityPayment is the level monthly payment P*r/(1-(1+r)^-n). At zero
// rate the formula divides by zero, so the plan degenerates to equal
// installments.
func annuityPayment(principal, r float64, n int) float64 {
	if r == 0 {
		return principal / float64(n)
	}
	return principal * r / (1 - math.Pow(1+r, float64(-n)))
}

func monthLabel(i int) string {
	return fmt.Sprintf("%d-month", i)
}
