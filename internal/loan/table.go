package loan

import "github.com/fortunamfo/branchbot/internal/domain"

// Report table column headers, in schedule-row order.
var tableHeader = []string{"Date", "Interest", "Principal", "Monthly payment", "Remaining balance"}

// BuildTable maps a schedule into its display table: formatted body rows
// plus a totals row. The totals row shows the originally requested
// principal in the principal column (equal to the per-month sum by
// construction) and "-" for the remaining balance.
func BuildTable(s *domain.Schedule, title string) *domain.ReportTable {
	body := make([][]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		body = append(body, []string{
			r.Label,
			FormatAmount(r.Interest),
			FormatAmount(r.PrincipalPortion),
			FormatAmount(r.Payment),
			FormatAmount(r.RemainingBalance),
		})
	}

	return &domain.ReportTable{
		Title:  title,
		Header: tableHeader,
		Body:   body,
		Totals: []string{
			"Total",
			FormatAmount(s.TotalInterest()),
			FormatAmount(s.Request.Principal),
			FormatAmount(s.TotalPayment()),
			"-",
		},
	}
}
