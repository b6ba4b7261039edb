package domain

// ScheduleKind selects the repayment plan.
type ScheduleKind string

const (
	// Annuity keeps the total payment constant; the interest/principal
	// mix shifts over the term.
	Annuity ScheduleKind = "annuity"

	// Differentiated keeps the principal portion constant; the total
	// payment decreases as the balance shrinks.
	Differentiated ScheduleKind = "differentiated"
)

// ScheduleRequest is the input to the amortization engine.
// Amounts are in soum, currency-agnostic as far as the math goes.
type ScheduleRequest struct {
	Principal         float64
	AnnualRatePercent float64
	TermMonths        int

	// GraceFirstMonth waives the first month's interest. The level
	// payment (annuity) is still computed over the full term, so the
	// whole first payment goes to principal.
	GraceFirstMonth bool

	Kind ScheduleKind
}

// ScheduleRow is one line of the repayment plan. Row 0 is the start row
// (zeros, balance = principal); rows 1..n carry the monthly figures.
type ScheduleRow struct {
	Label            string
	Interest         float64
	PrincipalPortion float64
	Payment          float64
	RemainingBalance float64
}

// Schedule is the full plan: start row + one row per month.
// It is constructed once, immutable by convention, and never persisted.
type Schedule struct {
	Request ScheduleRequest
	Rows    []ScheduleRow
}

// TotalInterest sums the interest column over rows 1..n.
func (s *Schedule) TotalInterest() float64 {
	var sum float64
	for _, r := range s.Rows[1:] {
		sum += r.Interest
	}
	return sum
}

// TotalPayment sums the payment column over rows 1..n.
func (s *Schedule) TotalPayment() float64 {
	var sum float64
	for _, r := range s.Rows[1:] {
		sum += r.Payment
	}
	return sum
}

// Product is a loan product offered by the branch. Bounds are enforced by
// the dialog layer before the engine is invoked.
type Product struct {
	Code            string
	Name            string
	RatePercent     float64
	MinPrincipal    float64
	MaxPrincipal    float64
	MinMonths       int
	MaxMonths       int
	GraceFirstMonth bool

	// AsksVehicleYear marks products whose rate depends on the pledged
	// vehicle's age (the dialog collects the year as an extra step).
	AsksVehicleYear bool

	// Info is the product card shown before the calculator starts.
	Info string
}

// AdjustedRate returns the product rate for the given vehicle year.
// Vehicles older than the cutoff cost one extra point.
func (p Product) AdjustedRate(vehicleYear int) float64 {
	if !p.AsksVehicleYear {
		return p.RatePercent
	}
	if vehicleYear < VehicleYearCutoff {
		return p.RatePercent + 1
	}
	return p.RatePercent
}

// VehicleYearCutoff: pledged vehicles first registered before this year
// carry the higher rate.
const VehicleYearCutoff = 2011

// Catalog returns the branch's loan products, keyed by dialog order.
func Catalog() []Product {
	return []Product{
		{
			Code: "pension", Name: "Pension loan", RatePercent: 49,
			MinPrincipal: 3_000_000, MaxPrincipal: 20_000_000,
			MinMonths: 12, MaxMonths: 18,
			Info: "Pension loan:\n" +
				"- for persons entitled to an old-age pension\n" +
				"- monthly pension of at least 750 000 soum\n" +
				"- term: 12 - 18 months\n" +
				"- amount: 3 - 20 mln soum\n" +
				"- documents: passport, pension card",
		},
		{
			Code: "salary", Name: "Salary loan", RatePercent: 49,
			MinPrincipal: 3_000_000, MaxPrincipal: 40_000_000,
			MinMonths: 12, MaxMonths: 36,
			Info: "Salary loan:\n" +
				"- for persons with official income\n" +
				"- term: 12 - 36 months\n" +
				"- amount: 3 - 40 mln soum\n" +
				"- documents: passport, salary card",
		},
		{
			Code: "auto", Name: "Auto pledge loan", RatePercent: 48,
			MinPrincipal: 3_000_000, MaxPrincipal: 300_000_000,
			MinMonths: 12, MaxMonths: 36,
			AsksVehicleYear: true,
			Info: "Auto pledge loan:\n" +
				"- vehicles from year 2000 and newer accepted as pledge\n" +
				"- the pledge must be registered to the owner\n" +
				"- term: 12 - 36 months\n" +
				"- amount: 3 - 300 mln soum\n" +
				"- documents: passport, marriage certificate, vehicle passport",
		},
		{
			Code: "business", Name: "Business loan", RatePercent: 48,
			MinPrincipal: 10_000_000, MaxPrincipal: 50_000_000,
			MinMonths: 12, MaxMonths: 24,
			Info: "Business microloan:\n" +
				"- for registered entrepreneurs\n" +
				"- term: 12 - 24 months\n" +
				"- amount: 10 - 50 mln soum\n" +
				"- documents: passport, bank card, tax ID, business records",
		},
		{
			Code: "partner", Name: "Partner loan", RatePercent: 56,
			MinPrincipal: 3_000_000, MaxPrincipal: 20_000_000,
			MinMonths: 12, MaxMonths: 12,
			GraceFirstMonth: true,
			Info: "Partner loan:\n" +
				"- for public-sector employees borrowing for the first time\n" +
				"- first month interest-free\n" +
				"- term: 12 months\n" +
				"- amount: 3 - 20 mln soum",
		},
	}
}

// ProductByCode looks a product up by its callback code.
func ProductByCode(code string) (Product, bool) {
	for _, p := range Catalog() {
		if p.Code == code {
			return p, true
		}
	}
	return Product{}, false
}
