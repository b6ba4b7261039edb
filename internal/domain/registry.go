package domain

import "time"

// Subscriber is a private-chat user registered for broadcasts.
type Subscriber struct {
	TelegramID int64
	Username   string
	AddedAt    time.Time
}

// EmployeeStatus tracks whether an employee is still in the group.
type EmployeeStatus string

const (
	EmployeeActive EmployeeStatus = "active"
	EmployeeLeft   EmployeeStatus = "left"
)

// Employee is a branch employee registered in the advertising group.
type Employee struct {
	Seq        int
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
	Phone      string
	JoinedAt   time.Time
	Status     EmployeeStatus
}

// FullName concatenates first and last name, skipping empty parts.
func (e Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	default:
		return e.FirstName + " " + e.LastName
	}
}

// ScreenshotQuota is the number of advertising screenshots each employee
// must post to the group per day.
const ScreenshotQuota = 2

// QuotaEntry is one employee's standing in a quota report.
type QuotaEntry struct {
	Employee Employee
	Count    int
}

// Done reports whether the daily quota is met.
func (q QuotaEntry) Done() bool {
	return q.Count >= ScreenshotQuota
}

// QuotaReport is the result of a scheduled (or manual) quota check.
type QuotaReport struct {
	At        time.Time
	Completed []QuotaEntry
	Debtors   []QuotaEntry
}

// Total is the number of active employees covered by the report.
func (r *QuotaReport) Total() int {
	return len(r.Completed) + len(r.Debtors)
}

// Percent is the share of employees that met the quota, 0-100.
func (r *QuotaReport) Percent() int {
	if r.Total() == 0 {
		return 0
	}
	return len(r.Completed) * 100 / r.Total()
}
