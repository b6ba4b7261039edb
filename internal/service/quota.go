package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fortunamfo/branchbot/internal/domain"
	"github.com/fortunamfo/branchbot/internal/infra/observability"
	"github.com/fortunamfo/branchbot/internal/port"
)

// QuotaService tracks the daily advertising-screenshot quota for branch
// employees. Counts live in memory and reset when the local day changes;
// the employee roster is persisted through the store.
type QuotaService struct {
	employees port.EmployeeStore
	now       func() time.Time
	loc       *time.Location
	metrics   *observability.Metrics
	logger    *zap.Logger

	mu     sync.Mutex
	day    string
	counts map[int64]int
}

// NewQuotaService creates the quota tracker. loc fixes the branch's
// local day boundary for resets.
func NewQuotaService(employees port.EmployeeStore, loc *time.Location, metrics *observability.Metrics, logger *zap.Logger) *QuotaService {
	return &QuotaService{
		employees: employees,
		now:       time.Now,
		loc:       loc,
		metrics:   metrics,
		logger:    logger,
		counts:    make(map[int64]int),
	}
}

// RegisterEmployee records a newly joined (or returning) group member
// and reports whether the row was new.
func (q *QuotaService) RegisterEmployee(ctx context.Context, emp domain.Employee) (bool, error) {
	return q.employees.UpsertEmployee(ctx, emp)
}

// MarkLeft flags an employee who left the group; their row is kept for
// history but they stop counting toward the quota report.
func (q *QuotaService) MarkLeft(ctx context.Context, telegramID int64) error {
	return q.employees.SetEmployeeStatus(ctx, telegramID, domain.EmployeeLeft)
}

// CountScreenshot registers one screenshot for the sender and returns
// the updated count for today.
func (q *QuotaService) CountScreenshot(telegramID int64) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollDayLocked()
	q.counts[telegramID]++
	q.metrics.IncrScreenshot()
	return q.counts[telegramID]
}

// ScreenshotCount reports today's count for one employee.
func (q *QuotaService) ScreenshotCount(telegramID int64) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollDayLocked()
	return q.counts[telegramID]
}

// BuildReport splits active employees into those who completed today's
// quota and the debtors who still owe screenshots.
func (q *QuotaService) BuildReport(ctx context.Context) (domain.QuotaReport, error) {
	ctx, span := tracer.Start(ctx, "QuotaService.BuildReport")
	defer span.End()

	active, err := q.employees.ListActiveEmployees(ctx)
	if err != nil {
		return domain.QuotaReport{}, err
	}

	q.mu.Lock()
	q.rollDayLocked()
	report := domain.QuotaReport{At: q.now().In(q.loc)}
	for _, emp := range active {
		entry := domain.QuotaEntry{
			Employee: emp,
			Count:    q.counts[emp.TelegramID],
		}
		if entry.Done() {
			report.Completed = append(report.Completed, entry)
		} else {
			report.Debtors = append(report.Debtors, entry)
		}
	}
	q.mu.Unlock()

	q.metrics.IncrQuotaReport()
	q.logger.Info("quota report built",
		zap.Int("completed", len(report.Completed)),
		zap.Int("debtors", len(report.Debtors)),
	)
	return report, nil
}

// rollDayLocked resets counts when the local calendar day changes.
// Caller holds q.mu.
func (q *QuotaService) rollDayLocked() {
	day := q.now().In(q.loc).Format("2006-01-02")
	if day != q.day {
		q.day = day
		q.counts = make(map[int64]int)
	}
}
