// Package port defines the interfaces the services depend on. Concrete
// adapters live under internal/infra; services never import them
// directly, which keeps the business rules testable with fakes.
package port

import (
	"context"

	"github.com/fortunamfo/branchbot/internal/domain"
)

// SubscriberStore persists private-chat users registered for broadcasts.
type SubscriberStore interface {
	// SaveSubscriber registers a user once; re-registering an existing
	// id is a no-op and returns false.
	SaveSubscriber(ctx context.Context, sub domain.Subscriber) (added bool, err error)

	ListSubscribers(ctx context.Context) ([]domain.Subscriber, error)
}

// EmployeeStore persists branch employees seen in the advertising group.
type EmployeeStore interface {
	// UpsertEmployee inserts a new employee or refreshes an existing
	// row (names, username, status back to active). Returns true when
	// the employee was new.
	UpsertEmployee(ctx context.Context, e domain.Employee) (added bool, err error)

	SetEmployeeStatus(ctx context.Context, telegramID int64, status domain.EmployeeStatus) error

	ListActiveEmployees(ctx context.Context) ([]domain.Employee, error)
}

// VacancyStore persists the vacancy board managed by the administrator.
type VacancyStore interface {
	SaveVacancy(ctx context.Context, v domain.Vacancy) error

	// DeleteVacancy removes a post by id; deleting an unknown id
	// returns ErrNotFound.
	DeleteVacancy(ctx context.Context, id string) error

	ListVacancies(ctx context.Context) ([]domain.Vacancy, error)
}

// BranchStore persists the branch directory.
type BranchStore interface {
	// SaveBranch appends a branch and returns its sequence number.
	SaveBranch(ctx context.Context, b domain.Branch) (seq int, err error)

	DeleteBranch(ctx context.Context, seq int) error

	ListBranches(ctx context.Context) ([]domain.Branch, error)
}

// ChannelStore persists the required-subscription channel list the
// administrator edits at runtime. Channel references are "@username"
// or a numeric chat id.
type ChannelStore interface {
	// AddChannel registers a channel once; re-adding returns false.
	AddChannel(ctx context.Context, ref string) (added bool, err error)

	// RemoveChannel drops a channel; removing an unknown one returns
	// ErrNotFound.
	RemoveChannel(ctx context.Context, ref string) error

	ListChannels(ctx context.Context) ([]string, error)
}

// RegistryExporter produces a spreadsheet dump of the registries for the
// admin export command.
type RegistryExporter interface {
	ExportWorkbook(ctx context.Context) ([]byte, error)
}

// ScheduleRenderer turns a report table into an opaque document blob.
// The renderer owns all presentation concerns; the only behavioral
// contract is that every table row appears as one document row, in order.
type ScheduleRenderer interface {
	Render(table *domain.ReportTable) (blob []byte, filename string, err error)
}

// RateFetcher scrapes the current bank USD quotes.
type RateFetcher interface {
	FetchRates(ctx context.Context) (*domain.RateBoard, error)
}
