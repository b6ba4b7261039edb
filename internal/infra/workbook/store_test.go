package workbook_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/fortunamfo/branchbot/internal/domain"
	"github.com/fortunamfo/branchbot/internal/infra/workbook"
)

func openTestStore(t *testing.T) *workbook.Store {
	t.Helper()
	s, err := workbook.Open(filepath.Join(t.TempDir(), "registry.xlsx"), zap.NewNop())
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveSubscriber_Deduplicates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sub := domain.Subscriber{TelegramID: 4242, Username: "@someone", AddedAt: time.Now()}

	added, err := s.SaveSubscriber(ctx, sub)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !added {
		t.Error("first save should report a new subscriber")
	}

	added, err = s.SaveSubscriber(ctx, sub)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if added {
		t.Error("second save must be a no-op")
	}

	subs, err := s.ListSubscribers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscriber, got %d", len(subs))
	}
	if subs[0].TelegramID != 4242 || subs[0].Username != "@someone" {
		t.Errorf("unexpected subscriber: %+v", subs[0])
	}
}

func TestUpsertEmployee_RefreshAndStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e := domain.Employee{
		TelegramID: 777, Username: "@clerk", FirstName: "Aziz", LastName: "Karimov",
		JoinedAt: time.Now(), Status: domain.EmployeeActive,
	}

	added, err := s.UpsertEmployee(ctx, e)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !added {
		t.Error("first upsert should insert")
	}

	e.FirstName = "Azizbek"
	added, err = s.UpsertEmployee(ctx, e)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if added {
		t.Error("second upsert should update in place")
	}

	active, err := s.ListActiveEmployees(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active employee, got %d", len(active))
	}
	if active[0].FirstName != "Azizbek" {
		t.Errorf("first name not refreshed: %+v", active[0])
	}

	if err := s.SetEmployeeStatus(ctx, 777, domain.EmployeeLeft); err != nil {
		t.Fatalf("set status: %v", err)
	}
	active, err = s.ListActiveEmployees(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("expected no active employees after leave, got %d", len(active))
	}
}

// A hand-made workbook can carry the registry sheets with no header
// row at all; opening it must repair the headers instead of the store
// slicing past the end of GetRows.
func TestOpen_RepairsEmptySheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.xlsx")

	f := excelize.NewFile()
	if _, err := f.NewSheet("Subscribers"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	if _, err := f.NewSheet("Employees"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	_ = f.Close()

	s, err := workbook.Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	added, err := s.SaveSubscriber(ctx, domain.Subscriber{TelegramID: 11, AddedAt: time.Now()})
	if err != nil {
		t.Fatalf("save into repaired sheet: %v", err)
	}
	if !added {
		t.Error("subscriber should be new")
	}
	subs, err := s.ListSubscribers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 1 || subs[0].TelegramID != 11 {
		t.Errorf("unexpected subscribers: %+v", subs)
	}

	if err := s.SetEmployeeStatus(ctx, 5, domain.EmployeeLeft); err == nil {
		t.Error("expected ErrNotFound on empty employee sheet")
	}
	active, err := s.ListActiveEmployees(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("expected no employees, got %d", len(active))
	}
}

func TestSetEmployeeStatus_Unknown(t *testing.T) {
	s := openTestStore(t)

	err := s.SetEmployeeStatus(context.Background(), 999, domain.EmployeeLeft)
	if _, ok := err.(*domain.ErrNotFound); !ok {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVacancyLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	v := domain.Vacancy{ID: "a1", Text: "Loan officer wanted", PostedAt: time.Now()}
	if err := s.SaveVacancy(ctx, v); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveVacancy(ctx, domain.Vacancy{ID: "b2", PhotoID: "ph", Text: "Cashier", PostedAt: time.Now()}); err != nil {
		t.Fatalf("save second: %v", err)
	}

	posts, err := s.ListVacancies(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].Text != "Loan officer wanted" || posts[1].PhotoID != "ph" {
		t.Errorf("unexpected posts: %+v", posts)
	}

	if err := s.DeleteVacancy(ctx, "a1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	posts, _ = s.ListVacancies(ctx)
	if len(posts) != 1 || posts[0].ID != "b2" {
		t.Errorf("expected only b2 left, got %+v", posts)
	}

	err = s.DeleteVacancy(ctx, "a1")
	if _, ok := err.(*domain.ErrNotFound); !ok {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBranchLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seq1, err := s.SaveBranch(ctx, domain.Branch{Name: "Center", Address: "Main st 1", Phone: "+998", Hours: "9-18", Latitude: 41.3, Longitude: 69.2})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	seq2, err := s.SaveBranch(ctx, domain.Branch{Name: "Samarkand", Address: "Registan 12", Phone: "+998", Hours: "9-18", Latitude: 39.6, Longitude: 66.9})
	if err != nil {
		t.Fatalf("save second: %v", err)
	}
	if seq1 != 1 || seq2 != 2 {
		t.Errorf("sequence = %d, %d", seq1, seq2)
	}

	if err := s.DeleteBranch(ctx, seq1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Numbers must keep growing past deletions so old references in
	// chat history never point at a different branch.
	seq3, err := s.SaveBranch(ctx, domain.Branch{Name: "New", Address: "x", Phone: "y", Hours: "z", Latitude: 40, Longitude: 68})
	if err != nil {
		t.Fatalf("save third: %v", err)
	}
	if seq3 != 3 {
		t.Errorf("sequence reused after delete: got %d", seq3)
	}

	branches, err := s.ListBranches(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(branches) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(branches))
	}
	if branches[0].Name != "Samarkand" || branches[0].Latitude != 39.6 {
		t.Errorf("unexpected first branch: %+v", branches[0])
	}
}

func TestChannelLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	added, err := s.AddChannel(ctx, "@fortuna_news")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !added {
		t.Error("first add should report new")
	}
	added, err = s.AddChannel(ctx, "@fortuna_news")
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if added {
		t.Error("second add must be a no-op")
	}

	if _, err := s.AddChannel(ctx, "-1001234"); err != nil {
		t.Fatalf("add numeric: %v", err)
	}

	chs, err := s.ListChannels(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(chs) != 2 || chs[0] != "@fortuna_news" || chs[1] != "-1001234" {
		t.Errorf("unexpected channels: %v", chs)
	}

	if err := s.RemoveChannel(ctx, "@fortuna_news"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	err = s.RemoveChannel(ctx, "@fortuna_news")
	if _, ok := err.(*domain.ErrNotFound); !ok {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExportWorkbook(t *testing.T) {
	s := openTestStore(t)

	blob, err := s.ExportWorkbook(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(blob) == 0 {
		t.Error("expected non-empty workbook blob")
	}
}
