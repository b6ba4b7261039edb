// Package workbook is the spreadsheet backend: subscriber and employee
// registries kept in an xlsx workbook on disk. The store is an explicit
// service object with an Open/Close lifecycle owned by main — no lazily
// initialized global handles.
package workbook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fortunamfo/branchbot/internal/domain"
)

var tracer = otel.Tracer("workbook")

const (
	subscribersSheet = "Subscribers"
	employeesSheet   = "Employees"
	vacanciesSheet   = "Vacancies"
	branchesSheet    = "Branches"
	channelsSheet    = "Channels"

	timeLayout = "2006-01-02 15:04"
)

var subscriberHeader = []string{"Telegram ID", "Added", "Username"}
var employeeHeader = []string{"No", "Telegram ID", "Username", "First name", "Last name", "Phone", "Joined", "Status"}
var vacancyHeader = []string{"ID", "Posted", "Photo ID", "Text"}
var branchHeader = []string{"No", "Name", "Address", "Phone", "Hours", "Latitude", "Longitude"}
var channelHeader = []string{"Channel"}

// Store wraps one xlsx workbook. All mutations are serialized by an
// internal mutex and flushed to disk immediately, so a crash loses at
// most the write in flight.
type Store struct {
	mu     sync.Mutex
	path   string
	file   *excelize.File
	logger *zap.Logger
}

// Open loads the workbook at path, creating it with the registry sheets
// and headers when missing.
func Open(path string, logger *zap.Logger) (*Store, error) {
	var f *excelize.File
	created := false

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		f = excelize.NewFile()
		created = true
		logger.Info("workbook: creating new file", zap.String("path", path))
	} else {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("workbook: open %s: %w", path, err)
		}
	}

	s := &Store{path: path, file: f, logger: logger}
	for _, sheet := range []struct {
		name   string
		header []string
	}{
		{subscribersSheet, subscriberHeader},
		{employeesSheet, employeeHeader},
		{vacanciesSheet, vacancyHeader},
		{branchesSheet, branchHeader},
		{channelsSheet, channelHeader},
	} {
		if err := s.ensureSheet(sheet.name, sheet.header); err != nil {
			return nil, err
		}
	}
	if created {
		// Drop the default sheet excelize seeds new files with.
		_ = f.DeleteSheet("Sheet1")
	}
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("workbook: save %s: %w", path, err)
	}
	return s, nil
}

// Close flushes and releases the workbook.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.file.SaveAs(s.path); err != nil {
		return err
	}
	return s.file.Close()
}

func (s *Store) ensureSheet(name string, header []string) error {
	idx, err := s.file.GetSheetIndex(name)
	if err != nil {
		return err
	}
	if idx < 0 {
		if _, err := s.file.NewSheet(name); err != nil {
			return err
		}
	} else {
		// A pre-existing sheet may have been wiped by hand; it still
		// needs its header row.
		rows, err := s.file.GetRows(name)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			return nil
		}
	}
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := s.file.SetCellValue(name, cell, h); err != nil {
			return err
		}
	}
	return nil
}

// --- SubscriberStore ---

// SaveSubscriber appends the user unless the id is already present.
func (s *Store) SaveSubscriber(ctx context.Context, sub domain.Subscriber) (bool, error) {
	_, span := tracer.Start(ctx, "Workbook.SaveSubscriber")
	defer span.End()
	span.SetAttributes(attribute.Int64("telegram.id", sub.TelegramID))

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.file.GetRows(subscribersSheet)
	if err != nil {
		return false, err
	}
	id := strconv.FormatInt(sub.TelegramID, 10)
	for _, row := range dataRows(rows) {
		if len(row) > 0 && row[0] == id {
			return false, nil
		}
	}

	next := nextRow(rows)
	s.setRow(subscribersSheet, next, []any{
		id,
		sub.AddedAt.Format(timeLayout),
		sub.Username,
	})
	if err := s.file.SaveAs(s.path); err != nil {
		return false, err
	}
	s.logger.Debug("workbook: subscriber registered", zap.Int64("telegram_id", sub.TelegramID))
	return true, nil
}

// ListSubscribers returns every registered subscriber, deduplicated by id.
func (s *Store) ListSubscribers(ctx context.Context) ([]domain.Subscriber, error) {
	_, span := tracer.Start(ctx, "Workbook.ListSubscribers")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.file.GetRows(subscribersSheet)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	subs := make([]domain.Subscriber, 0, len(rows))
	for _, row := range dataRows(rows) {
		if len(row) == 0 {
			continue
		}
		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true

		sub := domain.Subscriber{TelegramID: id}
		if len(row) > 1 {
			sub.AddedAt, _ = time.Parse(timeLayout, row[1])
		}
		if len(row) > 2 {
			sub.Username = row[2]
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// --- EmployeeStore ---

// UpsertEmployee inserts or refreshes an employee row. An existing row
// keeps its sequence number; names, username and status are updated.
func (s *Store) UpsertEmployee(ctx context.Context, e domain.Employee) (bool, error) {
	_, span := tracer.Start(ctx, "Workbook.UpsertEmployee")
	defer span.End()
	span.SetAttributes(attribute.Int64("telegram.id", e.TelegramID))

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.file.GetRows(employeesSheet)
	if err != nil {
		return false, err
	}

	id := strconv.FormatInt(e.TelegramID, 10)
	for i, row := range dataRows(rows) {
		if len(row) > 1 && row[1] == id {
			rowNum := i + 2
			s.setCells(employeesSheet, rowNum, map[int]any{
				3: e.Username,
				4: e.FirstName,
				5: e.LastName,
				8: string(domain.EmployeeActive),
			})
			return false, s.file.SaveAs(s.path)
		}
	}

	next := nextRow(rows)
	s.setRow(employeesSheet, next, []any{
		next - 1,
		id,
		e.Username,
		e.FirstName,
		e.LastName,
		e.Phone,
		e.JoinedAt.Format(timeLayout),
		string(domain.EmployeeActive),
	})
	if err := s.file.SaveAs(s.path); err != nil {
		return false, err
	}
	s.logger.Info("workbook: employee registered",
		zap.Int64("telegram_id", e.TelegramID),
		zap.String("name", e.FullName()),
	)
	return true, nil
}

// SetEmployeeStatus flips the status column of the matching row.
func (s *Store) SetEmployeeStatus(ctx context.Context, telegramID int64, status domain.EmployeeStatus) error {
	_, span := tracer.Start(ctx, "Workbook.SetEmployeeStatus")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.file.GetRows(employeesSheet)
	if err != nil {
		return err
	}
	id := strconv.FormatInt(telegramID, 10)
	for i, row := range dataRows(rows) {
		if len(row) > 1 && row[1] == id {
			s.setCells(employeesSheet, i+2, map[int]any{8: string(status)})
			return s.file.SaveAs(s.path)
		}
	}
	return &domain.ErrNotFound{Resource: "employee", ID: id}
}

// ListActiveEmployees returns employees whose status is active.
func (s *Store) ListActiveEmployees(ctx context.Context) ([]domain.Employee, error) {
	_, span := tracer.Start(ctx, "Workbook.ListActiveEmployees")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.file.GetRows(employeesSheet)
	if err != nil {
		return nil, err
	}

	var out []domain.Employee
	for _, row := range dataRows(rows) {
		e, ok := parseEmployeeRow(row)
		if ok && e.Status == domain.EmployeeActive {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- VacancyStore ---

// SaveVacancy appends a vacancy post.
func (s *Store) SaveVacancy(ctx context.Context, v domain.Vacancy) error {
	_, span := tracer.Start(ctx, "Workbook.SaveVacancy")
	defer span.End()
	span.SetAttributes(attribute.String("vacancy.id", v.ID))

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.file.GetRows(vacanciesSheet)
	if err != nil {
		return err
	}
	s.setRow(vacanciesSheet, nextRow(rows), []any{
		v.ID,
		v.PostedAt.Format(timeLayout),
		v.PhotoID,
		v.Text,
	})
	return s.file.SaveAs(s.path)
}

// DeleteVacancy removes the post with the given id.
func (s *Store) DeleteVacancy(ctx context.Context, id string) error {
	_, span := tracer.Start(ctx, "Workbook.DeleteVacancy")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.file.GetRows(vacanciesSheet)
	if err != nil {
		return err
	}
	for i, row := range dataRows(rows) {
		if len(row) > 0 && row[0] == id {
			if err := s.file.RemoveRow(vacanciesSheet, i+2); err != nil {
				return err
			}
			return s.file.SaveAs(s.path)
		}
	}
	return &domain.ErrNotFound{Resource: "vacancy", ID: id}
}

// ListVacancies returns the board in posting order.
func (s *Store) ListVacancies(ctx context.Context) ([]domain.Vacancy, error) {
	_, span := tracer.Start(ctx, "Workbook.ListVacancies")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.file.GetRows(vacanciesSheet)
	if err != nil {
		return nil, err
	}

	var out []domain.Vacancy
	for _, row := range dataRows(rows) {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		v := domain.Vacancy{ID: row[0]}
		if len(row) > 1 {
			v.PostedAt, _ = time.Parse(timeLayout, row[1])
		}
		if len(row) > 2 {
			v.PhotoID = row[2]
		}
		if len(row) > 3 {
			v.Text = row[3]
		}
		out = append(out, v)
	}
	return out, nil
}

// --- BranchStore ---

// SaveBranch appends a branch and returns its sequence number.
func (s *Store) SaveBranch(ctx context.Context, b domain.Branch) (int, error) {
	_, span := tracer.Start(ctx, "Workbook.SaveBranch")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.file.GetRows(branchesSheet)
	if err != nil {
		return 0, err
	}

	// Sequence numbers keep growing past deletions so references in
	// old chat messages never point at a different branch.
	seq := 0
	for _, row := range dataRows(rows) {
		if n, err := strconv.Atoi(first(row)); err == nil && n > seq {
			seq = n
		}
	}
	seq++

	s.setRow(branchesSheet, nextRow(rows), []any{
		seq,
		b.Name,
		b.Address,
		b.Phone,
		b.Hours,
		b.Latitude,
		b.Longitude,
	})
	if err := s.file.SaveAs(s.path); err != nil {
		return 0, err
	}
	s.logger.Info("workbook: branch added", zap.Int("seq", seq), zap.String("name", b.Name))
	return seq, nil
}

// DeleteBranch removes the branch with the given sequence number.
func (s *Store) DeleteBranch(ctx context.Context, seq int) error {
	_, span := tracer.Start(ctx, "Workbook.DeleteBranch")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.file.GetRows(branchesSheet)
	if err != nil {
		return err
	}
	want := strconv.Itoa(seq)
	for i, row := range dataRows(rows) {
		if first(row) == want {
			if err := s.file.RemoveRow(branchesSheet, i+2); err != nil {
				return err
			}
			return s.file.SaveAs(s.path)
		}
	}
	return &domain.ErrNotFound{Resource: "branch", ID: want}
}

// ListBranches returns the directory.
func (s *Store) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	_, span := tracer.Start(ctx, "Workbook.ListBranches")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.file.GetRows(branchesSheet)
	if err != nil {
		return nil, err
	}

	var out []domain.Branch
	for _, row := range dataRows(rows) {
		b, ok := parseBranchRow(row)
		if ok {
			out = append(out, b)
		}
	}
	return out, nil
}

// --- ChannelStore ---

// AddChannel registers a required channel unless already present.
func (s *Store) AddChannel(ctx context.Context, ref string) (bool, error) {
	_, span := tracer.Start(ctx, "Workbook.AddChannel")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.file.GetRows(channelsSheet)
	if err != nil {
		return false, err
	}
	for _, row := range dataRows(rows) {
		if first(row) == ref {
			return false, nil
		}
	}
	s.setRow(channelsSheet, nextRow(rows), []any{ref})
	if err := s.file.SaveAs(s.path); err != nil {
		return false, err
	}
	s.logger.Info("workbook: channel added", zap.String("channel", ref))
	return true, nil
}

// RemoveChannel drops a required channel.
func (s *Store) RemoveChannel(ctx context.Context, ref string) error {
	_, span := tracer.Start(ctx, "Workbook.RemoveChannel")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.file.GetRows(channelsSheet)
	if err != nil {
		return err
	}
	for i, row := range dataRows(rows) {
		if first(row) == ref {
			if err := s.file.RemoveRow(channelsSheet, i+2); err != nil {
				return err
			}
			return s.file.SaveAs(s.path)
		}
	}
	return &domain.ErrNotFound{Resource: "channel", ID: ref}
}

// ListChannels returns the editable channel list.
func (s *Store) ListChannels(ctx context.Context) ([]string, error) {
	_, span := tracer.Start(ctx, "Workbook.ListChannels")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.file.GetRows(channelsSheet)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, row := range dataRows(rows) {
		if ref := first(row); ref != "" {
			out = append(out, ref)
		}
	}
	return out, nil
}

// --- RegistryExporter ---

// ExportWorkbook returns the workbook file as bytes for the admin
// export command.
func (s *Store) ExportWorkbook(ctx context.Context) ([]byte, error) {
	_, span := tracer.Start(ctx, "Workbook.Export")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	buf, err := s.file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --- helpers ---

// dataRows strips the header row. GetRows can return fewer rows than
// expected when a sheet was emptied by hand, so never slice it blindly.
func dataRows(rows [][]string) [][]string {
	if len(rows) < 2 {
		return nil
	}
	return rows[1:]
}

func first(row []string) string {
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

// nextRow is the first free row below the header.
func nextRow(rows [][]string) int {
	if len(rows) < 1 {
		return 2
	}
	return len(rows) + 1
}

func (s *Store) setRow(sheet string, rowNum int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
		_ = s.file.SetCellValue(sheet, cell, v)
	}
}

func (s *Store) setCells(sheet string, rowNum int, cols map[int]any) {
	for col, v := range cols {
		cell, _ := excelize.CoordinatesToCellName(col, rowNum)
		_ = s.file.SetCellValue(sheet, cell, v)
	}
}

func parseBranchRow(row []string) (domain.Branch, bool) {
	if len(row) < 7 {
		return domain.Branch{}, false
	}
	seq, err := strconv.Atoi(row[0])
	if err != nil {
		return domain.Branch{}, false
	}
	lat, err := strconv.ParseFloat(row[5], 64)
	if err != nil {
		return domain.Branch{}, false
	}
	lon, err := strconv.ParseFloat(row[6], 64)
	if err != nil {
		return domain.Branch{}, false
	}
	return domain.Branch{
		Seq:       seq,
		Name:      row[1],
		Address:   row[2],
		Phone:     row[3],
		Hours:     row[4],
		Latitude:  lat,
		Longitude: lon,
	}, true
}

func parseEmployeeRow(row []string) (domain.Employee, bool) {
	if len(row) < 2 || row[1] == "" {
		return domain.Employee{}, false
	}
	id, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return domain.Employee{}, false
	}

	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	seq, _ := strconv.Atoi(get(0))
	joined, _ := time.Parse(timeLayout, get(6))
	return domain.Employee{
		Seq:        seq,
		TelegramID: id,
		Username:   get(2),
		FirstName:  get(3),
		LastName:   get(4),
		Phone:      get(5),
		JoinedAt:   joined,
		Status:     domain.EmployeeStatus(get(7)),
	}, true
}
