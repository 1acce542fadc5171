package vault

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"vaultbot/internal/clock"
	"vaultbot/internal/security"
	"vaultbot/internal/ticket"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// Store 以每日 markdown 文件为存储的工单库
// Store is a ticket database backed by a directory of daily markdown files.
// Every query re-reads every file; there is no index. All operations are
// serialized behind one mutex.
type Store struct {
	mu     sync.Mutex
	root   string
	inbox  string
	clock  clock.Clock
	loc    *time.Location
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for ids, creation stamps and "today".
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLocation sets the timezone in which "today" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New opens the vault at root, creating <root>/<inboxDir> if needed. The
// inbox must stay inside the root.
func New(root, inboxDir string, opts ...Option) (*Store, error) {
	realRoot, inbox, err := security.ConfineDir(root, inboxDir)
	if err != nil {
		return nil, fmt.Errorf("inbox dir: %w", err)
	}
	s := &Store{
		root:   realRoot,
		inbox:  inbox,
		clock:  clock.Real(),
		loc:    time.Local,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(s.inbox, dirPerms); err != nil {
		return nil, fmt.Errorf("create inbox dir: %w", err)
	}
	return s, nil
}

// Root returns the vault root directory.
func (s *Store) Root() string { return s.root }

// InboxDir returns the directory holding the daily files.
func (s *Store) InboxDir() string { return s.inbox }

// Today returns the current date in the store's location.
func (s *Store) Today() time.Time {
	return s.clock.Now().In(s.loc)
}

func (s *Store) todayISO() string {
	return s.Today().Format(ticket.DateLayout)
}

func (s *Store) dailyPath(day time.Time) string {
	return filepath.Join(s.inbox, day.Format(ticket.DateLayout)+".md")
}

// dailyFiles lists the *.md files of the inbox in lexicographic order.
func (s *Store) dailyFiles() ([]string, error) {
	entries, err := os.ReadDir(s.inbox)
	if err != nil {
		return nil, fmt.Errorf("read inbox: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		paths = append(paths, filepath.Join(s.inbox, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(string(data), "\n"), nil
}

func writeFile(path, content string) error {
	_, statErr := os.Stat(path)
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if os.IsNotExist(statErr) {
		if err := os.Chmod(path, filePerms); err != nil {
			return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

// scanLocked decodes every ticket of every daily file. Callers hold s.mu.
func (s *Store) scanLocked(ctx context.Context) ([]ticket.Ticket, error) {
	paths, err := s.dailyFiles()
	if err != nil {
		return nil, err
	}
	stamp := s.clock.Now().In(s.loc).Format("2006-01-02T15:04:05")
	var out []ticket.Ticket
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines, err := readLines(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		ticket.Walk(lines, func(_ int, t ticket.Ticket) bool {
			t.Created, t.Updated = stamp, stamp
			out = append(out, t)
			return true
		})
	}
	return out, nil
}

// mutateLocked finds the first ticket with id in file order, lets fn edit
// the file's lines, and writes the file back. Callers hold s.mu.
func (s *Store) mutateLocked(ctx context.Context, id string, fn func(t ticket.Ticket, lines []string, i int) []string) (bool, error) {
	paths, err := s.dailyFiles()
	if err != nil {
		return false, err
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		lines, err := readLines(path)
		if err != nil {
			return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		found, at := ticket.Ticket{}, -1
		ticket.Walk(lines, func(i int, t ticket.Ticket) bool {
			if t.ID != id {
				return true
			}
			found, at = t, i
			return false
		})
		if at < 0 {
			continue
		}
		lines = fn(found, lines, at)
		if err := writeFile(path, strings.Join(lines, "\n")); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// CreateRequest carries the fields accepted when creating a ticket.
type CreateRequest struct {
	Title       string
	Description string
	Priority    ticket.Priority
	// DueDate defaults to today when empty.
	DueDate string
	Tags    []string
}

// CreateTicket appends a new ticket to today's daily file.
func (s *Store) CreateTicket(ctx context.Context, req CreateRequest) (ticket.Ticket, error) {
	req.Title = singleLine(req.Title)
	if req.Title == "" {
		return ticket.Ticket{}, ticket.ErrEmptyTitle
	}
	if err := ctx.Err(); err != nil {
		return ticket.Ticket{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().In(s.loc)
	due := req.DueDate
	if due == "" {
		due = now.Format(ticket.DateLayout)
	}
	t := ticket.New(ticket.NewID(now), req.Title, req.Priority, due, now)
	t.Description = req.Description
	t.Tags = append([]string(nil), req.Tags...)

	path := s.dailyPath(now)
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return ticket.Ticket{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += t.TaskLine(now) + "\n" + t.MetaLine() + "\n"
	if err := writeFile(path, content); err != nil {
		return ticket.Ticket{}, err
	}
	s.logger.Info("ticket created", "id", t.ID, "title", t.Title, "file", filepath.Base(path))
	return t, nil
}

// singleLine folds every whitespace run, line breaks included, into one
// space. A record is exactly two lines, so the title must fit on one.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ScanAll returns every ticket in file order.
func (s *Store) ScanAll(ctx context.Context) ([]ticket.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanLocked(ctx)
}

// ListTickets returns all tickets, optionally only those in status, sorted
// by priority rank then due date (missing due date last).
func (s *Store) ListTickets(ctx context.Context, status *ticket.Status) ([]ticket.Ticket, error) {
	all, err := s.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, t := range all {
		if status == nil || t.Status == *status {
			out = append(out, t)
		}
	}
	SortTickets(out)
	return out, nil
}

// SortTickets orders tickets by (priority rank, due date) in place.
func SortTickets(ts []ticket.Ticket) {
	sort.SliceStable(ts, func(i, j int) bool {
		ri, rj := ts[i].Priority.Rank(), ts[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return dueKey(ts[i]) < dueKey(ts[j])
	})
}

func dueKey(t ticket.Ticket) string {
	if t.DueDate == "" {
		return "9999"
	}
	return t.DueDate
}

// ActiveTickets returns todo tickets in list order.
func (s *Store) ActiveTickets(ctx context.Context) ([]ticket.Ticket, error) {
	todo := ticket.StatusTodo
	return s.ListTickets(ctx, &todo)
}

// TodayTickets returns active tickets due today or earlier, or undated.
func (s *Store) TodayTickets(ctx context.Context) ([]ticket.Ticket, error) {
	active, err := s.ActiveTickets(ctx)
	if err != nil {
		return nil, err
	}
	today := s.todayISO()
	var out []ticket.Ticket
	for _, t := range active {
		if t.DueDate == "" || t.DueDate <= today {
			out = append(out, t)
		}
	}
	return out, nil
}

// OverdueTickets returns active tickets whose due date is before today.
func (s *Store) OverdueTickets(ctx context.Context) ([]ticket.Ticket, error) {
	active, err := s.ActiveTickets(ctx)
	if err != nil {
		return nil, err
	}
	today := s.todayISO()
	var out []ticket.Ticket
	for _, t := range active {
		if t.DueDate != "" && t.DueDate < today {
			out = append(out, t)
		}
	}
	return out, nil
}

// UpdateStatus rewrites the task line of ticket id with status. A ticket
// moved to done is stamped with today's date.
func (s *Store) UpdateStatus(ctx context.Context, id string, status ticket.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	today := s.Today()
	ok, err := s.mutateLocked(ctx, id, func(t ticket.Ticket, lines []string, i int) []string {
		t.Status = status
		lines[i] = t.TaskLine(today)
		return lines
	})
	if ok {
		s.logger.Info("ticket status updated", "id", id, "status", status)
	}
	return ok, err
}

// UpdateRequest carries optional field changes; zero values leave the
// field as it is.
type UpdateRequest struct {
	Priority ticket.Priority
	DueDate  string
	// Description is accepted but has no place in the on-disk record.
	Description string
}

// UpdateTicket rewrites the task line and, when it still matches the meta
// grammar, the meta line of ticket id.
func (s *Store) UpdateTicket(ctx context.Context, id string, req UpdateRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	today := s.Today()
	ok, err := s.mutateLocked(ctx, id, func(t ticket.Ticket, lines []string, i int) []string {
		if req.Priority != "" {
			t.Priority = req.Priority
		}
		if req.DueDate != "" {
			t.DueDate = req.DueDate
		}
		lines[i] = t.TaskLine(today)
		if i+1 < len(lines) && ticket.IsMetaLine(lines[i+1]) {
			lines[i+1] = t.MetaLine()
		}
		return lines
	})
	if ok {
		s.logger.Info("ticket updated", "id", id)
	}
	return ok, err
}

// DeleteTicket removes both lines of ticket id. Nothing is written when the
// id is not found.
func (s *Store) DeleteTicket(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.mutateLocked(ctx, id, func(_ ticket.Ticket, lines []string, i int) []string {
		if i+1 < len(lines) && ticket.IsMetaLine(lines[i+1]) {
			lines = append(lines[:i+1], lines[i+2:]...)
		}
		return append(lines[:i], lines[i+1:]...)
	})
	if ok {
		s.logger.Info("ticket deleted", "id", id)
	}
	return ok, err
}

// FindTicket returns the first ticket with id in file order.
func (s *Store) FindTicket(ctx context.Context, id string) (ticket.Ticket, bool, error) {
	all, err := s.ScanAll(ctx)
	if err != nil {
		return ticket.Ticket{}, false, err
	}
	for _, t := range all {
		if t.ID == id {
			return t, true, nil
		}
	}
	return ticket.Ticket{}, false, nil
}

// Stats 工单统计
// Stats summarizes the vault for /stats and the board header.
type Stats struct {
	Total   int
	Active  int
	Today   int
	Overdue int
	Done    int
}

// Stats counts tickets from a single scan.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	all, err := s.ScanAll(ctx)
	if err != nil {
		return Stats{}, err
	}
	today := s.todayISO()
	st := Stats{Total: len(all)}
	for _, t := range all {
		switch t.Status {
		case ticket.StatusDone:
			st.Done++
		case ticket.StatusTodo:
			st.Active++
			if t.DueDate == "" || t.DueDate <= today {
				st.Today++
			}
			if t.DueDate != "" && t.DueDate < today {
				st.Overdue++
			}
		}
	}
	return st, nil
}
