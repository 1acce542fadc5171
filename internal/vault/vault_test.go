package vault

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vaultbot/internal/clock"
	"vaultbot/internal/security"
	"vaultbot/internal/ticket"
)

func newTestStore(t *testing.T, now time.Time) (*Store, *clock.FakeClock) {
	t.Helper()
	fc := clock.Fake(now)
	s, err := New(t.TempDir(), "tickets", WithClock(fc), WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, fc
}

func writeDaily(t *testing.T, s *Store, name, content string) string {
	t.Helper()
	path := filepath.Join(s.InboxDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func ids(ts []ticket.Ticket) string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return strings.Join(out, ",")
}

var day = time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)

func TestCreateTicketAppendsToDailyFile(t *testing.T) {
	s, _ := newTestStore(t, day)
	ctx := context.Background()

	a, err := s.CreateTicket(ctx, CreateRequest{Title: "Write report", Priority: ticket.PriorityHigh, DueDate: "2024-06-20", Tags: []string{"work"}})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	b, err := s.CreateTicket(ctx, CreateRequest{Title: "Call Bob"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if b.DueDate != "2024-06-10" {
		t.Fatalf("default DueDate=%q, want today", b.DueDate)
	}
	if !strings.HasPrefix(a.ID, "T-240610-") {
		t.Fatalf("ID=%q", a.ID)
	}

	data, err := os.ReadFile(filepath.Join(s.InboxDir(), "2024-06-10.md"))
	if err != nil {
		t.Fatalf("read daily: %v", err)
	}
	want := "- [ ] Write report 📅 2024-06-20\n%%id:" + a.ID + " p:high%%\n" +
		"- [ ] Call Bob 📅 2024-06-10\n%%id:" + b.ID + "%%\n"
	if string(data) != want {
		t.Fatalf("daily file=%q, want %q", data, want)
	}
}

func TestCreateTicketAddsMissingTrailingNewline(t *testing.T) {
	s, _ := newTestStore(t, day)
	path := writeDaily(t, s, "2024-06-10.md", "# Monday")
	tk, err := s.CreateTicket(context.Background(), CreateRequest{Title: "Next"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	data, _ := os.ReadFile(path)
	want := "# Monday\n- [ ] Next 📅 2024-06-10\n%%id:" + tk.ID + "%%\n"
	if string(data) != want {
		t.Fatalf("daily file=%q, want %q", data, want)
	}
}

func TestCreateTicketRejectsEmptyTitle(t *testing.T) {
	s, _ := newTestStore(t, day)
	if _, err := s.CreateTicket(context.Background(), CreateRequest{Title: "  "}); err != ticket.ErrEmptyTitle {
		t.Fatalf("err=%v, want ErrEmptyTitle", err)
	}
}

func TestCreateTicketFoldsLineBreaksInTitle(t *testing.T) {
	s, _ := newTestStore(t, day)
	ctx := context.Background()
	tk, err := s.CreateTicket(ctx, CreateRequest{Title: "Buy milk\nand bread\r\n  today"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if tk.Title != "Buy milk and bread today" {
		t.Fatalf("Title=%q", tk.Title)
	}

	data, _ := os.ReadFile(filepath.Join(s.InboxDir(), "2024-06-10.md"))
	if n := strings.Count(string(data), "\n"); n != 2 {
		t.Fatalf("daily file has %d lines, want 2: %q", n, data)
	}
	all, err := s.ScanAll(ctx)
	if err != nil {
		t.Fatalf("ScanAll: %v", err)
	}
	if len(all) != 1 || all[0].ID != tk.ID || all[0].Title != tk.Title {
		t.Fatalf("scan=%+v", all)
	}

	if _, err := s.CreateTicket(ctx, CreateRequest{Title: "\n\r\n"}); err != ticket.ErrEmptyTitle {
		t.Fatalf("err=%v, want ErrEmptyTitle", err)
	}
}

func TestScanAllSkipsUnpairedAndReadsFilesInOrder(t *testing.T) {
	s, _ := newTestStore(t, day)
	writeDaily(t, s, "2024-06-02.md", "- [ ] Later\n%%id:T-240602-0002%%\n")
	writeDaily(t, s, "2024-06-01.md", "- [ ] Orphan\n- [x] Earlier\n%%id:T-240601-0001%%\nnotes\n")
	writeDaily(t, s, "readme.txt", "- [ ] Ignored\n%%id:T-240601-9999%%\n")
	if err := os.Mkdir(filepath.Join(s.InboxDir(), "archive.md"), 0o755); err != nil {
		t.Fatal(err)
	}

	all, err := s.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("ScanAll: %v", err)
	}
	if got := ids(all); got != "T-240601-0001,T-240602-0002" {
		t.Fatalf("ids=%s", got)
	}
	if all[0].Status != ticket.StatusDone || all[0].Title != "Earlier" {
		t.Fatalf("first=%+v", all[0])
	}
}

func TestListTicketsSortOrder(t *testing.T) {
	s, _ := newTestStore(t, day)
	writeDaily(t, s, "2024-06-01.md", strings.Join([]string{
		"- [ ] Low dated 📅 2024-01-01", "%%id:T-240601-0001 p:low%%",
		"- [ ] Critical undated", "%%id:T-240601-0002 p:critical%%",
		"- [ ] High dated 📅 2024-01-01", "%%id:T-240601-0003 p:high%%",
		"- [ ] High undated", "%%id:T-240601-0004 p:high%%",
		"- [ ] High earlier 📅 2023-12-01", "%%id:T-240601-0005 p:high%%",
		"",
	}, "\n"))

	got, err := s.ListTickets(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	want := "T-240601-0002,T-240601-0005,T-240601-0003,T-240601-0004,T-240601-0001"
	if ids(got) != want {
		t.Fatalf("order=%s, want %s", ids(got), want)
	}

	done := ticket.StatusDone
	got, err = s.ListTickets(context.Background(), &done)
	if err != nil || len(got) != 0 {
		t.Fatalf("done=%v, err=%v", got, err)
	}
}

func TestTodayAndOverdueClassification(t *testing.T) {
	s, _ := newTestStore(t, day)
	writeDaily(t, s, "2024-06-01.md", strings.Join([]string{
		"- [ ] Past 📅 2024-06-09", "%%id:T-240601-0001%%",
		"- [ ] Today 📅 2024-06-10", "%%id:T-240601-0002%%",
		"- [ ] Future 📅 2024-06-11", "%%id:T-240601-0003%%",
		"- [ ] Undated", "%%id:T-240601-0004%%",
		"- [x] Done past 📅 2024-06-01 ✅ 2024-06-02", "%%id:T-240601-0005%%",
		"",
	}, "\n"))
	ctx := context.Background()

	overdue, err := s.OverdueTickets(ctx)
	if err != nil {
		t.Fatalf("OverdueTickets: %v", err)
	}
	if ids(overdue) != "T-240601-0001" {
		t.Fatalf("overdue=%s", ids(overdue))
	}
	today, err := s.TodayTickets(ctx)
	if err != nil {
		t.Fatalf("TodayTickets: %v", err)
	}
	if ids(today) != "T-240601-0001,T-240601-0002,T-240601-0004" {
		t.Fatalf("today=%s", ids(today))
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st != (Stats{Total: 5, Active: 4, Today: 3, Overdue: 1, Done: 1}) {
		t.Fatalf("stats=%+v", st)
	}
}

func TestTodayFollowsClock(t *testing.T) {
	s, fc := newTestStore(t, day)
	writeDaily(t, s, "2024-06-01.md", "- [ ] Tomorrow 📅 2024-06-11\n%%id:T-240601-0001%%\n")
	ctx := context.Background()
	if got, _ := s.OverdueTickets(ctx); len(got) != 0 {
		t.Fatalf("overdue=%s before advancing", ids(got))
	}
	fc.Advance(48 * time.Hour)
	if got, _ := s.OverdueTickets(ctx); ids(got) != "T-240601-0001" {
		t.Fatalf("overdue=%s after advancing", ids(got))
	}
}

func TestUpdateStatusStampsCompletion(t *testing.T) {
	s, _ := newTestStore(t, day)
	path := writeDaily(t, s, "2024-06-01.md", "# head\n- [ ] Ship it 📅 2024-06-05\n%%id:T-240601-0001 p:high%%\ntail")
	ctx := context.Background()

	ok, err := s.UpdateStatus(ctx, "T-240601-0001", ticket.StatusDone)
	if err != nil || !ok {
		t.Fatalf("UpdateStatus ok=%v err=%v", ok, err)
	}
	data, _ := os.ReadFile(path)
	want := "# head\n- [x] Ship it 📅 2024-06-05 ✅ 2024-06-10\n%%id:T-240601-0001 p:high%%\ntail"
	if string(data) != want {
		t.Fatalf("file=%q, want %q", data, want)
	}

	ok, err = s.UpdateStatus(ctx, "T-000000-none", ticket.StatusDone)
	if err != nil || ok {
		t.Fatalf("missing id ok=%v err=%v", ok, err)
	}
}

func TestUpdateTicketRewritesMeta(t *testing.T) {
	s, _ := newTestStore(t, day)
	path := writeDaily(t, s, "2024-06-01.md", "- [ ] Plan 📅 2024-06-05\n%%id:T-240601-0001 p:low%%\n")
	ok, err := s.UpdateTicket(context.Background(), "T-240601-0001", UpdateRequest{Priority: ticket.PriorityMedium, DueDate: "2024-07-01"})
	if err != nil || !ok {
		t.Fatalf("UpdateTicket ok=%v err=%v", ok, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "- [ ] Plan 📅 2024-07-01\n%%id:T-240601-0001%%\n" {
		t.Fatalf("file=%q", data)
	}
}

func TestDeleteTicketRemovesBothLines(t *testing.T) {
	s, _ := newTestStore(t, day)
	path := writeDaily(t, s, "2024-06-01.md", "- [ ] Keep\n%%id:T-240601-0001%%\n- [ ] Drop\n%%id:T-240601-0002%%\nfooter\n")
	ok, err := s.DeleteTicket(context.Background(), "T-240601-0002")
	if err != nil || !ok {
		t.Fatalf("DeleteTicket ok=%v err=%v", ok, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "- [ ] Keep\n%%id:T-240601-0001%%\nfooter\n" {
		t.Fatalf("file=%q", data)
	}
	if _, found, _ := s.FindTicket(context.Background(), "T-240601-0002"); found {
		t.Fatal("deleted ticket still found")
	}
}

func TestDeleteMissingTicketLeavesFilesUntouched(t *testing.T) {
	s, _ := newTestStore(t, day)
	contents := map[string]string{
		"2024-06-01.md": "- [ ] A\n%%id:T-240601-0001%%",
		"2024-06-02.md": "free text\n- [ ] orphan\n",
	}
	paths := map[string]string{}
	mtimes := map[string]time.Time{}
	for name, body := range contents {
		paths[name] = writeDaily(t, s, name, body)
		fi, _ := os.Stat(paths[name])
		mtimes[name] = fi.ModTime()
	}

	ok, err := s.DeleteTicket(context.Background(), "T-999999-ffff")
	if err != nil || ok {
		t.Fatalf("DeleteTicket ok=%v err=%v", ok, err)
	}
	for name, body := range contents {
		data, _ := os.ReadFile(paths[name])
		if string(data) != body {
			t.Fatalf("%s changed: %q", name, data)
		}
		fi, _ := os.Stat(paths[name])
		if !fi.ModTime().Equal(mtimes[name]) {
			t.Fatalf("%s was rewritten", name)
		}
	}
}

func TestExternalEditsArePickedUp(t *testing.T) {
	s, _ := newTestStore(t, day)
	ctx := context.Background()
	tk, err := s.CreateTicket(ctx, CreateRequest{Title: "Draft"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	path := filepath.Join(s.InboxDir(), "2024-06-10.md")
	data, _ := os.ReadFile(path)
	edited := strings.Replace(string(data), "- [ ] Draft", "- [x] Draft (edited)", 1)
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}

	got, found, err := s.FindTicket(ctx, tk.ID)
	if err != nil || !found {
		t.Fatalf("FindTicket found=%v err=%v", found, err)
	}
	if got.Title != "Draft (edited)" || got.Status != ticket.StatusDone {
		t.Fatalf("got %+v", got)
	}
}

func TestMutationTouchesFirstMatchOnly(t *testing.T) {
	s, _ := newTestStore(t, day)
	first := writeDaily(t, s, "2024-06-01.md", "- [ ] Dup one\n%%id:T-240601-0001%%\n")
	second := writeDaily(t, s, "2024-06-02.md", "- [ ] Dup two\n%%id:T-240601-0001%%\n")
	if ok, err := s.UpdateStatus(context.Background(), "T-240601-0001", ticket.StatusDone); err != nil || !ok {
		t.Fatalf("UpdateStatus ok=%v err=%v", ok, err)
	}
	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if !strings.HasPrefix(string(a), "- [x] Dup one") || !strings.HasPrefix(string(b), "- [ ] Dup two") {
		t.Fatalf("first=%q second=%q", a, b)
	}
}

func TestNewRejectsInboxOutsideRoot(t *testing.T) {
	if _, err := New(t.TempDir(), "../elsewhere"); !errors.Is(err, security.ErrPathOutsideRoot) {
		t.Fatalf("New err=%v, want ErrPathOutsideRoot", err)
	}
}
