package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"vaultbot/internal/assistant"
	"vaultbot/internal/clock"
	"vaultbot/internal/contextmgr"
	"vaultbot/internal/extract"
	"vaultbot/internal/gateway"
	"vaultbot/internal/i18n"
	"vaultbot/internal/provider"
	"vaultbot/internal/reminder"
	"vaultbot/internal/storage"
	"vaultbot/internal/ticket"
	"vaultbot/internal/vault"
	"vaultbot/internal/vaultsync"
)

var testNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

type fakeGateway struct {
	mu     sync.Mutex
	sent   []string
	typing int
	err    error
}

func (g *fakeGateway) Send(_ context.Context, _ int64, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.sent = append(g.sent, text)
	return nil
}

func (g *fakeGateway) Typing(context.Context, int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.typing++
	return nil
}

func (g *fakeGateway) Run(context.Context, gateway.Handler) error { return nil }

func (g *fakeGateway) last() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.sent) == 0 {
		return ""
	}
	return g.sent[len(g.sent)-1]
}

type fakeProvider struct {
	reply string
	err   error
}

func (p *fakeProvider) Complete(context.Context, provider.ChatRequest) (provider.ChatResponse, error) {
	if p.err != nil {
		return provider.ChatResponse{}, p.err
	}
	return provider.ChatResponse{Content: p.reply, Model: "test/model", Usage: provider.Usage{TotalTokens: 9}}, nil
}
func (p *fakeProvider) Name() string         { return "fake" }
func (p *fakeProvider) CurrentModel() string { return "test/model" }

type fakeExtractor struct {
	art extract.Article
	err error
}

func (e *fakeExtractor) Extract(_ context.Context, url string) (extract.Article, error) {
	if e.err != nil {
		return extract.Article{}, e.err
	}
	a := e.art
	a.URL = url
	return a, nil
}

type fakeSyncer struct {
	configured bool
	res        vaultsync.Result
	calls      int
}

func (s *fakeSyncer) Configured() bool { return s.configured }
func (s *fakeSyncer) Sync(context.Context) vaultsync.Result {
	s.calls++
	return s.res
}

type fakeReminders struct {
	settings   reminder.Settings
	active     bool
	recipients bool
}

func (r *fakeReminders) Settings() reminder.Settings { return r.settings }
func (r *fakeReminders) Active() bool                { return r.active }
func (r *fakeReminders) SetTime(_ context.Context, h, m int) error {
	if !r.recipients {
		return reminder.ErrNoRecipients
	}
	r.settings.Hour, r.settings.Minute = h, m
	r.active = true
	return nil
}
func (r *fakeReminders) Enable(context.Context) error {
	if !r.recipients {
		return reminder.ErrNoRecipients
	}
	r.active = true
	return nil
}
func (r *fakeReminders) Disable(context.Context) { r.active = false }

type fakeUsage struct{}

func (fakeUsage) UsageTotals(context.Context, int64) (storage.UsageTotals, error) {
	return storage.UsageTotals{Requests: 3, TotalTokens: 120}, nil
}

type testEnv struct {
	bot   *Bot
	gw    *fakeGateway
	vault *vault.Store
	prov  *fakeProvider
	ext   *fakeExtractor
	sync  *fakeSyncer
	rem   *fakeReminders
	tr    *i18n.I18n
}

func newTestEnv(t *testing.T, allowed ...int64) *testEnv {
	t.Helper()
	tr := i18n.New("en")
	v, err := vault.New(t.TempDir(), "tickets", vault.WithClock(clock.Fake(testNow)), vault.WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("vault.New: %v", err)
	}
	env := &testEnv{
		gw:    &fakeGateway{},
		vault: v,
		prov:  &fakeProvider{reply: "model says hi"},
		ext: &fakeExtractor{art: extract.Article{
			Title: "Go at scale", Text: "words words words", Language: "en", WordCount: 3,
		}},
		sync: &fakeSyncer{},
		rem: &fakeReminders{
			settings:   reminder.Settings{Enabled: true, Hour: 9, Location: time.UTC},
			active:     true,
			recipients: true,
		},
		tr: tr,
	}
	asst := assistant.New(assistant.Options{
		Provider: env.prov,
		History:  contextmgr.NewHistory(20, tr.T("llm.prompt.chat")),
		I18n:     tr,
	})
	env.bot = New(Options{
		Gateway:      env.gw,
		Vault:        v,
		Assistant:    asst,
		Extractor:    env.ext,
		Sync:         env.sync,
		Reminders:    env.rem,
		Usage:        fakeUsage{},
		AllowedUsers: allowed,
		I18n:         tr,
	})
	return env
}

func (e *testEnv) send(text string) string {
	e.bot.Handle(context.Background(), gateway.NewTextUpdate(1, 1, "alice", text))
	return e.gw.last()
}

func TestAccessDenied(t *testing.T) {
	env := newTestEnv(t, 42)
	if got := env.send("/today"); got != env.tr.T("access.denied") {
		t.Fatalf("reply=%q", got)
	}
	if len(env.gw.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(env.gw.sent))
	}
}

func TestEmptyAllowlistAllowsEveryone(t *testing.T) {
	env := newTestEnv(t)
	if !env.bot.Allowed(12345) {
		t.Fatal("empty allowlist should allow everyone")
	}
}

func TestStartAndHelp(t *testing.T) {
	env := newTestEnv(t)
	if got := env.send("/start"); !strings.Contains(got, "alice") {
		t.Fatalf("start=%q", got)
	}
	if got := env.send("/help"); got != env.tr.T("help") {
		t.Fatalf("help=%q", got)
	}
	if got := env.send("/nope"); got != env.tr.T("command.unknown") {
		t.Fatalf("unknown=%q", got)
	}
}

func TestTicketLifecycle(t *testing.T) {
	env := newTestEnv(t)

	got := env.send("/ticket Review PR -p high -d tomorrow -t work,urgent -- check branch")
	if !strings.Contains(got, "**Review PR**") || !strings.Contains(got, "2024-05-11") {
		t.Fatalf("created=%q", got)
	}
	if !strings.Contains(got, "work, urgent") || !strings.Contains(got, "check branch") {
		t.Fatalf("created reply misses tags or description: %q", got)
	}

	all, err := env.vault.ScanAll(context.Background())
	if err != nil || len(all) != 1 {
		t.Fatalf("scan=%v err=%v", all, err)
	}
	id := all[0].ID
	if all[0].Priority != ticket.PriorityHigh {
		t.Fatalf("priority=%q", all[0].Priority)
	}

	if got := env.send("/tickets"); !strings.Contains(got, id) || !strings.Contains(got, env.tr.T("tickets.total", 1)) {
		t.Fatalf("tickets=%q", got)
	}
	if got := env.send("/done " + id); got != env.tr.T("done.ok", id) {
		t.Fatalf("done=%q", got)
	}
	if got := env.send("/tickets"); got != env.tr.T("tickets.none") {
		t.Fatalf("active after done=%q", got)
	}
	if got := env.send("/tickets done"); !strings.Contains(got, id) {
		t.Fatalf("done list=%q", got)
	}
	if got := env.send("/delete_ticket " + id); got != env.tr.T("delete.ok", id) {
		t.Fatalf("delete=%q", got)
	}
	if got := env.send("/delete_ticket " + id); got != env.tr.T("ticket.not_found", id) {
		t.Fatalf("second delete=%q", got)
	}
}

func TestTicketMultiLineTitle(t *testing.T) {
	env := newTestEnv(t)
	got := env.send("/ticket Buy milk\nand bread -p high")
	if !strings.Contains(got, "**Buy milk and bread**") {
		t.Fatalf("created=%q", got)
	}

	all, err := env.vault.ScanAll(context.Background())
	if err != nil || len(all) != 1 {
		t.Fatalf("scan=%v err=%v", all, err)
	}
	if all[0].Title != "Buy milk and bread" || all[0].Priority != ticket.PriorityHigh {
		t.Fatalf("ticket=%+v", all[0])
	}
	if got := env.send("/done " + all[0].ID); got != env.tr.T("done.ok", all[0].ID) {
		t.Fatalf("done=%q", got)
	}
}

func TestTicketUsageAndEmptyTitle(t *testing.T) {
	env := newTestEnv(t)
	if got := env.send("/ticket"); got != env.tr.T("ticket.usage") {
		t.Fatalf("usage=%q", got)
	}
	if got := env.send("/ticket -p high"); got != env.tr.T("ticket.empty_title") {
		t.Fatalf("empty title=%q", got)
	}
	if got := env.send("/done"); got != env.tr.T("done.usage") {
		t.Fatalf("done usage=%q", got)
	}
}

func TestTodayReport(t *testing.T) {
	env := newTestEnv(t)
	overdue := ticket.Ticket{ID: "T-240501-aaaa", Title: "Late", Status: ticket.StatusTodo, Priority: ticket.PriorityHigh, DueDate: "2024-05-01"}
	due := ticket.Ticket{ID: "T-240510-bbbb", Title: "Now", Status: ticket.StatusTodo, Priority: ticket.PriorityLow, DueDate: "2024-05-10"}

	got := env.bot.TodayReport([]ticket.Ticket{overdue}, []ticket.Ticket{overdue, due}, 5)
	if strings.Count(got, "Late") != 1 {
		t.Fatalf("overdue ticket must appear once: %q", got)
	}
	if strings.Index(got, "Late") > strings.Index(got, "Now") {
		t.Fatalf("overdue must come first: %q", got)
	}
	if !strings.Contains(got, env.tr.T("today.active_total", 5)) {
		t.Fatalf("total missing: %q", got)
	}

	empty := env.bot.TodayReport(nil, nil, 0)
	if !strings.Contains(empty, env.tr.T("today.none")) {
		t.Fatalf("empty report=%q", empty)
	}
}

func TestAutoSyncAfterCreate(t *testing.T) {
	env := newTestEnv(t)
	env.bot.autoSync = true
	env.sync.configured = true
	env.sync.res = vaultsync.Result{OK: true, Outcome: vaultsync.OutcomeOK, Backend: vaultsync.BackendRclone}

	got := env.send("/ticket Backup")
	if env.sync.calls != 1 {
		t.Fatalf("sync calls=%d, want 1", env.sync.calls)
	}
	if !strings.Contains(got, env.tr.T("sync.ok.rclone")) {
		t.Fatalf("reply misses sync note: %q", got)
	}
}

func TestSyncCommand(t *testing.T) {
	env := newTestEnv(t)
	if got := env.send("/sync"); got != env.tr.T("sync.not_configured") {
		t.Fatalf("unconfigured=%q", got)
	}
	if env.sync.calls != 0 {
		t.Fatal("sync must not run when unconfigured")
	}

	env.sync.configured = true
	env.sync.res = vaultsync.Result{Outcome: vaultsync.OutcomeTimeout, Timeout: 180 * time.Second}
	if got := env.send("/sync"); got != env.tr.T("sync.err.timeout", 180) {
		t.Fatalf("timeout=%q", got)
	}
	if env.gw.sent[len(env.gw.sent)-2] != env.tr.T("sync.running") {
		t.Fatalf("progress message missing: %q", env.gw.sent)
	}
}

func TestSyncMessages(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		res  vaultsync.Result
		want string
	}{
		{vaultsync.Result{OK: true, Outcome: vaultsync.OutcomeOK, Backend: vaultsync.BackendMirror, Target: "/m", Copied: 2, Skipped: 1}, env.tr.T("sync.ok.mirror", "/m", 2, 1)},
		{vaultsync.Result{OK: true, Outcome: vaultsync.OutcomeBaseline}, env.tr.T("sync.ok.baseline")},
		{vaultsync.Result{Outcome: vaultsync.OutcomeToolMissing}, env.tr.T("sync.err.tool_missing")},
		{vaultsync.Result{Outcome: vaultsync.OutcomeFailed, Detail: "exit 2"}, env.tr.T("sync.err.failed", "exit 2")},
	}
	for _, tt := range tests {
		if got := env.bot.syncMessage(tt.res); got != tt.want {
			t.Errorf("syncMessage(%s)=%q, want %q", tt.res.Outcome, got, tt.want)
		}
	}
}

func TestChatAndClear(t *testing.T) {
	env := newTestEnv(t)
	if got := env.send("how do I delegate?"); got != "model says hi" {
		t.Fatalf("chat=%q", got)
	}
	if env.gw.typing != 1 {
		t.Fatalf("typing=%d, want 1", env.gw.typing)
	}
	if got := env.send("/clear"); got != env.tr.T("chat.cleared") {
		t.Fatalf("clear=%q", got)
	}
	if got := env.send("/clear"); got != env.tr.T("chat.already_empty") {
		t.Fatalf("second clear=%q", got)
	}
}

func TestURLOnlyMessageAnalyzesArticle(t *testing.T) {
	env := newTestEnv(t)
	env.prov.reply = "article summary"
	env.send("https://example.org/post")

	if len(env.gw.sent) != 3 {
		t.Fatalf("sent=%q, want progress, meta, summary", env.gw.sent)
	}
	if !strings.Contains(env.gw.sent[0], "https://example.org/post") {
		t.Fatalf("progress=%q", env.gw.sent[0])
	}
	if !strings.Contains(env.gw.sent[1], "Go at scale") {
		t.Fatalf("meta=%q", env.gw.sent[1])
	}
	if env.gw.sent[2] != "article summary" {
		t.Fatalf("summary=%q", env.gw.sent[2])
	}
}

func TestArticleExtractionFailure(t *testing.T) {
	env := newTestEnv(t)
	env.ext.err = extract.ErrNoContent
	if got := env.send("/article https://example.org/empty"); got != env.tr.T("article.failed") {
		t.Fatalf("reply=%q", got)
	}
	if got := env.send("/article"); got != env.tr.T("article.usage") {
		t.Fatalf("usage=%q", got)
	}
}

func TestBook(t *testing.T) {
	env := newTestEnv(t)
	env.prov.reply = "must read"
	if got := env.send("/book The Manager's Path"); got != "must read" {
		t.Fatalf("book=%q", got)
	}
	if env.gw.sent[0] != env.tr.T("book.evaluating", "The Manager's Path") {
		t.Fatalf("progress=%q", env.gw.sent[0])
	}
}

func TestRemind(t *testing.T) {
	env := newTestEnv(t)
	want := env.tr.T("remind.status", env.tr.T("remind.state.on"), 9, 0, "UTC")
	if got := env.send("/remind"); got != want {
		t.Fatalf("status=%q", got)
	}
	if got := env.send("/remind 7:45"); got != env.tr.T("remind.set", 7, 45, "UTC") {
		t.Fatalf("set=%q", got)
	}
	if got := env.send("/remind"); !strings.Contains(got, "07:45") {
		t.Fatalf("status after set should show the new time: %q", got)
	}
	if got := env.send("/remind off"); got != env.tr.T("remind.off") || env.rem.active {
		t.Fatalf("off=%q active=%v", got, env.rem.active)
	}
	if got := env.send("/remind on"); got != env.tr.T("remind.on", 7, 45) {
		t.Fatalf("on=%q", got)
	}
	if got := env.send("/remind 25:00"); got != env.tr.T("remind.bad_format") {
		t.Fatalf("bad=%q", got)
	}

	env.rem.recipients = false
	if got := env.send("/remind 08:00"); got != env.tr.T("remind.no_recipients") {
		t.Fatalf("no recipients=%q", got)
	}
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	env.send("/ticket Write report -d 2024-05-01")
	env.send("hello")
	got := env.send("/stats")
	if !strings.Contains(got, "@alice") {
		t.Fatalf("stats=%q", got)
	}
	if !strings.Contains(got, "`2`") || !strings.Contains(got, "`120` in `3` requests") {
		t.Fatalf("stats numbers=%q", got)
	}
}

func TestModelInfo(t *testing.T) {
	env := newTestEnv(t)
	got := env.send("/model")
	if !strings.Contains(got, "test/model") || !strings.Contains(got, env.tr.T("llm.key.present")) {
		t.Fatalf("model=%q", got)
	}
}

func TestHandlerErrorBecomesGenericReply(t *testing.T) {
	env := newTestEnv(t)
	env.bot.vault = nil
	if got := env.send("/today"); got != env.tr.T("error.generic") {
		t.Fatalf("reply=%q, want generic error", got)
	}
}

func TestSendFailureIsContained(t *testing.T) {
	env := newTestEnv(t)
	env.gw.err = errors.New("network down")
	env.send("/help")
}
