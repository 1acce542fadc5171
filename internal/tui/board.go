package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vaultbot/internal/i18n"
	"vaultbot/internal/ticket"
	"vaultbot/internal/vault"
)

const loadTimeout = 10 * time.Second

// Source is the slice of the vault the board reads.
type Source interface {
	Stats(ctx context.Context) (vault.Stats, error)
	OverdueTickets(ctx context.Context) ([]ticket.Ticket, error)
	TodayTickets(ctx context.Context) ([]ticket.Ticket, error)
	ActiveTickets(ctx context.Context) ([]ticket.Ticket, error)
}

// Snapshot 看板数据快照
// Snapshot is one read of the vault, split into disjoint sections.
type Snapshot struct {
	Stats   vault.Stats
	Overdue []ticket.Ticket
	// Today holds tickets due today (or undated) that are not overdue.
	Today []ticket.Ticket
	// Later holds active tickets due after today.
	Later    []ticket.Ticket
	LoadedAt time.Time
}

// LoadSnapshot reads src once per section.
func LoadSnapshot(ctx context.Context, src Source) (Snapshot, error) {
	st, err := src.Stats(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	overdue, err := src.OverdueTickets(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	today, err := src.TodayTickets(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	active, err := src.ActiveTickets(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	seen := make(map[string]struct{}, len(today))
	for _, t := range overdue {
		seen[t.ID] = struct{}{}
	}
	snap := Snapshot{Stats: st, Overdue: overdue, LoadedAt: time.Now()}
	for _, t := range today {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		snap.Today = append(snap.Today, t)
	}
	for _, t := range active {
		if _, ok := seen[t.ID]; !ok {
			snap.Later = append(snap.Later, t)
		}
	}
	return snap, nil
}

// LoadFunc produces a fresh snapshot.
type LoadFunc func(ctx context.Context) (Snapshot, error)

type snapshotMsg struct {
	snap Snapshot
	err  error
}

// Board Bubble Tea 工单看板
// Board is the Bubble Tea model behind `vaultbot board`.
type Board struct {
	width  int
	height int
	view   viewport.Model

	load    LoadFunc
	snap    Snapshot
	loaded  bool
	loading bool
	err     error

	theme  Theme
	keys   KeyMap
	tr     *i18n.I18n
	render func(string, int) string
}

func NewBoard(load LoadFunc, tr *i18n.I18n) Board {
	if tr == nil {
		tr = i18n.New("")
	}
	return Board{
		view:    viewport.New(80, 20),
		load:    load,
		loading: true,
		theme:   DarkTheme(),
		keys:    DefaultKeyMap(),
		tr:      tr,
		render:  RenderMarkdown,
	}
}

func (b Board) Init() tea.Cmd {
	return b.refresh()
}

func (b Board) refresh() tea.Cmd {
	load := b.load
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		snap, err := load(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (b Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, b.keys.Quit):
			return b, tea.Quit
		case key.Matches(msg, b.keys.Refresh):
			if b.loading {
				return b, nil
			}
			b.loading = true
			return b, b.refresh()
		case key.Matches(msg, b.keys.Top):
			b.view.GotoTop()
			return b, nil
		case key.Matches(msg, b.keys.Bottom):
			b.view.GotoBottom()
			return b, nil
		}

	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		b.relayout()
		return b, nil

	case snapshotMsg:
		b.loading = false
		b.err = msg.err
		if msg.err == nil {
			b.snap = msg.snap
			b.loaded = true
		}
		b.view.SetContent(b.content())
		return b, nil
	}

	var cmd tea.Cmd
	b.view, cmd = b.view.Update(msg)
	return b, cmd
}

func (b *Board) relayout() {
	h := b.height - 4
	if h < 3 {
		h = 3
	}
	b.view.Width = b.width
	b.view.Height = h
	b.view.SetContent(b.content())
}

func (b Board) content() string {
	if !b.loaded {
		return ""
	}
	return b.render(BoardMarkdown(b.snap, b.tr), b.width)
}

func (b Board) View() string {
	if b.width == 0 || b.height == 0 {
		return b.tr.T("board.loading")
	}

	st := b.snap.Stats
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		b.theme.TitleStyle.Render(b.tr.T("board.title")),
		b.theme.StatsStyle.Render(b.tr.T("board.stats", st.Active, st.Today, st.Overdue, st.Done)),
	)
	if st.Overdue > 0 {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, b.theme.BadgeStyle.Render(fmt.Sprintf("! %d", st.Overdue)))
	}

	body := b.view.View()
	if !b.loaded && b.err == nil {
		body = b.theme.MutedStyle.Render("  " + b.tr.T("board.loading"))
	}
	panel := b.theme.PanelStyle.Width(b.width).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, panel, b.renderStatusBar(b.width))
}

func (b Board) renderStatusBar(width int) string {
	left := " " + b.tr.T("board.help")
	switch {
	case b.err != nil:
		left = " " + b.theme.ErrorStyle.Render(b.tr.T("board.error", b.err))
	case b.loading:
		left = " " + b.tr.T("board.loading")
	}
	right := ""
	if b.loaded {
		right = b.snap.LoadedAt.Format("15:04:05") + "  "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	bar := left + strings.Repeat(" ", gap) + right
	return b.theme.StatusBarStyle.Width(width).Render(bar)
}

// Run 启动看板
// Run starts the board until the user quits or ctx is cancelled.
func Run(ctx context.Context, src Source, tr *i18n.I18n) error {
	load := func(ctx context.Context) (Snapshot, error) { return LoadSnapshot(ctx, src) }
	p := tea.NewProgram(NewBoard(load, tr), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
