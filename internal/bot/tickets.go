package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vaultbot/internal/gateway"
	"vaultbot/internal/ticket"
	"vaultbot/internal/vault"
	"vaultbot/internal/vaultsync"
)

func (b *Bot) cmdTicket(ctx context.Context, u gateway.Update) error {
	if strings.TrimSpace(u.ArgText) == "" {
		return b.reply(ctx, u, b.tr.T("ticket.usage"))
	}
	// Line breaks in the message would split the task line from its meta line.
	args, err := ticket.ParseCreateArgs(strings.Join(u.Args, " "), b.vault.Today())
	if errors.Is(err, ticket.ErrEmptyTitle) {
		return b.reply(ctx, u, b.tr.T("ticket.empty_title"))
	}
	if err != nil {
		return err
	}

	t, err := b.vault.CreateTicket(ctx, vault.CreateRequest{
		Title:       args.Title,
		Description: args.Description,
		Priority:    args.Priority,
		DueDate:     args.DueDate,
		Tags:        args.Tags,
	})
	if err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}

	suffix := ""
	if res, ran := b.syncAfterMutation(ctx); ran && res.OK {
		suffix = b.tr.T("sync.after", b.syncMessage(res))
	}
	return b.reply(ctx, u, b.tr.T("ticket.created", b.FormatFull(t)+suffix))
}

func (b *Bot) cmdTickets(ctx context.Context, u gateway.Update) error {
	filter := ""
	if len(u.Args) > 0 {
		filter = strings.ToLower(u.Args[0])
	}

	var (
		list   []ticket.Ticket
		header string
		err    error
	)
	switch filter {
	case "all":
		list, err = b.vault.ListTickets(ctx, nil)
		header = b.tr.T("tickets.all")
	case "done":
		done := ticket.StatusDone
		list, err = b.vault.ListTickets(ctx, &done)
		header = b.tr.T("tickets.done")
	default:
		list, err = b.vault.ActiveTickets(ctx)
		header = b.tr.T("tickets.active")
	}
	if err != nil {
		return fmt.Errorf("list tickets: %w", err)
	}
	if len(list) == 0 {
		return b.reply(ctx, u, b.tr.T("tickets.none"))
	}

	lines := []string{header, ""}
	for i, t := range list {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, ticket.FormatShort(t)))
	}
	lines = append(lines, "\n"+b.tr.T("tickets.total", len(list)))
	return b.reply(ctx, u, strings.Join(lines, "\n"))
}

func (b *Bot) cmdToday(ctx context.Context, u gateway.Update) error {
	today, err := b.vault.TodayTickets(ctx)
	if err != nil {
		return err
	}
	overdue, err := b.vault.OverdueTickets(ctx)
	if err != nil {
		return err
	}
	active, err := b.vault.ActiveTickets(ctx)
	if err != nil {
		return err
	}
	return b.reply(ctx, u, b.TodayReport(overdue, today, len(active)))
}

// TodayReport renders /today: overdue tickets first, then the rest of
// today's tickets, then the active total.
func (b *Bot) TodayReport(overdue, today []ticket.Ticket, activeTotal int) string {
	lines := []string{b.tr.T("today.header")}

	overdueIDs := make(map[string]struct{}, len(overdue))
	if len(overdue) > 0 {
		lines = append(lines, b.tr.T("today.overdue"))
		for _, t := range overdue {
			overdueIDs[t.ID] = struct{}{}
			lines = append(lines, "  • "+ticket.FormatShort(t))
		}
		lines = append(lines, "")
	}

	var planned []ticket.Ticket
	for _, t := range today {
		if _, seen := overdueIDs[t.ID]; !seen {
			planned = append(planned, t)
		}
	}
	if len(planned) > 0 {
		lines = append(lines, b.tr.T("today.planned"))
		for _, t := range planned {
			lines = append(lines, "  • "+ticket.FormatShort(t))
		}
	} else if len(overdue) == 0 {
		lines = append(lines, b.tr.T("today.none"))
	}

	lines = append(lines, "\n"+b.tr.T("today.active_total", activeTotal))
	return strings.Join(lines, "\n")
}

func (b *Bot) cmdDone(ctx context.Context, u gateway.Update) error {
	if len(u.Args) == 0 {
		return b.reply(ctx, u, b.tr.T("done.usage"))
	}
	id := u.Args[0]
	ok, err := b.vault.UpdateStatus(ctx, id, ticket.StatusDone)
	if err != nil {
		return fmt.Errorf("complete ticket: %w", err)
	}
	if !ok {
		return b.reply(ctx, u, b.tr.T("ticket.not_found", id))
	}
	if err := b.reply(ctx, u, b.tr.T("done.ok", id)); err != nil {
		return err
	}
	b.syncAfterMutation(ctx)
	return nil
}

func (b *Bot) cmdDelete(ctx context.Context, u gateway.Update) error {
	if len(u.Args) == 0 {
		return b.reply(ctx, u, b.tr.T("delete.usage"))
	}
	id := u.Args[0]
	ok, err := b.vault.DeleteTicket(ctx, id)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	if !ok {
		return b.reply(ctx, u, b.tr.T("ticket.not_found", id))
	}
	if err := b.reply(ctx, u, b.tr.T("delete.ok", id)); err != nil {
		return err
	}
	b.syncAfterMutation(ctx)
	return nil
}

func (b *Bot) cmdSync(ctx context.Context, u gateway.Update) error {
	if b.sync == nil || !b.sync.Configured() {
		return b.reply(ctx, u, b.tr.T("sync.not_configured"))
	}
	if err := b.reply(ctx, u, b.tr.T("sync.running")); err != nil {
		return err
	}
	return b.reply(ctx, u, b.syncMessage(b.sync.Sync(ctx)))
}

// syncAfterMutation runs the automatic sync when it is enabled and a
// backend is configured. ran is false when nothing was attempted.
func (b *Bot) syncAfterMutation(ctx context.Context) (res vaultsync.Result, ran bool) {
	if !b.autoSync || b.sync == nil || !b.sync.Configured() {
		return vaultsync.Result{}, false
	}
	return b.sync.Sync(ctx), true
}

func (b *Bot) syncMessage(res vaultsync.Result) string {
	switch res.Outcome {
	case vaultsync.OutcomeOK:
		if res.Backend == vaultsync.BackendMirror {
			return b.tr.T("sync.ok.mirror", res.Target, res.Copied, res.Skipped)
		}
		return b.tr.T("sync.ok.rclone")
	case vaultsync.OutcomeBaseline:
		return b.tr.T("sync.ok.baseline")
	case vaultsync.OutcomeNotConfigured:
		return b.tr.T("sync.not_configured")
	case vaultsync.OutcomeToolMissing:
		return b.tr.T("sync.err.tool_missing")
	case vaultsync.OutcomeTimeout:
		return b.tr.T("sync.err.timeout", int(res.Timeout.Seconds()))
	default:
		return b.tr.T("sync.err.failed", res.Detail)
	}
}

// FormatFull renders every known field of t with localized labels.
func (b *Bot) FormatFull(t ticket.Ticket) string {
	lines := []string{
		fmt.Sprintf("%s %s **%s**", t.Status.Emoji(), t.Priority.Emoji(), t.Title),
		b.tr.T("ticket.field.id", t.ID),
		b.tr.T("ticket.field.state", t.Status, t.Priority),
	}
	if t.DueDate != "" {
		lines = append(lines, b.tr.T("ticket.field.due", t.DueDate))
	}
	if len(t.Tags) > 0 {
		lines = append(lines, b.tr.T("ticket.field.tags", strings.Join(t.Tags, ", ")))
	}
	if t.Description != "" {
		lines = append(lines, "\n"+b.tr.T("ticket.field.desc", t.Description))
	}
	created := t.Created
	if len(created) > 16 {
		created = created[:16]
	}
	lines = append(lines, "\n"+b.tr.T("ticket.field.create", created))
	return strings.Join(lines, "\n")
}
