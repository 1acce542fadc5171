package bot

import (
	"context"

	"vaultbot/internal/gateway"
)

func (b *Bot) cmdStart(ctx context.Context, u gateway.Update) error {
	name := u.FirstName
	if name == "" {
		name = u.DisplayName()
	}
	return b.reply(ctx, u, b.tr.T("start", name))
}

func (b *Bot) cmdHelp(ctx context.Context, u gateway.Update) error {
	return b.reply(ctx, u, b.tr.T("help"))
}

func (b *Bot) cmdClear(ctx context.Context, u gateway.Update) error {
	if b.assistant.History().Clear(u.UserID) {
		return b.reply(ctx, u, b.tr.T("chat.cleared"))
	}
	return b.reply(ctx, u, b.tr.T("chat.already_empty"))
}

func (b *Bot) cmdModel(ctx context.Context, u gateway.Update) error {
	name, model := b.provider, b.model
	key := b.tr.T("llm.key.missing")
	if b.assistant.Configured() {
		name, model = b.assistant.ProviderName(), b.assistant.Model()
		key = b.tr.T("llm.key.present")
	}
	history := b.assistant.History()
	return b.reply(ctx, u, b.tr.T("model.info", name, model, history.MaxHistory(), key, history.ActiveSessions()))
}

func (b *Bot) cmdStats(ctx context.Context, u gateway.Update) error {
	username := u.Username
	if username == "" {
		username = "?"
	}
	history := b.assistant.History()
	msgs := history.PrepareContext(u.UserID)[1:]
	tokens := b.tokenizer.Count(msgs)

	var active, overdue int
	if b.vault != nil {
		st, err := b.vault.Stats(ctx)
		if err != nil {
			return err
		}
		active, overdue = st.Active, st.Overdue
	}

	var used, requests int
	if b.usage != nil {
		totals, err := b.usage.UsageTotals(ctx, u.UserID)
		if err != nil {
			b.logger.Warn("read usage totals", "err", err)
		} else {
			used, requests = totals.TotalTokens, totals.Requests
		}
	}
	return b.reply(ctx, u, b.tr.T("stats.info", username, len(msgs), tokens, active, overdue, used, requests))
}
