package bot

import (
	"context"
	"strings"

	"vaultbot/internal/gateway"
)

func (b *Bot) cmdArticle(ctx context.Context, u gateway.Update) error {
	if len(u.Args) == 0 {
		return b.reply(ctx, u, b.tr.T("article.usage"))
	}
	return b.processArticle(ctx, u, u.Args[0])
}

func (b *Bot) processArticle(ctx context.Context, u gateway.Update, url string) error {
	if err := b.reply(ctx, u, b.tr.T("article.analyzing", url)); err != nil {
		return err
	}
	if b.extractor == nil {
		return b.reply(ctx, u, b.tr.T("article.failed"))
	}
	art, err := b.extractor.Extract(ctx, url)
	if err != nil {
		b.logger.Warn("article extraction failed", "url", url, "err", err)
		return b.reply(ctx, u, b.tr.T("article.failed"))
	}

	meta := b.tr.T("article.meta", art.Title, b.assistant.LanguageName(art.Language), art.WordCount)
	if err := b.reply(ctx, u, meta); err != nil {
		return err
	}
	b.typing(ctx, u)
	return b.reply(ctx, u, b.assistant.SummarizeArticle(ctx, u.UserID, art))
}

func (b *Bot) cmdBook(ctx context.Context, u gateway.Update) error {
	info := strings.TrimSpace(u.ArgText)
	if info == "" {
		return b.reply(ctx, u, b.tr.T("book.usage"))
	}
	if err := b.reply(ctx, u, b.tr.T("book.evaluating", info)); err != nil {
		return err
	}
	b.typing(ctx, u)
	return b.reply(ctx, u, b.assistant.EvaluateBook(ctx, u.UserID, info))
}
