package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"vaultbot/internal/i18n"
	"vaultbot/internal/ticket"
)

// RenderMarkdown 使用 Glamour 渲染 markdown 文本
// RenderMarkdown renders markdown text using Glamour. On renderer failure
// the input is returned unchanged.
func RenderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimRight(rendered, "\n")
}

// BoardMarkdown lays a snapshot out as markdown: overdue, due today, later.
func BoardMarkdown(s Snapshot, tr *i18n.I18n) string {
	if len(s.Overdue) == 0 && len(s.Today) == 0 && len(s.Later) == 0 {
		return tr.T("board.empty")
	}
	var b strings.Builder
	section := func(title string, list []ticket.Ticket) {
		if len(list) == 0 {
			return
		}
		b.WriteString(title + "\n\n")
		for _, t := range list {
			b.WriteString("- " + strings.ReplaceAll(ticket.FormatShort(t), "\n   ", "\n  ") + "\n")
		}
		b.WriteString("\n")
	}
	section(tr.T("today.overdue"), s.Overdue)
	section(tr.T("today.planned"), s.Today)
	section(tr.T("board.section.other"), s.Later)
	return strings.TrimRight(b.String(), "\n")
}
