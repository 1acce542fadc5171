package reminder

import (
	"strings"

	"vaultbot/internal/i18n"
	"vaultbot/internal/ticket"
)

// BuildDigest renders the morning overview: overdue tickets, then today's
// tickets that are not overdue, then the number of undated active tickets
// outside today's list, then the active total.
func BuildDigest(tr *i18n.I18n, overdue, today, active []ticket.Ticket) string {
	overdueIDs := idSet(overdue)
	todayIDs := idSet(today)

	lines := []string{tr.T("digest.header")}
	if len(overdue) > 0 {
		lines = append(lines, tr.T("digest.overdue"))
		for _, t := range overdue {
			lines = append(lines, "  • "+ticket.FormatShort(t))
		}
		lines = append(lines, "")
	}

	var planned []ticket.Ticket
	for _, t := range today {
		if !overdueIDs[t.ID] {
			planned = append(planned, t)
		}
	}
	if len(planned) > 0 {
		lines = append(lines, tr.T("digest.planned"))
		for _, t := range planned {
			lines = append(lines, "  • "+ticket.FormatShort(t))
		}
		lines = append(lines, "")
	}

	undated := 0
	for _, t := range active {
		if t.DueDate == "" && !todayIDs[t.ID] {
			undated++
		}
	}
	if undated > 0 {
		lines = append(lines, tr.T("digest.undated", undated))
	}

	if len(overdue) == 0 && len(planned) == 0 && undated == 0 {
		lines = append(lines, tr.T("digest.empty"))
	}
	lines = append(lines, tr.T("digest.active", len(active)), tr.T("digest.footer"))
	return strings.Join(lines, "\n")
}

func idSet(ts []ticket.Ticket) map[string]bool {
	set := make(map[string]bool, len(ts))
	for _, t := range ts {
		set[t.ID] = true
	}
	return set
}
