package ticket

import "fmt"

var priorityEmoji = map[Priority]string{
	PriorityCritical: "🔴",
	PriorityHigh:     "🟠",
	PriorityMedium:   "🟡",
	PriorityLow:      "🟢",
}

var statusEmoji = map[Status]string{
	StatusTodo:       "📋",
	StatusInProgress: "🔄",
	StatusDone:       "✅",
	StatusCancelled:  "❌",
}

// Emoji returns the marker shown next to a ticket of this priority.
func (p Priority) Emoji() string {
	if e, ok := priorityEmoji[p]; ok {
		return e
	}
	return "⚪"
}

// Emoji returns the marker shown next to a ticket in this status.
func (s Status) Emoji() string {
	if e, ok := statusEmoji[s]; ok {
		return e
	}
	return "📋"
}

// FormatShort renders the two-line list entry used by /tickets, /today and
// the reminder digest.
func FormatShort(t Ticket) string {
	due := ""
	if t.DueDate != "" {
		due = " | 📅 " + t.DueDate
	}
	return fmt.Sprintf("%s %s %s\n   `%s` | %s%s", t.Status.Emoji(), t.Priority.Emoji(), t.Title, t.ID, t.Priority, due)
}
