package ticket

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the ISO date format used for due and completion dates.
const DateLayout = "2006-01-02"

// Status 工单状态
// Status is the lifecycle state of a ticket. The on-disk encoding only
// distinguishes todo and done; the other values exist for callers.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

// Priority 工单优先级
// Priority orders tickets; medium is the default and is never written to disk.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank returns the sort rank (critical first). Unknown values rank as medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityLow:
		return 3
	default:
		return 2
	}
}

// Ticket is the single persisted entity of the vault.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	// DueDate is an ISO date (YYYY-MM-DD) or empty.
	DueDate string
	Tags    []string
	Created string
	Updated string
}

// New builds a todo ticket stamped with now.
func New(id, title string, priority Priority, dueDate string, now time.Time) Ticket {
	if priority == "" {
		priority = PriorityMedium
	}
	stamp := now.Format("2006-01-02T15:04:05")
	return Ticket{
		ID:       id,
		Title:    title,
		Status:   StatusTodo,
		Priority: priority,
		DueDate:  dueDate,
		Created:  stamp,
		Updated:  stamp,
	}
}

// NewID 生成 T-<YYMMDD>-<4 位十六进制> 形式的 ID
// NewID generates an id of the form T-<YYMMDD>-<4 lowercase hex chars>.
func NewID(now time.Time) string {
	u := uuid.New()
	return fmt.Sprintf("T-%s-%s", now.Format("060102"), hex.EncodeToString(u[:2]))
}

// ParsePriority accepts any casing of the four known priorities.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return p, nil
	default:
		return "", fmt.Errorf("unknown priority %q", s)
	}
}
