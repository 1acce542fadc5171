package ticket

import (
	"regexp"
	"strings"
	"time"
)

// 两行编码：任务行 + 元数据行
// Two-line record: a checkbox task line followed by a %%…%% meta line.
var (
	taskLinePattern = regexp.MustCompile(`^\s*-\s+\[([ xX])\]\s+(.*)`)
	metaLinePattern = regexp.MustCompile(`%%id:(T-[\w-]+)(?:\s+p:(\w+))?%%`)
	duePattern      = regexp.MustCompile(`📅\s*(\d{4}-\d{2}-\d{2})`)
	donePattern     = regexp.MustCompile(`✅\s*(\d{4}-\d{2}-\d{2})`)
	multiSpace      = regexp.MustCompile(`\s{2,}`)
)

// TaskLine renders the checkbox line. A done ticket is stamped with today,
// not with its original completion date.
func (t Ticket) TaskLine(today time.Time) string {
	box := "[ ]"
	if t.Status == StatusDone {
		box = "[x]"
	}
	parts := []string{"- " + box + " " + t.Title}
	if t.DueDate != "" {
		parts = append(parts, "📅 "+t.DueDate)
	}
	if t.Status == StatusDone {
		parts = append(parts, "✅ "+today.Format(DateLayout))
	}
	return strings.Join(parts, " ")
}

// MetaLine renders the hidden metadata comment. Medium priority is implied.
func (t Ticket) MetaLine() string {
	meta := "id:" + t.ID
	if t.Priority != "" && t.Priority != PriorityMedium {
		meta += " p:" + string(t.Priority)
	}
	return "%%" + meta + "%%"
}

// IsMetaLine reports whether line carries a ticket meta comment.
func IsMetaLine(line string) bool {
	return metaLinePattern.MatchString(line)
}

// DecodeAt decodes the ticket whose task line is lines[i]. It fails when
// lines[i] is not a task line or lines[i+1] is not a meta line.
// Description and tags are not part of the encoding and come back empty.
func DecodeAt(lines []string, i int) (Ticket, bool) {
	if i < 0 || i+1 >= len(lines) {
		return Ticket{}, false
	}
	m := taskLinePattern.FindStringSubmatch(lines[i])
	if m == nil {
		return Ticket{}, false
	}
	meta := metaLinePattern.FindStringSubmatch(lines[i+1])
	if meta == nil {
		return Ticket{}, false
	}

	body := m[2]
	due := ""
	if dm := duePattern.FindStringSubmatch(body); dm != nil {
		due = dm[1]
	}
	title := duePattern.ReplaceAllString(body, "")
	title = donePattern.ReplaceAllString(title, "")
	title = strings.TrimSpace(multiSpace.ReplaceAllString(title, " "))

	status := StatusTodo
	if strings.EqualFold(m[1], "x") {
		status = StatusDone
	}
	priority := PriorityMedium
	if meta[2] != "" {
		priority = Priority(meta[2])
	}
	return Ticket{
		ID:       meta[1],
		Title:    title,
		Status:   status,
		Priority: priority,
		DueDate:  due,
	}, true
}

// Walk visits every decodable ticket in lines top to bottom. A decoded
// pair advances the cursor by two lines, anything else by one. Returning
// false from fn stops the walk.
func Walk(lines []string, fn func(i int, t Ticket) bool) {
	for i := 0; i < len(lines); {
		t, ok := DecodeAt(lines, i)
		if !ok {
			i++
			continue
		}
		if !fn(i, t) {
			return
		}
		i += 2
	}
}
