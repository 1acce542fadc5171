package ticket

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// ErrEmptyTitle is returned when nothing is left for the title after flags
// have been extracted.
var ErrEmptyTitle = errors.New("ticket title is empty")

const descriptionDelimiter = " -- "

var (
	argPriorityPattern = regexp.MustCompile(`(?i)-p\s+(low|medium|high|critical)`)
	argDueAbsPattern   = regexp.MustCompile(`-d\s+(\d{4}-\d{2}-\d{2})`)
	argDueRelPattern   = regexp.MustCompile(`(?i)-d\s+(today|tomorrow|week)`)
	argTagsPattern     = regexp.MustCompile(`-t\s+([\p{L}\p{N}_,\s]+?)(?:\s+-|$)`)
)

// CreateArgs is the structured form of a /ticket argument string.
type CreateArgs struct {
	Title       string
	Description string
	Priority    Priority
	DueDate     string
	Tags        []string
}

// ParseCreateArgs 解析创建工单的自由文本参数
// ParseCreateArgs parses "Title -p high -d tomorrow -t a,b -- description".
// Each flag is extracted once, first match wins; a repeated flag stays in
// the title text.
func ParseCreateArgs(text string, today time.Time) (CreateArgs, error) {
	out := CreateArgs{Priority: PriorityMedium}

	if before, after, found := strings.Cut(text, descriptionDelimiter); found {
		text = before
		out.Description = strings.TrimSpace(after)
	}

	if loc := argPriorityPattern.FindStringSubmatchIndex(text); loc != nil {
		if p, err := ParsePriority(text[loc[2]:loc[3]]); err == nil {
			out.Priority = p
		}
		text = text[:loc[0]] + text[loc[1]:]
	}

	if loc := argDueAbsPattern.FindStringSubmatchIndex(text); loc != nil {
		out.DueDate = text[loc[2]:loc[3]]
		text = text[:loc[0]] + text[loc[1]:]
	} else if loc := argDueRelPattern.FindStringSubmatchIndex(text); loc != nil {
		day := today
		switch strings.ToLower(text[loc[2]:loc[3]]) {
		case "tomorrow":
			day = today.AddDate(0, 0, 1)
		case "week":
			day = today.AddDate(0, 0, 7)
		}
		out.DueDate = day.Format(DateLayout)
		text = text[:loc[0]] + text[loc[1]:]
	}

	// The tag list ends where the next flag starts and only the list is
	// removed, so "-t a -t b" keeps "-t b" in the title.
	if loc := argTagsPattern.FindStringSubmatchIndex(text); loc != nil {
		for _, tag := range strings.Split(text[loc[2]:loc[3]], ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				out.Tags = append(out.Tags, tag)
			}
		}
		text = text[:loc[0]] + text[loc[3]:]
	}

	out.Title = strings.TrimSpace(text)
	if out.Title == "" {
		return out, ErrEmptyTitle
	}
	return out, nil
}
