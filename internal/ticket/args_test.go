package ticket

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var argsToday = time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)

func TestParseCreateArgsFull(t *testing.T) {
	got, err := ParseCreateArgs("Review PR -p high -d tomorrow -t work,urgent -- check branch feature/x", argsToday)
	if err != nil {
		t.Fatalf("ParseCreateArgs: %v", err)
	}
	if got.Title != "Review PR" {
		t.Fatalf("Title=%q, want %q", got.Title, "Review PR")
	}
	if got.Priority != PriorityHigh {
		t.Fatalf("Priority=%q, want high", got.Priority)
	}
	if got.DueDate != "2024-05-11" {
		t.Fatalf("DueDate=%q, want 2024-05-11", got.DueDate)
	}
	if strings.Join(got.Tags, ",") != "work,urgent" {
		t.Fatalf("Tags=%v", got.Tags)
	}
	if got.Description != "check branch feature/x" {
		t.Fatalf("Description=%q", got.Description)
	}
}

func TestParseCreateArgsDefaults(t *testing.T) {
	got, err := ParseCreateArgs("  Buy milk  ", argsToday)
	if err != nil {
		t.Fatalf("ParseCreateArgs: %v", err)
	}
	if got.Title != "Buy milk" || got.Priority != PriorityMedium || got.DueDate != "" || len(got.Tags) != 0 || got.Description != "" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseCreateArgsDueDates(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Task -d 2025-01-31", "2025-01-31"},
		{"Task -d today", "2024-05-10"},
		{"Task -d TOMORROW", "2024-05-11"},
		{"Task -d week", "2024-05-17"},
		{"Task -d 2025-01-31 -d week", "2025-01-31"},
	}
	for _, tc := range cases {
		got, err := ParseCreateArgs(tc.in, argsToday)
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if got.DueDate != tc.want {
			t.Fatalf("%q: DueDate=%q, want %q", tc.in, got.DueDate, tc.want)
		}
	}
}

func TestParseCreateArgsRepeatedFlagStaysInTitle(t *testing.T) {
	got, err := ParseCreateArgs("Deploy -p low -p high", argsToday)
	if err != nil {
		t.Fatalf("ParseCreateArgs: %v", err)
	}
	if got.Priority != PriorityLow {
		t.Fatalf("Priority=%q, want low", got.Priority)
	}
	if got.Title != "Deploy  -p high" {
		t.Fatalf("Title=%q", got.Title)
	}
}

func TestParseCreateArgsRepeatedTagFlagStaysInTitle(t *testing.T) {
	got, err := ParseCreateArgs("Plan -t a -t b", argsToday)
	if err != nil {
		t.Fatalf("ParseCreateArgs: %v", err)
	}
	if strings.Join(got.Tags, "|") != "a" {
		t.Fatalf("Tags=%v, want [a]", got.Tags)
	}
	if got.Title != "Plan  -t b" {
		t.Fatalf("Title=%q", got.Title)
	}
}

func TestParseCreateArgsTagsBeforeOtherFlags(t *testing.T) {
	got, err := ParseCreateArgs("Plan -t ops, infra -p critical", argsToday)
	if err != nil {
		t.Fatalf("ParseCreateArgs: %v", err)
	}
	if strings.Join(got.Tags, "|") != "ops|infra" {
		t.Fatalf("Tags=%v", got.Tags)
	}
	if got.Priority != PriorityCritical || got.Title != "Plan" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseCreateArgsCyrillicTags(t *testing.T) {
	got, err := ParseCreateArgs("Отчёт -t работа,срочно", argsToday)
	if err != nil {
		t.Fatalf("ParseCreateArgs: %v", err)
	}
	if strings.Join(got.Tags, ",") != "работа,срочно" || got.Title != "Отчёт" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseCreateArgsEmptyTitle(t *testing.T) {
	for _, in := range []string{"", "   ", "-p high -d today", "-t a,b"} {
		if _, err := ParseCreateArgs(in, argsToday); !errors.Is(err, ErrEmptyTitle) {
			t.Fatalf("%q: err=%v, want ErrEmptyTitle", in, err)
		}
	}
}
