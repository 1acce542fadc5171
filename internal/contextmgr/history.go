package contextmgr

import (
	"sync"

	"vaultbot/internal/chat"
)

// History 按用户保存的有界对话历史，仅驻留内存
// History keeps a bounded, in-memory conversation per user. Each user's
// list holds at most 2×maxHistory entries (user/assistant pairs).
type History struct {
	mu           sync.Mutex
	maxHistory   int
	systemPrompt string
	sessions     map[int64][]chat.Message
}

// NewHistory returns an empty store. maxHistory below one is treated as one.
func NewHistory(maxHistory int, systemPrompt string) *History {
	if maxHistory < 1 {
		maxHistory = 1
	}
	return &History{
		maxHistory:   maxHistory,
		systemPrompt: systemPrompt,
		sessions:     make(map[int64][]chat.Message),
	}
}

func (h *History) limit() int { return 2 * h.maxHistory }

// Append adds an entry and trims the session to its most recent entries.
func (h *History) Append(userID int64, role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := append(h.sessions[userID], chat.Message{Role: role, Content: content})
	if over := len(msgs) - h.limit(); over > 0 {
		msgs = append([]chat.Message(nil), msgs[over:]...)
	}
	h.sessions[userID] = msgs
}

// Clear empties the session and reports whether it had any entries.
func (h *History) Clear(userID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	had := len(h.sessions[userID]) > 0
	delete(h.sessions, userID)
	return had
}

// PrepareContext returns the system prompt followed by a copy of the
// session, ready to send to the completion service.
func (h *History) PrepareContext(userID int64) []chat.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := h.sessions[userID]
	out := make([]chat.Message, 0, len(msgs)+1)
	out = append(out, chat.System(h.systemPrompt))
	return append(out, msgs...)
}

// Len returns the number of entries held for userID.
func (h *History) Len(userID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions[userID])
}

// ActiveSessions returns the number of users with a non-empty session.
func (h *History) ActiveSessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, msgs := range h.sessions {
		if len(msgs) > 0 {
			n++
		}
	}
	return n
}

// MaxHistory returns the configured number of exchanges kept per user.
func (h *History) MaxHistory() int { return h.maxHistory }
