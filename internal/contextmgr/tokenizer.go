package contextmgr

import (
	"strings"
	"sync"
	"unicode"

	"vaultbot/internal/chat"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Tokenizer 精确 token 计数器，支持 tiktoken 和启发式回退
// Tokenizer counts tokens with tiktoken, falling back to a heuristic when
// the BPE ranks cannot be loaded (offline hosts).
type Tokenizer struct {
	encoder      *tiktoken.Tiktoken
	encodingName string
	fallback     bool
	mu           sync.RWMutex
}

// NewTokenizer creates a tokenizer for the named encoding.
func NewTokenizer(encodingName string) *Tokenizer {
	t := &Tokenizer{encodingName: encodingName}
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		t.fallback = true
		return t
	}
	t.encoder = enc
	return t
}

// NewTokenizerForModel picks the encoding from a model id. Router-style ids
// such as "openai/gpt-4o" are matched on the part after the slash.
func NewTokenizerForModel(model string) *Tokenizer {
	return NewTokenizer(modelToEncoding(model))
}

// Count returns the total token count of messages including per-message
// framing overhead.
func (t *Tokenizer) Count(messages []chat.Message) int {
	total := 0
	for _, msg := range messages {
		total += 4 + t.CountText(msg.Role) + t.CountText(msg.Content)
	}
	return total
}

// CountText counts the tokens of a single string.
func (t *Tokenizer) CountText(text string) int {
	if text == "" {
		return 0
	}
	if t.fallback {
		return heuristicTokenCount(text)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.encoder.Encode(text, nil, nil))
}

// IsPrecise reports whether tiktoken is in use.
func (t *Tokenizer) IsPrecise() bool { return !t.fallback }

// EncodingName returns the encoding name.
func (t *Tokenizer) EncodingName() string { return t.encodingName }

// heuristicTokenCount estimates ~4 chars per token for Latin text and ~2
// for Cyrillic, which BPE vocabularies split more finely.
func heuristicTokenCount(text string) int {
	if text == "" {
		return 0
	}
	latin, cyrillic := 0, 0
	for _, r := range text {
		if unicode.Is(unicode.Cyrillic, r) {
			cyrillic++
		} else {
			latin++
		}
	}
	estimate := int(float64(latin)*0.25 + float64(cyrillic)*0.5)
	if estimate < 1 {
		estimate = 1
	}
	return estimate
}

func modelToEncoding(model string) string {
	m := strings.ToLower(strings.TrimSpace(model))
	if i := strings.LastIndex(m, "/"); i >= 0 {
		m = m[i+1:]
	}
	switch {
	case strings.HasPrefix(m, "gpt-4o"), strings.HasPrefix(m, "chatgpt-4o"),
		strings.HasPrefix(m, "gpt-4.1"), strings.HasPrefix(m, "o1"),
		strings.HasPrefix(m, "o3"), strings.HasPrefix(m, "o4"):
		return "o200k_base"
	default:
		return "cl100k_base"
	}
}
