package gateway

import "unicode/utf8"

// SplitMessage cuts text into chunks of at most limit runes. Cuts prefer the
// last newline inside the window; the chunks concatenate back to text.
func SplitMessage(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); {
		end := start + limit
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		cut := end
		for i := end - 1; i > start; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, string(runes[start:cut]))
		start = cut
	}
	return chunks
}
