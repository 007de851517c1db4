// Package processing post-processes completion text before it reaches callers.
package processing

import "strings"

const (
	ThinkStart = "<think>"
	ThinkEnd   = "</think>"
)

// SplitReasoning separates <think>...</think> blocks from the answer.
// Several blocks are concatenated in order; an unclosed block runs to the end
// of the text. Both parts are trimmed.
func SplitReasoning(text string) (answer, reasoning string) {
	if !strings.Contains(text, ThinkStart) {
		return text, ""
	}

	var answerBuf, reasoningBuf strings.Builder
	rest := text
	for {
		before, inside, found := strings.Cut(rest, ThinkStart)
		answerBuf.WriteString(before)
		if !found {
			break
		}

		thought, after, closed := strings.Cut(inside, ThinkEnd)
		if reasoningBuf.Len() > 0 {
			reasoningBuf.WriteString("\n")
		}
		reasoningBuf.WriteString(strings.TrimSpace(thought))
		if !closed {
			break
		}
		rest = after
	}

	return strings.TrimSpace(answerBuf.String()), reasoningBuf.String()
}
