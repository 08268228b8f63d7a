// Package standup processes daily standup responses: it moves mentioned
// work items along the board and builds sprint digests.
package standup

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Summarizer condenses free text. Implementations may call out to a
// language model; the engine only depends on this capability.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// PlainSummarizer keeps the first line of every paragraph, truncated to
// MaxLine runes. It needs no external service.
type PlainSummarizer struct {
	MaxLine int // 0 means 120
}

// Summarize implements Summarizer.
func (p PlainSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	limit := p.MaxLine
	if limit <= 0 {
		limit = 120
	}
	var out []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		line, _, _ := strings.Cut(strings.TrimSpace(para), "\n")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, truncate(line, limit))
	}
	return strings.Join(out, "\n"), nil
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-1]) + "…"
}
