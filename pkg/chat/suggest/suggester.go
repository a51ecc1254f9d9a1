package suggest

import (
	"context"
	"fmt"
	"strings"

	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/pkg/llm"
)

const (
	maxSuggestions   = 5
	maxQuestionRunes = 50
)

// Suggester derives short follow-up questions from an answered exchange via
// one extra blocking generation call. Any failure degrades to an empty list.
type Suggester struct {
	provider   llm.LLMProvider
	log        logger.ILogger
	excerptLen int
}

func NewSuggester(provider llm.LLMProvider, log logger.ILogger, excerptLen int) *Suggester {
	return &Suggester{provider: provider, log: log, excerptLen: excerptLen}
}

func (s *Suggester) Suggest(ctx context.Context, question, answer string) []string {
	prompt := buildPrompt(question, excerpt(answer, s.excerptLen))

	raw, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		s.log.Warn("CHAT", "Follow-up question generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return []string{}
	}
	return ParseSuggestions(raw)
}

func buildPrompt(question, answerExcerpt string) string {
	return fmt.Sprintf(`Based on this conversation:
Question: %s
Answer: %s

Suggest 3-5 short follow-up questions (max 20 characters each) that are related but not identical to the original question. Write one question per line, without numbering or bullet points.`,
		question, answerExcerpt)
}

// ParseSuggestions splits a model response into usable follow-up questions:
// one per line, trimmed, dropping empty and overlong lines, capped at five,
// original order preserved.
func ParseSuggestions(raw string) []string {
	suggestions := make([]string, 0, maxSuggestions)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len([]rune(line)) > maxQuestionRunes {
			continue
		}
		suggestions = append(suggestions, line)
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions
}

func excerpt(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
