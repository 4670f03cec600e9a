package llm

import (
	"context"
	"fmt"
	"strings"
)

// ClassifyYesNo sends a strict yes/no classification prompt to the provider
// and interprets the reply. The prompt must phrase a question answerable with
// YES or NO; anything else in the reply is resolved by prefix match.
func ClassifyYesNo(ctx context.Context, provider Provider, prompt string) (bool, error) {
	resp, err := provider.Complete(ctx, CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "You are a strict classifier. Answer with exactly YES or NO and nothing else."},
			{Role: RoleUser, Content: prompt},
		},
		MaxTokens:   4,
		Temperature: 0,
	})
	if err != nil {
		return false, err
	}

	answer := strings.ToUpper(strings.TrimSpace(resp.Content))
	switch {
	case strings.HasPrefix(answer, "YES"):
		return true, nil
	case strings.HasPrefix(answer, "NO"):
		return false, nil
	default:
		return false, fmt.Errorf("unexpected classifier reply %q", resp.Content)
	}
}
