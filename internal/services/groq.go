package services

import (
	"context"
	"fmt"
	"log"

	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// GroqScriptService generates show scripts through Groq's OpenAI-compatible
// chat endpoint using JSON mode.
type GroqScriptService struct {
	client *openai.Client
	model  string
}

var _ ScriptGenerator = (*GroqScriptService)(nil)

func NewGroqScriptService(apiKey, baseURL, model string) *GroqScriptService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &GroqScriptService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (s *GroqScriptService) GenerateScript(ctx context.Context, hosts, guests []models.Character, showMinutes int) ([]models.RawScriptLine, error) {
	prompt := buildScriptPrompt(hosts, guests, showMinutes)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.8,
		MaxTokens:   8000,
	})
	if err != nil {
		return nil, fmt.Errorf("script generation request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from script model")
	}

	content := resp.Choices[0].Message.Content
	lines, err := parseScriptJSON(content)
	if err != nil {
		log.Printf("[Script] Parse failed, raw response snippet: %s", truncate(content, 500))
		return nil, err
	}

	log.Printf("[Script] Generated %d lines (model=%s)", len(lines), s.model)
	if len(lines) > 0 && len(lines) < 30 {
		log.Printf("[Script] WARNING: script is short (%d lines); the show may run under length", len(lines))
	}

	return lines, nil
}

// truncate limits a string to maxLen characters for log output.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
