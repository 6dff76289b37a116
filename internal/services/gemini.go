package services

import (
	"context"
	"fmt"
	"log"

	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
	"google.golang.org/genai"
)

// GeminiScriptService is the alternative script backend, selected when a
// Gemini key is configured. Same contract as GroqScriptService; the generator
// interface keeps the orchestrator provider-agnostic.
type GeminiScriptService struct {
	apiKey string
	model  string
}

var _ ScriptGenerator = (*GeminiScriptService)(nil)

func NewGeminiScriptService(apiKey, model string) *GeminiScriptService {
	return &GeminiScriptService{
		apiKey: apiKey,
		model:  model,
	}
}

func (s *GeminiScriptService) GenerateScript(ctx context.Context, hosts, guests []models.Character, showMinutes int) ([]models.RawScriptLine, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	prompt := buildScriptPrompt(hosts, guests, showMinutes)

	resp, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("gemini script generation failed: %w", err)
	}

	content := resp.Text()
	if content == "" {
		return nil, fmt.Errorf("gemini returned an empty script response")
	}

	lines, err := parseScriptJSON(content)
	if err != nil {
		log.Printf("[Script] Gemini parse failed, raw response snippet: %s", truncate(content, 500))
		return nil, err
	}

	log.Printf("[Script] Generated %d lines (model=%s)", len(lines), s.model)
	if len(lines) > 0 && len(lines) < 30 {
		log.Printf("[Script] WARNING: script is short (%d lines); the show may run under length", len(lines))
	}

	return lines, nil
}
