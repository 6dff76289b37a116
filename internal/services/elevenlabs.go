package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ---------------------------------------------------------------------------
// ElevenLabs Text-to-Speech Service
// Uses the ElevenLabs REST API to voice individual script lines.
// Model: eleven_flash_v2_5 (fast, ~75ms latency, good for long shows)
// ---------------------------------------------------------------------------

const (
	elevenLabsBaseURL      = "https://api.elevenlabs.io"
	elevenLabsModel        = "eleven_flash_v2_5"
	elevenLabsOutputFormat = "mp3_44100_128"
)

// ElevenLabsService handles text-to-speech via the ElevenLabs API.
type ElevenLabsService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Ensure ElevenLabsService implements TTSService at compile time.
var _ TTSService = (*ElevenLabsService)(nil)

// NewElevenLabsService creates a new ElevenLabs TTS service.
func NewElevenLabsService(apiKey string) *ElevenLabsService {
	return &ElevenLabsService{
		apiKey:  apiKey,
		baseURL: elevenLabsBaseURL,
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

type elevenLabsRequest struct {
	Text          string                   `json:"text"`
	ModelID       string                   `json:"model_id"`
	VoiceSettings *elevenLabsVoiceSettings `json:"voice_settings,omitempty"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style,omitempty"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

// Synthesize converts one line of dialogue to speech. The returned bytes are
// an MP3 stream ready to write to disk.
func (s *ElevenLabsService) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if voiceID == "" {
		return nil, fmt.Errorf("elevenlabs: voice ID is required")
	}

	reqBody := elevenLabsRequest{
		Text:    text,
		ModelID: elevenLabsModel,
		VoiceSettings: &elevenLabsVoiceSettings{
			Stability:       0.55, // some emotional range between lines
			SimilarityBoost: 0.80,
			Style:           0.35,
			UseSpeakerBoost: true,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ElevenLabs request: %w", err)
	}

	// POST /v1/text-to-speech/{voice_id}?output_format=mp3_44100_128
	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		s.baseURL, voiceID, elevenLabsOutputFormat)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create ElevenLabs request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ElevenLabs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ElevenLabs returned status %d: %s", resp.StatusCode, string(body))
	}

	// The response body IS the audio file.
	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ElevenLabs audio response: %w", err)
	}

	if len(audioData) == 0 {
		return nil, fmt.Errorf("ElevenLabs returned empty audio")
	}

	log.Printf("[ElevenLabs] Synthesized line (voiceID=%s, textLen=%d, %d bytes)", voiceID, len(text), len(audioData))

	return audioData, nil
}
