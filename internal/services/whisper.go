package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// ---------------------------------------------------------------------------
// Whisper transcription: word-level timestamps for subtitle generation
// Runs against Groq's OpenAI-compatible audio endpoint.
// ---------------------------------------------------------------------------

// Transcription is the timing data extracted from the master audio track.
// Words is the preferred granularity; Segments is the fallback when the
// model returns no word timestamps.
type Transcription struct {
	Words    []models.WordSpan
	Segments []models.SegmentSpan
	Text     string
}

// Transcriber produces timing data for a finished audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Transcription, error)
}

// WhisperService transcribes audio through the Whisper API.
type WhisperService struct {
	client *openai.Client
	model  string
}

var _ Transcriber = (*WhisperService)(nil)

func NewWhisperService(apiKey, baseURL, model string) *WhisperService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &WhisperService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Transcribe sends the audio file to Whisper and returns word-level timestamps
// plus segment-level spans as a fallback.
func (s *WhisperService) Transcribe(ctx context.Context, audioPath string) (*Transcription, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio for transcription: %w", err)
	}
	defer f.Close()

	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.model,
		Reader:   f,
		FilePath: filepath.Base(audioPath), // filename hint for the API
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: "en",
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
			openai.TranscriptionTimestampGranularitySegment,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %w", err)
	}

	out := &Transcription{Text: resp.Text}

	for _, w := range resp.Words {
		word := strings.TrimSpace(w.Word)
		if word == "" {
			continue
		}
		out.Words = append(out.Words, models.WordSpan{
			Word:  word,
			Start: w.Start,
			End:   w.End,
		})
	}

	for _, seg := range resp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		out.Segments = append(out.Segments, models.SegmentSpan{
			Text:  text,
			Start: seg.Start,
			End:   seg.End,
		})
	}

	if len(out.Words) == 0 && len(out.Segments) == 0 {
		return nil, fmt.Errorf("whisper returned no timestamps (text: %q)", truncate(resp.Text, 80))
	}

	log.Printf("[Whisper] Transcribed %d words, %d segments (duration: %.1fs)",
		len(out.Words), len(out.Segments), resp.Duration)

	return out, nil
}
