package subtitles

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
	"github.com/Gida-concept/ai-radio-show-bot/internal/services"
)

// ---------------------------------------------------------------------------
// Subtitle Engine
// Transcribes the master audio with word-level timestamps and writes a
// karaoke-style SRT file: one cue per word, so the burn-in tracks speech
// exactly. Falls back to segment-level cues when word timing is missing.
// ---------------------------------------------------------------------------

// Transcriber produces timing data for a finished audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*services.Transcription, error)
}

type Engine struct {
	transcriber Transcriber
}

func NewEngine(transcriber Transcriber) *Engine {
	return &Engine{transcriber: transcriber}
}

// Generate transcribes the master audio and writes the SRT file to srtPath.
func (e *Engine) Generate(ctx context.Context, masterAudioPath, srtPath string) error {
	tr, err := e.transcriber.Transcribe(ctx, masterAudioPath)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	var content string
	if len(tr.Words) > 0 {
		content = wordSRT(tr.Words)
		log.Printf("[Subtitles] Writing %d word cues to %s", len(tr.Words), srtPath)
	} else if len(tr.Segments) > 0 {
		content = segmentSRT(tr.Segments)
		log.Printf("[Subtitles] No word timestamps, falling back to %d segment cues", len(tr.Segments))
	} else {
		return fmt.Errorf("transcription returned no usable timestamps")
	}

	if err := os.WriteFile(srtPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}
	return nil
}

func wordSRT(words []models.WordSpan) string {
	var sb strings.Builder
	for i, w := range words {
		writeCue(&sb, i+1, w.Start, w.End, w.Word)
	}
	return sb.String()
}

func segmentSRT(segments []models.SegmentSpan) string {
	var sb strings.Builder
	for i, seg := range segments {
		writeCue(&sb, i+1, seg.Start, seg.End, seg.Text)
	}
	return sb.String()
}

func writeCue(sb *strings.Builder, index int, start, end float64, text string) {
	fmt.Fprintf(sb, "%d\n%s --> %s\n%s\n\n",
		index, FormatTimestamp(start), FormatTimestamp(end), strings.TrimSpace(text))
}

// FormatTimestamp converts seconds into the SRT timestamp form HH:MM:SS,mmm.
// Rounding happens once, at the millisecond level, before the carry into
// seconds/minutes/hours, so 59.9995s becomes 00:01:00,000 rather than an
// out-of-range 00:00:59,1000.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	ms := int64(seconds*1000.0 + 0.5)

	hours := ms / 3_600_000
	ms %= 3_600_000
	minutes := ms / 60_000
	ms %= 60_000
	secs := ms / 1_000
	ms %= 1_000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, ms)
}
