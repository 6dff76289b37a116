package audio

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
)

// ---------------------------------------------------------------------------
// Audio Engine
// Voices each script line through the configured TTS provider, measures the
// clips, and concatenates them into the episode's master audio track.
// ---------------------------------------------------------------------------

// Synthesizer converts one line of dialogue into encoded audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Media probes clip durations and joins clips into a master track.
type Media interface {
	MediaDuration(ctx context.Context, path string) (float64, error)
	ConcatAudio(ctx context.Context, clipPaths []string, outputPath string) error
}

// CharacterResolver maps a normalized speaker ID to its character.
type CharacterResolver interface {
	ByID(id int) (models.Character, error)
}

type Engine struct {
	tts    Synthesizer
	media  Media
	voices *VoiceTable
}

func NewEngine(tts Synthesizer, media Media, voices *VoiceTable) *Engine {
	return &Engine{
		tts:    tts,
		media:  media,
		voices: voices,
	}
}

// GenerateShowAudio voices every script line in order and concatenates the
// results into masterPath. A line whose synthesis fails is logged and
// skipped; the show goes on with the remaining lines. The returned metadata
// carries per-line durations and the ORIGINAL text, which subtitles need.
func (e *Engine) GenerateShowAudio(ctx context.Context, script []models.ScriptLine, cast CharacterResolver, audioDir, masterPath string) ([]models.LineAudio, float64, error) {
	if len(script) == 0 {
		return nil, 0, fmt.Errorf("cannot generate audio for an empty script")
	}

	var lineAudio []models.LineAudio
	var clipPaths []string

	for i, line := range script {
		character, err := cast.ByID(line.SpeakerID)
		if err != nil {
			log.Printf("[Audio] Line %d has unknown speaker %d, skipping: %v", i, line.SpeakerID, err)
			continue
		}

		voiceID, found := e.voices.Resolve(character)
		if !found {
			log.Printf("[Audio] Voice key %q not found for %s, falling back to gender default", character.Voice, character.Name)
		}

		speechText := Emotionalize(line.Text, line.Emotion)

		data, err := e.tts.Synthesize(ctx, speechText, voiceID)
		if err != nil {
			log.Printf("[Audio] Synthesis failed for line %d (%s): %v", i, character.Name, err)
			continue
		}

		clipPath := filepath.Join(audioDir, fmt.Sprintf("line_%03d_%d.mp3", i, line.SpeakerID))
		if err := os.WriteFile(clipPath, data, 0644); err != nil {
			log.Printf("[Audio] Failed to write clip for line %d: %v", i, err)
			continue
		}

		duration, err := e.media.MediaDuration(ctx, clipPath)
		if err != nil {
			log.Printf("[Audio] Failed to probe clip for line %d: %v", i, err)
			continue
		}

		log.Printf("[Audio] Line %d/%d: %s (%s) %.1fs", i+1, len(script), character.Name, line.Emotion, duration)

		clipPaths = append(clipPaths, clipPath)
		lineAudio = append(lineAudio, models.LineAudio{
			Path:      clipPath,
			Duration:  duration,
			SpeakerID: line.SpeakerID,
			Text:      line.Text,
		})
	}

	if len(clipPaths) == 0 {
		return nil, 0, fmt.Errorf("all %d script lines failed to synthesize", len(script))
	}

	if err := e.media.ConcatAudio(ctx, clipPaths, masterPath); err != nil {
		return nil, 0, fmt.Errorf("failed to build master audio: %w", err)
	}

	total, err := e.media.MediaDuration(ctx, masterPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to probe master audio: %w", err)
	}

	log.Printf("[Audio] Master audio ready: %d/%d lines, %.1fs total", len(clipPaths), len(script), total)
	return lineAudio, total, nil
}
