package video

import (
	"context"
	"fmt"
	"log"
	"math"
	"path/filepath"

	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
	"github.com/Gida-concept/ai-radio-show-bot/internal/services"
)

// ---------------------------------------------------------------------------
// Video Engine
// Renders the full episode video over the looped background footage, then
// cuts it into upload-sized parts.
// ---------------------------------------------------------------------------

// minPartDuration is the floor below which a trailing remainder part is
// discarded instead of being published as a few-second stub.
const minPartDuration = 10.0

// shortShowFactor decides when a show is too short to be worth splitting:
// anything up to 1.5 part-lengths ships as a single part.
const shortShowFactor = 1.5

// Renderer is the ffmpeg surface the engine needs.
type Renderer interface {
	MediaDuration(ctx context.Context, path string) (float64, error)
	AssembleShow(ctx context.Context, p services.AssembleParams) error
	CutSegment(ctx context.Context, inputPath, outputPath string, startSec, durationSec float64) error
}

type Engine struct {
	renderer     Renderer
	partDuration float64
}

func NewEngine(renderer Renderer, partDurationSec int) *Engine {
	return &Engine{
		renderer:     renderer,
		partDuration: float64(partDurationSec),
	}
}

// AssembleParams names the inputs for one episode render.
type AssembleParams struct {
	BackgroundVideo string
	BackgroundMusic string
	MasterAudio     string
	SubtitlePath    string
	OutputPath      string
}

// Assemble renders the final show video and returns its duration in seconds.
// The master audio is the duration authority: video and music are trimmed to
// it, never the other way around.
func (e *Engine) Assemble(ctx context.Context, p AssembleParams) (float64, error) {
	duration, err := e.renderer.MediaDuration(ctx, p.MasterAudio)
	if err != nil {
		return 0, fmt.Errorf("failed to probe master audio: %w", err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("master audio has no duration")
	}

	err = e.renderer.AssembleShow(ctx, services.AssembleParams{
		BackgroundVideo: p.BackgroundVideo,
		MasterAudio:     p.MasterAudio,
		BackgroundMusic: p.BackgroundMusic,
		SubtitlePath:    p.SubtitlePath,
		Duration:        duration,
		OutputPath:      p.OutputPath,
	})
	if err != nil {
		return 0, err
	}

	log.Printf("[Video] Final show video assembled: %s (%.1fs)", p.OutputPath, duration)
	return duration, nil
}

// SplitIntoParts cuts the final video into sequential parts of the configured
// length. A show at or under 1.5 part-lengths becomes exactly one part. A
// trailing remainder shorter than 10 seconds is dropped rather than posted.
func (e *Engine) SplitIntoParts(ctx context.Context, finalPath, partsDir string) ([]models.VideoPart, error) {
	total, err := e.renderer.MediaDuration(ctx, finalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to probe final video: %w", err)
	}
	if total <= 0 {
		return nil, fmt.Errorf("final video has no duration")
	}

	if total <= e.partDuration*shortShowFactor {
		partPath := filepath.Join(partsDir, "part_1.mp4")
		if err := e.renderer.CutSegment(ctx, finalPath, partPath, 0, total); err != nil {
			return nil, fmt.Errorf("failed to cut single part: %w", err)
		}
		log.Printf("[Video] Show is short (%.1fs), publishing as a single part", total)
		return []models.VideoPart{{Index: 1, Path: partPath, StartOffset: 0, Duration: total}}, nil
	}

	numParts := int(math.Ceil(total / e.partDuration))
	var parts []models.VideoPart

	for i := 0; i < numParts; i++ {
		start := float64(i) * e.partDuration
		duration := math.Min(e.partDuration, total-start)

		if duration < minPartDuration {
			log.Printf("[Video] Discarding trailing part %d (%.1fs < %.0fs minimum)", i+1, duration, minPartDuration)
			continue
		}

		partPath := filepath.Join(partsDir, fmt.Sprintf("part_%d.mp4", i+1))
		if err := e.renderer.CutSegment(ctx, finalPath, partPath, start, duration); err != nil {
			return nil, fmt.Errorf("failed to cut part %d: %w", i+1, err)
		}

		parts = append(parts, models.VideoPart{
			Index:       i + 1,
			Path:        partPath,
			StartOffset: start,
			Duration:    duration,
		})
	}

	log.Printf("[Video] Split %.1fs show into %d parts", total, len(parts))
	return parts, nil
}
