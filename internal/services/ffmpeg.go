package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ---------------------------------------------------------------------------
// FFmpegService
// Shells out to ffmpeg/ffprobe for audio concatenation, show assembly, part
// cutting, and duration probing. All invocations capture stderr so failures
// carry the encoder's own diagnostics.
// ---------------------------------------------------------------------------

// Show render constants. The background footage is looped to cover the full
// audio length; music is ducked well under the voices.
const (
	musicVolume   = 0.1
	audioBitrate  = "192k"
	videoPreset   = "medium"
	subtitleStyle = "Alignment=10,Fontsize=18,PrimaryColour=&H00FFFFFF,OutlineColour=&H00000000,BorderStyle=3,Outline=1,Shadow=0.5"
)

type FFmpegService struct{}

func NewFFmpegService() *FFmpegService {
	return &FFmpegService{}
}

// run executes an ffmpeg/ffprobe command, returning stderr in the error so
// render failures are diagnosable from logs alone.
func run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w (stderr: %s)", name, err, truncate(strings.TrimSpace(stderr.String()), 2000))
	}
	return nil
}

// MediaDuration returns the duration of an audio or video file in seconds.
func (s *FFmpegService) MediaDuration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	cmd := exec.CommandContext(ctx, "ffprobe", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w (stderr: %s)", path, err, strings.TrimSpace(stderr.String()))
	}

	var durationSec float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(output)), "%f", &durationSec); err != nil {
		return 0, fmt.Errorf("failed to parse duration for %s: %w", path, err)
	}

	return durationSec, nil
}

// ConcatAudio joins per-line audio clips into one master WAV using the concat
// demuxer. Inputs can be any format; the output is decoded to PCM so the
// downstream mix has a clean, seekable track.
func (s *FFmpegService) ConcatAudio(ctx context.Context, clipPaths []string, outputPath string) error {
	if len(clipPaths) == 0 {
		return fmt.Errorf("no audio clips to concatenate")
	}

	listPath := filepath.Join(filepath.Dir(outputPath), "concat_list.txt")
	f, err := os.Create(listPath)
	if err != nil {
		return fmt.Errorf("failed to create concat list: %w", err)
	}
	for _, path := range clipPaths {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		fmt.Fprintf(f, "file '%s'\n", strings.ReplaceAll(abs, "'", "'\\''"))
	}
	f.Close()
	defer os.Remove(listPath)

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-ar", "44100",
		"-ac", "2",
		"-c:a", "pcm_s16le",
		"-y",
		outputPath,
	}

	if err := run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("audio concatenation failed: %w", err)
	}

	log.Printf("[FFmpeg] Concatenated %d clips into %s", len(clipPaths), outputPath)
	return nil
}

// AssembleParams describes one full-show render.
type AssembleParams struct {
	BackgroundVideo string
	MasterAudio     string
	BackgroundMusic string
	SubtitlePath    string // optional; empty skips the burn-in
	Duration        float64
	OutputPath      string
}

// AssembleShow renders the final episode video in a single ffmpeg pass.
// The looped background video and music are trimmed to the master audio's
// duration, music is mixed under the voices, and subtitles are burned in.
func (s *FFmpegService) AssembleShow(ctx context.Context, p AssembleParams) error {
	if p.Duration <= 0 {
		return fmt.Errorf("invalid show duration: %f", p.Duration)
	}

	var filter strings.Builder
	fmt.Fprintf(&filter, "[0:v]trim=duration=%.3f,setpts=PTS-STARTPTS[bgv];", p.Duration)
	fmt.Fprintf(&filter, "[2:a]atrim=duration=%.3f,asetpts=PTS-STARTPTS,volume=%.2f[music];", p.Duration, musicVolume)
	filter.WriteString("[1:a][music]amix=inputs=2:duration=first[mixed]")

	videoOut := "[bgv]"
	if p.SubtitlePath != "" {
		fmt.Fprintf(&filter, ";[bgv]subtitles='%s':force_style='%s'[subbed]",
			escapeFilterPath(p.SubtitlePath), subtitleStyle)
		videoOut = "[subbed]"
	}

	args := []string{
		"-stream_loop", "-1", "-i", p.BackgroundVideo,
		"-i", p.MasterAudio,
		"-stream_loop", "-1", "-i", p.BackgroundMusic,
		"-filter_complex", filter.String(),
		"-map", videoOut,
		"-map", "[mixed]",
		"-c:v", "libx264",
		"-preset", videoPreset,
		"-c:a", "aac",
		"-b:a", audioBitrate,
		"-pix_fmt", "yuv420p",
		"-shortest",
		"-y",
		p.OutputPath,
	}

	log.Printf("[FFmpeg] Assembling show video (%.1fs) -> %s", p.Duration, p.OutputPath)

	if err := run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("show assembly failed: %w", err)
	}
	return nil
}

// CutSegment extracts one part from the final video. Parts are re-encoded
// rather than stream-copied so every part starts on a clean keyframe and
// plays back with exact boundaries.
func (s *FFmpegService) CutSegment(ctx context.Context, inputPath, outputPath string, startSec, durationSec float64) error {
	args := []string{
		"-ss", fmt.Sprintf("%.3f", startSec),
		"-i", inputPath,
		"-t", fmt.Sprintf("%.3f", durationSec),
		"-c:v", "libx264",
		"-preset", videoPreset,
		"-c:a", "aac",
		"-b:a", audioBitrate,
		"-pix_fmt", "yuv420p",
		"-y",
		outputPath,
	}

	if err := run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("segment cut at %.1fs failed: %w", startSec, err)
	}
	return nil
}

// escapeFilterPath escapes a path for use inside an ffmpeg filter expression.
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "\\\\")
	path = strings.ReplaceAll(path, ":", "\\:")
	path = strings.ReplaceAll(path, "'", "'\\''")
	return path
}
