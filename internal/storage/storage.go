package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	downloadTimeout = 10 * time.Minute
	copyChunkSize   = 32 * 1024
)

// Manager owns the filesystem layout for one episode plus the process-wide
// background-asset cache. Per-episode state lives under tempDir/<kind>/<id>;
// the two cached background files live directly under tempDir and are never
// deleted by per-episode cleanup.
type Manager struct {
	tempDir   string
	episodeID string

	backgroundVideoURL string
	backgroundMusicURL string

	client *http.Client
}

func New(tempDir, episodeID, videoURL, musicURL string, client *http.Client) *Manager {
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}
	return &Manager{
		tempDir:            tempDir,
		episodeID:          episodeID,
		backgroundVideoURL: videoURL,
		backgroundMusicURL: musicURL,
		client:             client,
	}
}

// Per-episode directories

func (m *Manager) AudioDir() string     { return filepath.Join(m.tempDir, "audio", m.episodeID) }
func (m *Manager) SubtitlesDir() string { return filepath.Join(m.tempDir, "subtitles", m.episodeID) }
func (m *Manager) VideoDir() string     { return filepath.Join(m.tempDir, "video", m.episodeID) }
func (m *Manager) PartsDir() string     { return filepath.Join(m.tempDir, "parts", m.episodeID) }

// Master artifacts live in the parent temp dirs, named with the episode id,
// so the video engine can find them without carrying extra state.

func (m *Manager) MasterAudioPath() string {
	return filepath.Join(m.tempDir, "audio", fmt.Sprintf("master_audio_%s.wav", m.episodeID))
}

func (m *Manager) SubtitlePath() string {
	return filepath.Join(m.tempDir, "subtitles", fmt.Sprintf("subtitles_%s.srt", m.episodeID))
}

func (m *Manager) FinalVideoPath() string {
	return filepath.Join(m.tempDir, "video", fmt.Sprintf("final_show_video_%s.mp4", m.episodeID))
}

// Shared background-asset cache paths (persist across cycles).

func (m *Manager) BackgroundVideoPath() string { return filepath.Join(m.tempDir, "background.mp4") }
func (m *Manager) BackgroundMusicPath() string { return filepath.Join(m.tempDir, "background.mp3") }

// CreateEpisodeDirs creates the per-episode directory tree. Idempotent: safe
// to call on an id that already has directories from a retried run.
func (m *Manager) CreateEpisodeDirs() error {
	dirs := []string{m.AudioDir(), m.SubtitlesDir(), m.VideoDir(), m.PartsDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// EnsureBackgroundAssets downloads the background video and music to their
// fixed cache paths if absent. The two fetches run concurrently; a failure of
// either is fatal to the cycle. Files already on disk are never re-fetched.
func (m *Manager) EnsureBackgroundAssets(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return m.downloadIfAbsent(gctx, m.backgroundVideoURL, m.BackgroundVideoPath())
	})
	g.Go(func() error {
		return m.downloadIfAbsent(gctx, m.backgroundMusicURL, m.BackgroundMusicPath())
	})

	return g.Wait()
}

func (m *Manager) downloadIfAbsent(ctx context.Context, url, localPath string) error {
	if _, err := os.Stat(localPath); err == nil {
		log.Printf("[Storage] File already exists, skipping download: %s", localPath)
		return nil
	}

	log.Printf("[Storage] Downloading %s -> %s", url, localPath)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download of %s failed with status %d", url, resp.StatusCode)
	}

	// Stream to a temp file and rename so a partial download never poisons
	// the cache path.
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(localPath), filepath.Base(localPath)+".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp download file: %w", err)
	}
	tmpPath := tmp.Name()

	buf := make([]byte, copyChunkSize)
	if _, err := io.CopyBuffer(tmp, resp.Body, buf); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to stream download of %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finish download of %s: %w", url, err)
	}

	if err := os.Rename(tmpPath, localPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move download into place: %w", err)
	}

	log.Printf("[Storage] Downloaded %s", filepath.Base(localPath))
	return nil
}

// CleanupEpisode deletes everything belonging to this episode: the four
// per-episode directories plus the master audio/video/subtitle files. It runs
// in the cycle's finally path, so it never returns an error: failures are
// logged and swallowed, and deleting something already gone is a no-op.
func (m *Manager) CleanupEpisode() {
	log.Printf("[Storage] [%s] Cleaning up episode files", m.episodeID)

	paths := []string{
		m.AudioDir(),
		m.SubtitlesDir(),
		m.VideoDir(),
		m.PartsDir(),
		m.MasterAudioPath(),
		m.SubtitlePath(),
		m.FinalVideoPath(),
	}

	for _, path := range paths {
		m.safeDelete(path)
	}
}

// ReleasePart deletes one published (or publish-attempted) part file so disk
// usage stays bounded while the remaining parts wait out the posting interval.
func (m *Manager) ReleasePart(partPath string) {
	log.Printf("[Storage] [%s] Releasing part: %s", m.episodeID, partPath)
	m.safeDelete(partPath)
}

func (m *Manager) safeDelete(path string) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		log.Printf("[Storage] [%s] Could not stat %s during cleanup: %v", m.episodeID, path, err)
		return
	}

	if info.IsDir() {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		log.Printf("[Storage] [%s] Failed to delete %s: %v", m.episodeID, path, err)
	}
}
