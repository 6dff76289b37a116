package show

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/Gida-concept/ai-radio-show-bot/internal/audio"
	"github.com/Gida-concept/ai-radio-show-bot/internal/cast"
	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
	"github.com/Gida-concept/ai-radio-show-bot/internal/video"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Orchestrator
// Drives one complete episode cycle: prepare workspace, script, voice,
// subtitle, render, split, publish. Cleanup of the episode's files runs
// unconditionally at the end of every cycle, successful or not.
// ---------------------------------------------------------------------------

// CastSource selects participants and resolves speakers.
type CastSource interface {
	SelectParticipants() (*cast.Participants, error)
	All() []models.Character
	ByID(id int) (models.Character, error)
}

// Scripter generates the raw episode script.
type Scripter interface {
	GenerateScript(ctx context.Context, hosts, guests []models.Character, showMinutes int) ([]models.RawScriptLine, error)
}

// AudioStage voices the script into a master track.
type AudioStage interface {
	GenerateShowAudio(ctx context.Context, script []models.ScriptLine, cast audio.CharacterResolver, audioDir, masterPath string) ([]models.LineAudio, float64, error)
}

// SubtitleStage writes the SRT for a master track.
type SubtitleStage interface {
	Generate(ctx context.Context, masterAudioPath, srtPath string) error
}

// VideoStage renders and splits the episode video.
type VideoStage interface {
	Assemble(ctx context.Context, p video.AssembleParams) (float64, error)
	SplitIntoParts(ctx context.Context, finalPath, partsDir string) ([]models.VideoPart, error)
}

// PublishStage posts the finished parts.
type PublishStage interface {
	PublishAll(ctx context.Context, episodeID string, parts []models.VideoPart, hosts, guests []models.Character) int
}

// EpisodeStorage is the per-episode workspace.
type EpisodeStorage interface {
	CreateEpisodeDirs() error
	EnsureBackgroundAssets(ctx context.Context) error
	AudioDir() string
	PartsDir() string
	MasterAudioPath() string
	SubtitlePath() string
	FinalVideoPath() string
	BackgroundVideoPath() string
	BackgroundMusicPath() string
	CleanupEpisode()
}

// Store persists episode history. Nil disables persistence.
type Store interface {
	CreateEpisode(ctx context.Context, episodeID string) (*models.Episode, error)
	UpdateStatus(ctx context.Context, episodeID string, status models.EpisodeStatus) error
	FinishEpisode(ctx context.Context, episodeID string, status models.EpisodeStatus, errMsg *string, partsTotal, partsPublished int) error
}

type Orchestrator struct {
	cast       CastSource
	scripter   Scripter
	audio      AudioStage
	subtitles  SubtitleStage
	video      VideoStage
	publisher  PublishStage
	newStorage func(episodeID string) EpisodeStorage
	tracker    *Tracker
	store      Store

	minShowMinutes int
	maxShowMinutes int
	rng            *rand.Rand
}

type OrchestratorParams struct {
	Cast       CastSource
	Scripter   Scripter
	Audio      AudioStage
	Subtitles  SubtitleStage
	Video      VideoStage
	Publisher  PublishStage
	NewStorage func(episodeID string) EpisodeStorage
	Tracker    *Tracker
	Store      Store

	MinShowMinutes int
	MaxShowMinutes int
}

func NewOrchestrator(p OrchestratorParams) *Orchestrator {
	return &Orchestrator{
		cast:           p.Cast,
		scripter:       p.Scripter,
		audio:          p.Audio,
		subtitles:      p.Subtitles,
		video:          p.Video,
		publisher:      p.Publisher,
		newStorage:     p.NewStorage,
		tracker:        p.Tracker,
		store:          p.Store,
		minShowMinutes: p.MinShowMinutes,
		maxShowMinutes: p.MaxShowMinutes,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// newEpisodeID builds the cycle identifier: a sortable timestamp plus a short
// random suffix so two cycles started in the same second cannot collide.
func (o *Orchestrator) newEpisodeID() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return time.Now().Format("20060102_150405") + "_" + suffix
}

// RunCycle executes one complete show cycle. Errors abort the cycle but are
// contained: the scheduler keeps running, and the episode's temp files are
// cleaned up regardless of how far the cycle got.
func (o *Orchestrator) RunCycle(ctx context.Context) error {
	episodeID := o.newEpisodeID()
	log.Printf("####################################################")
	log.Printf("### STARTING NEW SHOW CYCLE | ID: %s ###", episodeID)
	log.Printf("####################################################")

	st := o.newStorage(episodeID)
	defer func() {
		log.Printf("[Show] [%s] Cleaning up episode files", episodeID)
		st.CleanupEpisode()
	}()

	o.tracker.Begin(episodeID)
	if o.store != nil {
		if _, err := o.store.CreateEpisode(ctx, episodeID); err != nil {
			log.Printf("[Show] [%s] Failed to record episode in store: %v", episodeID, err)
		}
	}

	if err := o.runStages(ctx, episodeID, st); err != nil {
		o.tracker.Fail(err)
		o.finishStore(ctx, episodeID, models.EpisodeStatusFailed, err)
		log.Printf("[Show] [%s] CYCLE ABORTED: %v", episodeID, err)
		return err
	}

	o.tracker.Complete()
	o.finishStore(ctx, episodeID, models.EpisodeStatusCompleted, nil)
	log.Printf("[Show] [%s] --- SHOW CYCLE COMPLETED SUCCESSFULLY ---", episodeID)
	return nil
}

func (o *Orchestrator) runStages(ctx context.Context, episodeID string, st EpisodeStorage) error {
	// Prepare the workspace.
	o.setStatus(ctx, episodeID, models.EpisodeStatusPreparing)
	if err := st.CreateEpisodeDirs(); err != nil {
		return fmt.Errorf("workspace setup failed: %w", err)
	}
	if err := st.EnsureBackgroundAssets(ctx); err != nil {
		return fmt.Errorf("background asset download failed: %w", err)
	}

	// Script.
	o.setStatus(ctx, episodeID, models.EpisodeStatusScripting)
	participants, err := o.cast.SelectParticipants()
	if err != nil {
		return fmt.Errorf("cast selection failed: %w", err)
	}

	minutes := o.minShowMinutes
	if o.maxShowMinutes > o.minShowMinutes {
		minutes += o.rng.Intn(o.maxShowMinutes - o.minShowMinutes + 1)
	}

	raw, err := o.scripter.GenerateScript(ctx, participants.Hosts, participants.Guests, minutes)
	if err != nil {
		return fmt.Errorf("script generation failed: %w", err)
	}

	script, err := models.NormalizeScript(raw, o.cast.All())
	if err != nil {
		return fmt.Errorf("script normalization failed: %w", err)
	}
	if len(script) == 0 {
		return fmt.Errorf("script generation returned no usable lines")
	}

	// Audio.
	o.setStatus(ctx, episodeID, models.EpisodeStatusVoicing)
	_, _, err = o.audio.GenerateShowAudio(ctx, script, o.cast, st.AudioDir(), st.MasterAudioPath())
	if err != nil {
		return fmt.Errorf("audio generation failed: %w", err)
	}

	// Subtitles.
	o.setStatus(ctx, episodeID, models.EpisodeStatusSubtitling)
	if err := o.subtitles.Generate(ctx, st.MasterAudioPath(), st.SubtitlePath()); err != nil {
		return fmt.Errorf("subtitle generation failed: %w", err)
	}

	// Render the full show.
	o.setStatus(ctx, episodeID, models.EpisodeStatusRendering)
	if _, err := o.video.Assemble(ctx, video.AssembleParams{
		BackgroundVideo: st.BackgroundVideoPath(),
		BackgroundMusic: st.BackgroundMusicPath(),
		MasterAudio:     st.MasterAudioPath(),
		SubtitlePath:    st.SubtitlePath(),
		OutputPath:      st.FinalVideoPath(),
	}); err != nil {
		return fmt.Errorf("video assembly failed: %w", err)
	}

	// Split into parts.
	o.setStatus(ctx, episodeID, models.EpisodeStatusSplitting)
	parts, err := o.video.SplitIntoParts(ctx, st.FinalVideoPath(), st.PartsDir())
	if err != nil {
		return fmt.Errorf("video splitting failed: %w", err)
	}
	o.tracker.SetParts(len(parts), 0)

	if len(parts) == 0 {
		log.Printf("[Show] [%s] No video parts were created, skipping publishing", episodeID)
		return nil
	}

	// Publish.
	o.setStatus(ctx, episodeID, models.EpisodeStatusPublishing)
	published := o.publisher.PublishAll(ctx, episodeID, parts, participants.Hosts, participants.Guests)
	o.tracker.SetParts(len(parts), published)

	return nil
}

func (o *Orchestrator) setStatus(ctx context.Context, episodeID string, status models.EpisodeStatus) {
	log.Printf("[Show] [%s] Stage: %s", episodeID, status)
	o.tracker.SetStatus(status)
	if o.store != nil {
		if err := o.store.UpdateStatus(ctx, episodeID, status); err != nil {
			log.Printf("[Show] [%s] Failed to persist status %s: %v", episodeID, status, err)
		}
	}
}

func (o *Orchestrator) finishStore(ctx context.Context, episodeID string, status models.EpisodeStatus, cycleErr error) {
	if o.store == nil {
		return
	}

	var errMsg *string
	if cycleErr != nil {
		s := cycleErr.Error()
		errMsg = &s
	}

	snap := o.tracker.Snapshot()
	if err := o.store.FinishEpisode(ctx, episodeID, status, errMsg, snap.PartsTotal, snap.PartsPublished); err != nil {
		log.Printf("[Show] [%s] Failed to finish episode record: %v", episodeID, err)
	}
}
