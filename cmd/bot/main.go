package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gida-concept/ai-radio-show-bot/internal/api"
	"github.com/Gida-concept/ai-radio-show-bot/internal/audio"
	"github.com/Gida-concept/ai-radio-show-bot/internal/cast"
	"github.com/Gida-concept/ai-radio-show-bot/internal/config"
	"github.com/Gida-concept/ai-radio-show-bot/internal/db"
	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
	"github.com/Gida-concept/ai-radio-show-bot/internal/publish"
	"github.com/Gida-concept/ai-radio-show-bot/internal/services"
	"github.com/Gida-concept/ai-radio-show-bot/internal/show"
	"github.com/Gida-concept/ai-radio-show-bot/internal/storage"
	"github.com/Gida-concept/ai-radio-show-bot/internal/subtitles"
	"github.com/Gida-concept/ai-radio-show-bot/internal/video"
)

func main() {
	log.Println("=========================================")
	log.Println("===   AI Radio Show Bot Initializing  ===")
	log.Println("=========================================")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Episode history store is optional.
	var store *db.DB
	if cfg.DatabaseURL != "" {
		store, err = db.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to prepare database schema: %v", err)
		}
		log.Println("Connected to database, episode history enabled")
	} else {
		log.Println("No DATABASE_URL set, episode history disabled")
	}

	castMgr, err := cast.New(cfg.CharactersJSONPath)
	if err != nil {
		log.Fatalf("Failed to load cast: %v", err)
	}

	// Script backend: Gemini when a key is configured, Groq otherwise.
	var scripter services.ScriptGenerator
	if cfg.GeminiKey != "" {
		scripter = services.NewGeminiScriptService(cfg.GeminiKey, cfg.GeminiModel)
		log.Printf("Script backend: Gemini (model: %s)", cfg.GeminiModel)
	} else {
		scripter = services.NewGroqScriptService(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqLLMModel)
		log.Printf("Script backend: Groq (model: %s)", cfg.GroqLLMModel)
	}

	ffmpegSvc := services.NewFFmpegService()
	ttsSvc := services.NewElevenLabsService(cfg.ElevenLabsKey)
	whisperSvc := services.NewWhisperService(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqWhisperModel)

	audioEngine := audio.NewEngine(ttsSvc, ffmpegSvc, audio.DefaultVoiceTable())
	subtitleEngine := subtitles.NewEngine(whisperSvc)
	videoEngine := video.NewEngine(ffmpegSvc, int(cfg.PartDuration/time.Second))

	// Publisher: a missing Facebook config means parts are released unposted.
	var uploader publish.Uploader
	if cfg.FacebookPageID != "" && cfg.FacebookAccessToken != "" {
		uploader = publish.NewFacebookUploader(cfg.FacebookPageID, cfg.FacebookAccessToken)
		log.Printf("Publishing enabled (Facebook page %s)", cfg.FacebookPageID)
	} else {
		log.Println("WARNING: Facebook credentials not fully set, posting will be skipped")
	}

	tracker := show.NewTracker()

	newStorage := func(episodeID string) show.EpisodeStorage {
		return storage.New(cfg.TempDir, episodeID, cfg.BackgroundVideoURL, cfg.BackgroundMusicURL, nil)
	}

	// The publisher releases parts through the episode's own storage manager,
	// so it is wired per-cycle via the adapter below.
	orchestrator := show.NewOrchestrator(show.OrchestratorParams{
		Cast:       castMgr,
		Scripter:   scripter,
		Audio:      audioEngine,
		Subtitles:  subtitleEngine,
		Video:      videoEngine,
		Publisher:  publishStage{uploader: uploader, interval: cfg.PostingInterval, tempDir: cfg.TempDir},
		NewStorage: newStorage,
		Tracker:    tracker,
		Store:      storeOrNil(store),

		MinShowMinutes: cfg.MinShowMinutes,
		MaxShowMinutes: cfg.MaxShowMinutes,
	})

	scheduler := show.NewScheduler(orchestrator, cfg.ShowInterval)

	// Optional status API.
	var server *http.Server
	if cfg.APIEnabled {
		handler := api.NewHandler(tracker, episodeStoreOrNil(store))
		router := api.NewRouter(handler, api.RouterConfig{
			BackendAPIKey:      cfg.BackendAPIKey,
			CorsAllowedOrigins: cfg.CorsAllowedOrigins,
		})

		if cfg.BackendAPIKey == "" {
			log.Println("WARNING: No BACKEND_API_KEY set, status API is unprotected (dev mode)")
		}

		server = &http.Server{Addr: ":" + cfg.APIPort, Handler: router}
		go func() {
			log.Printf("Status API listening on :%s", cfg.APIPort)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Status API error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutdown signal received")
		cancel()
	}()

	scheduler.Run(ctx)

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Status API forced shutdown: %v", err)
		}
	}

	log.Println("Bot stopped")
}

// publishStage builds a publisher per cycle so parts are released through the
// episode's own storage manager.
type publishStage struct {
	uploader publish.Uploader
	interval time.Duration
	tempDir  string
}

func (p publishStage) PublishAll(ctx context.Context, episodeID string, parts []models.VideoPart, hosts, guests []models.Character) int {
	st := storage.New(p.tempDir, episodeID, "", "", nil)
	return publish.NewPublisher(p.uploader, st, p.interval).PublishAll(ctx, episodeID, parts, hosts, guests)
}

// storeOrNil avoids a typed-nil interface when the database is disabled.
func storeOrNil(store *db.DB) show.Store {
	if store == nil {
		return nil
	}
	return store
}

func episodeStoreOrNil(store *db.DB) api.EpisodeStore {
	if store == nil {
		return nil
	}
	return store
}
