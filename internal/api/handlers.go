package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
	"github.com/Gida-concept/ai-radio-show-bot/internal/show"
	"github.com/go-chi/chi/v5"
)

// EpisodeStore reads episode history. Nil when no database is configured.
type EpisodeStore interface {
	GetEpisode(ctx context.Context, episodeID string) (*models.Episode, error)
	ListRecentEpisodes(ctx context.Context, limit int) ([]models.Episode, error)
}

type Handler struct {
	tracker *show.Tracker
	store   EpisodeStore
}

func NewHandler(tracker *show.Tracker, store EpisodeStore) *Handler {
	return &Handler{tracker: tracker, store: store}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status reports the current cycle's progress.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.tracker.Snapshot())
}

// ListEpisodes serves recent episode history. 503 when no store is configured.
func (h *Handler) ListEpisodes(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "Episode history is disabled (no database configured)",
		})
		return
	}

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	episodes, err := h.store.ListRecentEpisodes(r.Context(), limit)
	if err != nil {
		log.Printf("[API] Failed to list episodes: %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to list episodes"})
		return
	}

	if episodes == nil {
		episodes = []models.Episode{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"episodes": episodes})
}

func (h *Handler) GetEpisode(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "Episode history is disabled (no database configured)",
		})
		return
	}

	episodeID := chi.URLParam(r, "episodeID")
	ep, err := h.store.GetEpisode(r.Context(), episodeID)
	if err != nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "Episode not found"})
		return
	}
	respondJSON(w, http.StatusOK, ep)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}
