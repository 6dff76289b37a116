package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
	"github.com/Gida-concept/ai-radio-show-bot/internal/show"
)

type fakeStore struct {
	episodes []models.Episode
}

func (f *fakeStore) GetEpisode(ctx context.Context, episodeID string) (*models.Episode, error) {
	for i := range f.episodes {
		if f.episodes[i].EpisodeID == episodeID {
			return &f.episodes[i], nil
		}
	}
	return nil, fmt.Errorf("episode not found: %s", episodeID)
}

func (f *fakeStore) ListRecentEpisodes(ctx context.Context, limit int) ([]models.Episode, error) {
	if limit > len(f.episodes) {
		limit = len(f.episodes)
	}
	return f.episodes[:limit], nil
}

func newTestServer(t *testing.T, store EpisodeStore, apiKey string) (*httptest.Server, *show.Tracker) {
	t.Helper()
	tracker := show.NewTracker()
	router := NewRouter(NewHandler(tracker, store), RouterConfig{BackendAPIKey: apiKey})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, tracker
}

func get(t *testing.T, url string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func TestHealthIsPublic(t *testing.T) {
	srv, _ := newTestServer(t, nil, "secret")

	resp, body := get(t, srv.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want 200", resp.StatusCode)
	}
	var out map[string]string
	if err := json.Unmarshal(body, &out); err != nil || out["status"] != "ok" {
		t.Errorf("health body = %s", body)
	}
}

func TestStatusRequiresAPIKey(t *testing.T) {
	srv, _ := newTestServer(t, nil, "secret")

	resp, _ := get(t, srv.URL+"/v1/status", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("missing key status = %d, want 401", resp.StatusCode)
	}

	resp, _ = get(t, srv.URL+"/v1/status", map[string]string{"X-API-Key": "wrong"})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("wrong key status = %d, want 403", resp.StatusCode)
	}

	resp, _ = get(t, srv.URL+"/v1/status", map[string]string{"Authorization": "Bearer secret"})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("bearer key status = %d, want 200", resp.StatusCode)
	}
}

func TestStatusReflectsTracker(t *testing.T) {
	srv, tracker := newTestServer(t, nil, "")
	tracker.Begin("20260101_120000_abcd1234")
	tracker.SetStatus(models.EpisodeStatusRendering)
	tracker.SetParts(4, 0)

	resp, body := get(t, srv.URL+"/v1/status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var snap show.CycleStatus
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.EpisodeID != "20260101_120000_abcd1234" {
		t.Errorf("episode id = %q", snap.EpisodeID)
	}
	if snap.Status != models.EpisodeStatusRendering {
		t.Errorf("status = %q, want rendering", snap.Status)
	}
	if snap.PartsTotal != 4 {
		t.Errorf("parts total = %d, want 4", snap.PartsTotal)
	}
}

func TestEpisodesWithoutStore(t *testing.T) {
	srv, _ := newTestServer(t, nil, "")

	resp, _ := get(t, srv.URL+"/v1/episodes", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("episodes without store = %d, want 503", resp.StatusCode)
	}
}

func TestEpisodesWithStore(t *testing.T) {
	store := &fakeStore{episodes: []models.Episode{
		{EpisodeID: "ep1", Status: models.EpisodeStatusCompleted},
		{EpisodeID: "ep2", Status: models.EpisodeStatusFailed},
	}}
	srv, _ := newTestServer(t, store, "")

	resp, body := get(t, srv.URL+"/v1/episodes", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("episodes status = %d, want 200", resp.StatusCode)
	}
	var out struct {
		Episodes []models.Episode `json:"episodes"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Episodes) != 2 {
		t.Errorf("episodes = %d, want 2", len(out.Episodes))
	}

	resp, body = get(t, srv.URL+"/v1/episodes/ep1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("single episode status = %d, want 200", resp.StatusCode)
	}
	var ep models.Episode
	json.Unmarshal(body, &ep)
	if ep.EpisodeID != "ep1" {
		t.Errorf("episode id = %q, want ep1", ep.EpisodeID)
	}

	resp, _ = get(t, srv.URL+"/v1/episodes/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing episode status = %d, want 404", resp.StatusCode)
	}
}
