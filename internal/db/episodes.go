package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
	"github.com/google/uuid"
)

// Schema is the episodes table DDL, applied at startup when the store is
// configured.
const Schema = `
CREATE TABLE IF NOT EXISTS episodes (
	id UUID PRIMARY KEY,
	episode_id TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL,
	error_message TEXT,
	parts_total INT NOT NULL DEFAULT 0,
	parts_published INT NOT NULL DEFAULT 0,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
)`

// EnsureSchema creates the episodes table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to ensure episodes schema: %w", err)
	}
	return nil
}

func (db *DB) CreateEpisode(ctx context.Context, episodeID string) (*models.Episode, error) {
	ep := &models.Episode{
		ID:        uuid.New(),
		EpisodeID: episodeID,
		Status:    models.EpisodeStatusPreparing,
		StartedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO episodes (id, episode_id, status, started_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := db.ExecContext(ctx, query, ep.ID, ep.EpisodeID, ep.Status, ep.StartedAt); err != nil {
		return nil, fmt.Errorf("failed to create episode: %w", err)
	}
	return ep, nil
}

func (db *DB) UpdateStatus(ctx context.Context, episodeID string, status models.EpisodeStatus) error {
	query := `UPDATE episodes SET status = $1 WHERE episode_id = $2`
	if _, err := db.ExecContext(ctx, query, status, episodeID); err != nil {
		return fmt.Errorf("failed to update episode status: %w", err)
	}
	return nil
}

// FinishEpisode records the terminal state of a cycle. errMsg is nil for a
// fully successful run.
func (db *DB) FinishEpisode(ctx context.Context, episodeID string, status models.EpisodeStatus, errMsg *string, partsTotal, partsPublished int) error {
	query := `
		UPDATE episodes
		SET status = $1, error_message = $2, parts_total = $3, parts_published = $4, finished_at = $5
		WHERE episode_id = $6
	`
	_, err := db.ExecContext(ctx, query, status, errMsg, partsTotal, partsPublished, time.Now().UTC(), episodeID)
	if err != nil {
		return fmt.Errorf("failed to finish episode: %w", err)
	}
	return nil
}

func (db *DB) GetEpisode(ctx context.Context, episodeID string) (*models.Episode, error) {
	query := `
		SELECT id, episode_id, status, error_message, parts_total, parts_published, started_at, finished_at
		FROM episodes
		WHERE episode_id = $1
	`

	ep := &models.Episode{}
	err := db.QueryRowContext(ctx, query, episodeID).Scan(
		&ep.ID, &ep.EpisodeID, &ep.Status, &ep.ErrorMessage,
		&ep.PartsTotal, &ep.PartsPublished, &ep.StartedAt, &ep.FinishedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("episode not found: %s", episodeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get episode: %w", err)
	}

	return ep, nil
}

func (db *DB) ListRecentEpisodes(ctx context.Context, limit int) ([]models.Episode, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, episode_id, status, error_message, parts_total, parts_published, started_at, finished_at
		FROM episodes
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []models.Episode
	for rows.Next() {
		var ep models.Episode
		err := rows.Scan(
			&ep.ID, &ep.EpisodeID, &ep.Status, &ep.ErrorMessage,
			&ep.PartsTotal, &ep.PartsPublished, &ep.StartedAt, &ep.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		episodes = append(episodes, ep)
	}

	return episodes, rows.Err()
}
