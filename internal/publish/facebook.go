package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ---------------------------------------------------------------------------
// Facebook Graph API video upload
// Uses the three-phase resumable protocol: start opens a session, transfer
// streams the file, finish publishes with the caption. The Graph API can
// return HTTP 200 with an error object in the body, so every response body
// is inspected, not just the status code.
// ---------------------------------------------------------------------------

const graphVideoBaseURL = "https://graph-video.facebook.com/v19.0"

// FacebookUploader implements Uploader against the Graph video API.
type FacebookUploader struct {
	pageID      string
	accessToken string
	baseURL     string
	client      *http.Client
}

var _ Uploader = (*FacebookUploader)(nil)

func NewFacebookUploader(pageID, accessToken string) *FacebookUploader {
	return &FacebookUploader{
		pageID:      pageID,
		accessToken: accessToken,
		baseURL:     graphVideoBaseURL,
		client:      &http.Client{Timeout: 10 * time.Minute},
	}
}

// NewFacebookUploaderWithBaseURL exists for tests against a local server.
func NewFacebookUploaderWithBaseURL(pageID, accessToken, baseURL string) *FacebookUploader {
	u := NewFacebookUploader(pageID, accessToken)
	u.baseURL = baseURL
	return u
}

type graphResponse struct {
	UploadSessionID string `json:"upload_session_id"`
	VideoID         string `json:"video_id"`
	StartOffset     string `json:"start_offset"`
	Success         bool   `json:"success"`
	Error           *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (u *FacebookUploader) videosURL() string {
	return fmt.Sprintf("%s/%s/videos", u.baseURL, u.pageID)
}

// Upload pushes one video part through the full start/transfer/finish cycle.
func (u *FacebookUploader) Upload(ctx context.Context, videoPath, caption string) error {
	info, err := os.Stat(videoPath)
	if err != nil {
		return fmt.Errorf("cannot stat video part: %w", err)
	}

	// Phase 1: open the upload session.
	startResp, err := u.postForm(ctx, url.Values{
		"upload_phase": {"start"},
		"access_token": {u.accessToken},
		"file_size":    {strconv.FormatInt(info.Size(), 10)},
	})
	if err != nil {
		return fmt.Errorf("upload start phase failed: %w", err)
	}
	if startResp.UploadSessionID == "" {
		return fmt.Errorf("upload start phase returned no session ID")
	}

	// Phase 2: stream the file content.
	if err := u.transfer(ctx, videoPath, startResp.UploadSessionID); err != nil {
		return fmt.Errorf("upload transfer phase failed: %w", err)
	}

	// Phase 3: publish.
	finishResp, err := u.postForm(ctx, url.Values{
		"upload_phase":      {"finish"},
		"access_token":      {u.accessToken},
		"upload_session_id": {startResp.UploadSessionID},
		"description":       {caption},
		"published":         {"true"},
	})
	if err != nil {
		return fmt.Errorf("upload finish phase failed: %w", err)
	}
	if !finishResp.Success {
		return fmt.Errorf("publish not confirmed for video %s", startResp.VideoID)
	}

	return nil
}

func (u *FacebookUploader) postForm(ctx context.Context, params url.Values) (*graphResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", u.videosURL(), bytes.NewBufferString(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeGraphResponse(resp)
}

func (u *FacebookUploader) transfer(ctx context.Context, videoPath, sessionID string) error {
	f, err := os.Open(videoPath)
	if err != nil {
		return fmt.Errorf("cannot open video part: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fields := map[string]string{
		"upload_phase":      "transfer",
		"access_token":      u.accessToken,
		"upload_session_id": sessionID,
		"start_offset":      "0",
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to write form field: %w", err)
		}
	}

	part, err := w.CreateFormFile("video_file_chunk", filepath.Base(videoPath))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to copy video data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", u.videosURL(), &body)
	if err != nil {
		return fmt.Errorf("failed to build transfer request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("transfer request failed: %w", err)
	}
	defer resp.Body.Close()

	_, err = decodeGraphResponse(resp)
	return err
}

// decodeGraphResponse parses a Graph API body and surfaces both HTTP-level
// and body-level errors.
func decodeGraphResponse(resp *http.Response) (*graphResponse, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var gr graphResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("graph API returned status %d with unparseable body: %s", resp.StatusCode, string(body))
	}

	if gr.Error != nil {
		return nil, fmt.Errorf("graph API error (code %d, %s): %s", gr.Error.Code, gr.Error.Type, gr.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph API returned status %d: %s", resp.StatusCode, string(body))
	}

	return &gr, nil
}
