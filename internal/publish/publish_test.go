package publish

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
)

type fakeUploader struct {
	failFirst int // number of leading attempts that fail
	calls     int
	captions  []string
	paths     []string
}

func (f *fakeUploader) Upload(ctx context.Context, videoPath, caption string) error {
	f.calls++
	f.paths = append(f.paths, videoPath)
	f.captions = append(f.captions, caption)
	if f.calls <= f.failFirst {
		return fmt.Errorf("transient upload failure")
	}
	return nil
}

type fakeReleaser struct {
	mu       sync.Mutex
	released []string
}

func (f *fakeReleaser) ReleasePart(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, path)
}

func testParts(n int) []models.VideoPart {
	parts := make([]models.VideoPart, n)
	for i := range parts {
		parts[i] = models.VideoPart{Index: i + 1, Path: fmt.Sprintf("/parts/part_%d.mp4", i+1), Duration: 150}
	}
	return parts
}

func testCast() (hosts, guests []models.Character) {
	hosts = []models.Character{{Name: "Olivia"}, {Name: "Jack"}}
	guests = []models.Character{{Name: "Ryan"}, {Name: "Mia"}}
	return
}

func newTestPublisher(u Uploader, r PartReleaser) (*Publisher, *[]time.Duration) {
	p := NewPublisher(u, r, 600*time.Second)
	var sleeps []time.Duration
	p.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return p, &sleeps
}

func TestPublishAllPostsInOrder(t *testing.T) {
	up := &fakeUploader{}
	rel := &fakeReleaser{}
	p, sleeps := newTestPublisher(up, rel)
	hosts, guests := testCast()

	posted := p.PublishAll(context.Background(), "ep1", testParts(3), hosts, guests)
	if posted != 3 {
		t.Fatalf("posted = %d, want 3", posted)
	}
	if len(up.paths) != 3 || up.paths[0] != "/parts/part_1.mp4" || up.paths[2] != "/parts/part_3.mp4" {
		t.Errorf("upload order wrong: %v", up.paths)
	}

	// Inter-post delay applies between parts but not after the last one.
	if len(*sleeps) != 2 {
		t.Fatalf("expected 2 inter-post delays, got %d", len(*sleeps))
	}
	for _, d := range *sleeps {
		if d != 600*time.Second {
			t.Errorf("inter-post delay = %s, want 600s", d)
		}
	}

	if len(rel.released) != 3 {
		t.Errorf("expected 3 releases, got %d", len(rel.released))
	}
}

func TestPublishAllCaptions(t *testing.T) {
	up := &fakeUploader{}
	p, _ := newTestPublisher(up, &fakeReleaser{})
	hosts, guests := testCast()

	p.PublishAll(context.Background(), "ep1", testParts(3), hosts, guests)

	// Names are sorted so captions are deterministic.
	if !strings.Contains(up.captions[0], "Will Mia and Ryan find love?") {
		t.Errorf("guest names wrong in caption: %q", up.captions[0])
	}
	if !strings.Contains(up.captions[0], "Our hosts Jack and Olivia") {
		t.Errorf("host names wrong in caption: %q", up.captions[0])
	}

	// First and last parts carry a teaser; middle parts get the bare counter.
	if !strings.HasSuffix(up.captions[0], "Part 1/3 - the debrief begins! 👀") {
		t.Errorf("first caption missing opener teaser: %q", up.captions[0])
	}
	if !strings.HasSuffix(up.captions[1], "Part 2/3") {
		t.Errorf("middle caption should end with the bare counter: %q", up.captions[1])
	}
	if !strings.HasSuffix(up.captions[2], "Part 3/3 - the final verdict! 💘") {
		t.Errorf("last caption missing closer teaser: %q", up.captions[2])
	}
}

func TestBuildCaptionSinglePart(t *testing.T) {
	hosts, guests := testCast()

	caption := buildCaption(hosts, guests, 1, 1)
	if !strings.HasSuffix(caption, "Part 1/1") {
		t.Errorf("single-part caption should end with the bare counter: %q", caption)
	}
}

func TestPublishAllRetriesWithBackoff(t *testing.T) {
	up := &fakeUploader{failFirst: 2}
	rel := &fakeReleaser{}
	p, sleeps := newTestPublisher(up, rel)
	hosts, guests := testCast()

	posted := p.PublishAll(context.Background(), "ep1", testParts(1), hosts, guests)
	if posted != 1 {
		t.Fatalf("posted = %d, want 1 after retries", posted)
	}
	if up.calls != 3 {
		t.Errorf("upload calls = %d, want 3", up.calls)
	}

	// Two retry delays, doubling.
	if len(*sleeps) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d: %v", len(*sleeps), *sleeps)
	}
	if (*sleeps)[0] != 2*time.Second || (*sleeps)[1] != 4*time.Second {
		t.Errorf("backoff sequence = %v, want [2s 4s]", *sleeps)
	}
}

func TestPublishAllExhaustedRetriesStillReleases(t *testing.T) {
	up := &fakeUploader{failFirst: 100}
	rel := &fakeReleaser{}
	p, _ := newTestPublisher(up, rel)
	hosts, guests := testCast()

	posted := p.PublishAll(context.Background(), "ep1", testParts(2), hosts, guests)
	if posted != 0 {
		t.Fatalf("posted = %d, want 0", posted)
	}
	// 3 attempts per part, both parts tried.
	if up.calls != 6 {
		t.Errorf("upload calls = %d, want 6", up.calls)
	}
	// Both parts released exactly once despite failure.
	if len(rel.released) != 2 {
		t.Errorf("releases = %v, want both parts exactly once", rel.released)
	}
}

func TestPublishAllUnconfiguredReleasesWithoutPosting(t *testing.T) {
	rel := &fakeReleaser{}
	p, sleeps := newTestPublisher(nil, rel)
	hosts, guests := testCast()

	posted := p.PublishAll(context.Background(), "ep1", testParts(3), hosts, guests)
	if posted != 0 {
		t.Fatalf("posted = %d, want 0 when unconfigured", posted)
	}
	if len(rel.released) != 3 {
		t.Errorf("expected all 3 parts released, got %d", len(rel.released))
	}
	if len(*sleeps) != 0 {
		t.Errorf("unconfigured publish should not sleep, got %v", *sleeps)
	}
}

func TestFacebookUploaderThreePhases(t *testing.T) {
	videoPath := filepath.Join(t.TempDir(), "part_1.mp4")
	if err := os.WriteFile(videoPath, []byte("VIDEODATA"), 0644); err != nil {
		t.Fatal(err)
	}

	var phases []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			r.ParseForm()
		}
		phase := r.FormValue("upload_phase")
		phases = append(phases, phase)

		switch phase {
		case "start":
			if r.FormValue("file_size") != "9" {
				t.Errorf("file_size = %q, want 9", r.FormValue("file_size"))
			}
			fmt.Fprint(w, `{"upload_session_id":"sess1","video_id":"vid1","start_offset":"0"}`)
		case "transfer":
			if r.FormValue("upload_session_id") != "sess1" {
				t.Errorf("transfer session = %q", r.FormValue("upload_session_id"))
			}
			file, _, err := r.FormFile("video_file_chunk")
			if err != nil {
				t.Errorf("missing video_file_chunk: %v", err)
			} else {
				file.Close()
			}
			fmt.Fprint(w, `{"start_offset":"9"}`)
		case "finish":
			if !strings.Contains(r.FormValue("description"), "Part 1/1") {
				t.Errorf("finish description = %q", r.FormValue("description"))
			}
			fmt.Fprint(w, `{"success":true}`)
		default:
			t.Errorf("unexpected phase %q", phase)
		}
	}))
	defer srv.Close()

	up := NewFacebookUploaderWithBaseURL("page123", "token", srv.URL)
	err := up.Upload(context.Background(), videoPath, "Caption text\n\nPart 1/1")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	want := []string{"start", "transfer", "finish"}
	if len(phases) != 3 {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
	for i, p := range want {
		if phases[i] != p {
			t.Errorf("phase %d = %q, want %q", i, phases[i], p)
		}
	}
}

func TestFacebookUploaderLogicalErrorIn200Body(t *testing.T) {
	videoPath := filepath.Join(t.TempDir(), "part_1.mp4")
	os.WriteFile(videoPath, []byte("X"), 0644)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// HTTP 200 but a Graph error object in the body.
		fmt.Fprint(w, `{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`)
	}))
	defer srv.Close()

	up := NewFacebookUploaderWithBaseURL("page123", "badtoken", srv.URL)
	err := up.Upload(context.Background(), videoPath, "caption")
	if err == nil || !strings.Contains(err.Error(), "OAuthException") {
		t.Fatalf("expected graph error surfaced, got %v", err)
	}
}

func TestFacebookUploaderUnconfirmedPublish(t *testing.T) {
	videoPath := filepath.Join(t.TempDir(), "part_1.mp4")
	os.WriteFile(videoPath, []byte("X"), 0644)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			r.ParseForm()
		}
		switch r.FormValue("upload_phase") {
		case "start":
			fmt.Fprint(w, `{"upload_session_id":"sess1","video_id":"vid1"}`)
		case "transfer":
			fmt.Fprint(w, `{"start_offset":"1"}`)
		case "finish":
			fmt.Fprint(w, `{"success":false}`)
		}
	}))
	defer srv.Close()

	up := NewFacebookUploaderWithBaseURL("page123", "token", srv.URL)
	err := up.Upload(context.Background(), videoPath, "caption")
	if err == nil || !strings.Contains(err.Error(), "not confirmed") {
		t.Fatalf("expected unconfirmed publish error, got %v", err)
	}
}
