package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
)

func sampleCast() (hosts, guests []models.Character) {
	hosts = []models.Character{
		{ID: 1, Name: "Jack", Gender: models.GenderMale, Voice: "vits_male_01", Persona: "The charismatic lead host."},
		{ID: 2, Name: "Olivia", Gender: models.GenderFemale, Voice: "vits_female_01", Persona: "The empathetic co-host."},
	}
	guests = []models.Character{
		{ID: 100, Name: "Ryan", Gender: models.GenderMale, Voice: "vits_male_02", Persona: "A shy gamer."},
		{ID: 101, Name: "Mia", Gender: models.GenderFemale, Voice: "vits_female_02", Persona: "A chaotic influencer."},
	}
	return
}

func TestBuildScriptPrompt(t *testing.T) {
	hosts, guests := sampleCast()
	prompt := buildScriptPrompt(hosts, guests, 10)

	for _, want := range []string{
		"Jack and Olivia",
		"Ryan and Mia",
		"Approximately 10 minutes",
		"- Ryan (ID: 100, Gender: male): A shy gamer.",
		`"speaker_id"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestParseScriptJSONArray(t *testing.T) {
	content := `[{"speaker_id": 1, "text": "Hello!", "scene": "intro", "emotion": "excited"}]`
	lines, err := parseScriptJSON(content)
	if err != nil {
		t.Fatalf("parseScriptJSON failed: %v", err)
	}
	if len(lines) != 1 || lines[0].Text != "Hello!" {
		t.Errorf("unexpected lines: %+v", lines)
	}
}

func TestParseScriptJSONWrappedObject(t *testing.T) {
	// JSON-mode models often wrap the array in a single-key object.
	content := `{"script": [{"speaker_id": "Jack", "text": "Hi"}, {"speaker_id": 2, "text": "Hey"}]}`
	lines, err := parseScriptJSON(content)
	if err != nil {
		t.Fatalf("parseScriptJSON failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].SpeakerID != "Jack" {
		t.Errorf("raw speaker reference not preserved: %v", lines[0].SpeakerID)
	}
}

func TestParseScriptJSONRejectsBadShapes(t *testing.T) {
	for _, content := range []string{
		`not json at all`,
		`{"a": [], "b": []}`,
		`{"script": {"speaker_id": 1}}`,
	} {
		if _, err := parseScriptJSON(content); err == nil {
			t.Errorf("parseScriptJSON(%q) accepted invalid content", content)
		}
	}
}

func TestGroqScriptServiceGenerate(t *testing.T) {
	script := `[{"speaker_id": 1, "text": "Welcome to the show!", "scene": "studio", "emotion": "excited"}]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "llama-3.3-70b-versatile" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) == 0 || !strings.Contains(req.Messages[0].Content, "AI Love Connections") {
			t.Error("prompt not forwarded")
		}

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": script}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	svc := NewGroqScriptService("test-key", srv.URL, "llama-3.3-70b-versatile")
	hosts, guests := sampleCast()

	lines, err := svc.GenerateScript(context.Background(), hosts, guests, 10)
	if err != nil {
		t.Fatalf("GenerateScript failed: %v", err)
	}
	if len(lines) != 1 || lines[0].Text != "Welcome to the show!" {
		t.Errorf("unexpected lines: %+v", lines)
	}
}

func TestGroqScriptServiceEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices": []}`)
	}))
	defer srv.Close()

	svc := NewGroqScriptService("test-key", srv.URL, "m")
	hosts, guests := sampleCast()
	if _, err := svc.GenerateScript(context.Background(), hosts, guests, 10); err == nil {
		t.Fatal("expected error on empty choices")
	}
}

func TestEscapeFilterPath(t *testing.T) {
	got := escapeFilterPath(`C:\media\subs's.srt`)
	want := `C\:\\media\\subs'\''s.srt`
	if got != want {
		t.Errorf("escapeFilterPath = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("abcdefghij", 4); got != "abcd..." {
		t.Errorf("truncate long = %q", got)
	}
}
