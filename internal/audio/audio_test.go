package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
)

type fakeTTS struct {
	failOn map[string]bool
	calls  []string
}

func (f *fakeTTS) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	f.calls = append(f.calls, text)
	if f.failOn[text] {
		return nil, fmt.Errorf("synthesis rejected")
	}
	return []byte("AUDIO:" + voiceID), nil
}

type fakeMedia struct {
	durations  map[string]float64 // keyed by base name; default 2.5
	concatDst  string
	concatSrcs []string
}

func (f *fakeMedia) MediaDuration(ctx context.Context, path string) (float64, error) {
	if d, ok := f.durations[filepath.Base(path)]; ok {
		return d, nil
	}
	return 2.5, nil
}

func (f *fakeMedia) ConcatAudio(ctx context.Context, clipPaths []string, outputPath string) error {
	f.concatSrcs = append([]string{}, clipPaths...)
	f.concatDst = outputPath
	return os.WriteFile(outputPath, []byte("MASTER"), 0644)
}

type fakeCast map[int]models.Character

func (f fakeCast) ByID(id int) (models.Character, error) {
	c, ok := f[id]
	if !ok {
		return models.Character{}, fmt.Errorf("no character with id %d", id)
	}
	return c, nil
}

func testCast() fakeCast {
	return fakeCast{
		1: {ID: 1, Name: "Jack", Gender: models.GenderMale, Voice: "vits_male_01"},
		2: {ID: 2, Name: "Olivia", Gender: models.GenderFemale, Voice: "vits_female_01"},
	}
}

func TestGenerateShowAudio(t *testing.T) {
	dir := t.TempDir()
	tts := &fakeTTS{}
	media := &fakeMedia{durations: map[string]float64{"master.wav": 5.0}}
	engine := NewEngine(tts, media, DefaultVoiceTable())

	script := []models.ScriptLine{
		{SpeakerID: 1, Text: "Welcome to the show."},
		{SpeakerID: 2, Text: "Great to be here."},
	}

	master := filepath.Join(dir, "master.wav")
	lines, total, err := engine.GenerateShowAudio(context.Background(), script, testCast(), dir, master)
	if err != nil {
		t.Fatalf("GenerateShowAudio failed: %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("expected 2 line records, got %d", len(lines))
	}
	if total != 5.0 {
		t.Errorf("expected total 5.0, got %f", total)
	}
	if media.concatDst != master {
		t.Errorf("concat wrote to %s, want %s", media.concatDst, master)
	}
	if len(media.concatSrcs) != 2 {
		t.Fatalf("expected 2 clips concatenated, got %d", len(media.concatSrcs))
	}

	// Clips must be concatenated in script order.
	if !strings.Contains(media.concatSrcs[0], "line_000_1") || !strings.Contains(media.concatSrcs[1], "line_001_2") {
		t.Errorf("clips out of order: %v", media.concatSrcs)
	}

	// Metadata keeps the original text and per-clip durations.
	if lines[0].Text != "Welcome to the show." {
		t.Errorf("line 0 text = %q", lines[0].Text)
	}
	if lines[0].Duration != 2.5 {
		t.Errorf("line 0 duration = %f, want 2.5", lines[0].Duration)
	}
}

func TestGenerateShowAudioSkipsFailedLines(t *testing.T) {
	dir := t.TempDir()
	tts := &fakeTTS{failOn: map[string]bool{"This one breaks.": true}}
	media := &fakeMedia{}
	engine := NewEngine(tts, media, DefaultVoiceTable())

	script := []models.ScriptLine{
		{SpeakerID: 1, Text: "First line."},
		{SpeakerID: 2, Text: "This one breaks."},
		{SpeakerID: 1, Text: "Third line."},
	}

	lines, _, err := engine.GenerateShowAudio(context.Background(), script, testCast(), dir, filepath.Join(dir, "master.wav"))
	if err != nil {
		t.Fatalf("GenerateShowAudio failed: %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("expected 2 surviving lines, got %d", len(lines))
	}
	if lines[0].Text != "First line." || lines[1].Text != "Third line." {
		t.Errorf("wrong surviving lines: %+v", lines)
	}
}

func TestGenerateShowAudioAllLinesFail(t *testing.T) {
	dir := t.TempDir()
	tts := &fakeTTS{failOn: map[string]bool{"Only line.": true}}
	engine := NewEngine(tts, &fakeMedia{}, DefaultVoiceTable())

	script := []models.ScriptLine{{SpeakerID: 1, Text: "Only line."}}
	_, _, err := engine.GenerateShowAudio(context.Background(), script, testCast(), dir, filepath.Join(dir, "master.wav"))
	if err == nil {
		t.Fatal("expected error when every line fails")
	}
}

func TestGenerateShowAudioEmptyScript(t *testing.T) {
	engine := NewEngine(&fakeTTS{}, &fakeMedia{}, DefaultVoiceTable())
	_, _, err := engine.GenerateShowAudio(context.Background(), nil, testCast(), t.TempDir(), "master.wav")
	if err == nil {
		t.Fatal("expected error for empty script")
	}
}

func TestVoiceTableFallback(t *testing.T) {
	table := DefaultVoiceTable()

	id, found := table.Resolve(models.Character{Voice: "vits_male_01", Gender: models.GenderMale})
	if !found || id != table.Voices["vits_male_01"] {
		t.Errorf("known voice key not resolved: id=%s found=%v", id, found)
	}

	id, found = table.Resolve(models.Character{Voice: "bogus", Gender: models.GenderFemale})
	if found {
		t.Error("unknown voice key reported as found")
	}
	if id != table.Fallback[models.GenderFemale] {
		t.Errorf("expected female fallback, got %s", id)
	}
}

func TestEmotionalize(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		emotion string
		want    string
	}{
		{"no emotion", "Hello there", "", "Hello there"},
		{"unknown emotion", "Hello there", "curious", "Hello there"},
		{"anger", "stop it now", "angry", "STOP. IT. NOW!"},
		{"shock", "No way!", "shocked", "No way?!?!"},
		{"excited", "That is so funny", "excited", "That is so funny! Ha! Ha!"},
		{"sarcasm", "Sure", "sarcastic", "\"Sure\"... really?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Emotionalize(tt.text, tt.emotion)
			if got != tt.want {
				t.Errorf("Emotionalize(%q, %q) = %q, want %q", tt.text, tt.emotion, got, tt.want)
			}
		})
	}
}

func TestEmotionalizeNervous(t *testing.T) {
	got := Emotionalize("I think I like him a lot", "nervous")
	if !strings.HasPrefix(got, "Um... ") {
		t.Errorf("nervous text missing prefix: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("nervous text missing trailing pause: %q", got)
	}
	if !strings.Contains(got, "...um...") {
		t.Errorf("nervous text missing mid-sentence filler: %q", got)
	}
}
