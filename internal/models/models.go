package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Enums

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type EpisodeStatus string

const (
	EpisodeStatusPreparing  EpisodeStatus = "preparing"
	EpisodeStatusScripting  EpisodeStatus = "scripting"
	EpisodeStatusVoicing    EpisodeStatus = "voicing"
	EpisodeStatusSubtitling EpisodeStatus = "subtitling"
	EpisodeStatusRendering  EpisodeStatus = "rendering"
	EpisodeStatusSplitting  EpisodeStatus = "splitting"
	EpisodeStatusPublishing EpisodeStatus = "publishing"
	EpisodeStatusCompleted  EpisodeStatus = "completed"
	EpisodeStatusFailed     EpisodeStatus = "failed"
)

// Character is one show participant, host or guest. Identity is the integer ID;
// hosts and guests are disjoint sets joined only by the script's speaker ids.
type Character struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Gender  Gender `json:"gender"`
	Voice   string `json:"voice"`
	Persona string `json:"persona"`
}

// ScriptLine is one attributed utterance. SpeakerID must resolve to a known
// character; Scene and Emotion are advisory tags from the script generator.
type ScriptLine struct {
	SpeakerID int    `json:"speaker_id"`
	Text      string `json:"text"`
	Scene     string `json:"scene"`
	Emotion   string `json:"emotion"`
}

// RawScriptLine is a script line as it arrives from the LLM, before speaker
// normalization. The speaker field is polymorphic there: sometimes an integer,
// sometimes a numeric string, sometimes a character name.
type RawScriptLine struct {
	SpeakerID any    `json:"speaker_id"`
	Text      string `json:"text"`
	Scene     string `json:"scene"`
	Emotion   string `json:"emotion"`
}

// LineAudio records one successfully synthesized script line. Failed lines
// produce no record.
type LineAudio struct {
	Path      string
	Duration  float64 // seconds, measured from the decoded clip
	SpeakerID int
	Text      string // original text (pre emotion markup), kept for captions
}

// VideoPart is one fixed-duration segment of the final video, the unit of
// publication. Index is 1-based; the final part may be shorter than nominal.
type VideoPart struct {
	Index       int
	Path        string
	StartOffset float64 // seconds into the master video
	Duration    float64 // seconds, nominal; the last part may run shorter
}

// WordSpan is a single transcribed word with its timing in seconds.
type WordSpan struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// SegmentSpan is a coarser transcription unit, used when word-level
// timestamps are unavailable.
type SegmentSpan struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Episode is the persisted record of one show cycle.
type Episode struct {
	ID             uuid.UUID     `json:"id"`
	EpisodeID      string        `json:"episode_id"`
	Status         EpisodeStatus `json:"status"`
	ErrorMessage   *string       `json:"error_message,omitempty"`
	PartsTotal     int           `json:"parts_total"`
	PartsPublished int           `json:"parts_published"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     *time.Time    `json:"finished_at,omitempty"`
}

// NormalizeSpeaker maps any accepted speaker representation to a canonical
// integer character id: an integer, a numeric string, or a character name
// (case-insensitive). Anything else is rejected.
func NormalizeSpeaker(speaker any, cast []Character) (int, error) {
	byID := make(map[int]bool, len(cast))
	for _, c := range cast {
		byID[c.ID] = true
	}

	switch v := speaker.(type) {
	case int:
		if byID[v] {
			return v, nil
		}
		return 0, fmt.Errorf("unknown speaker id %d", v)
	case float64: // JSON numbers decode to float64
		id := int(v)
		if float64(id) != v {
			return 0, fmt.Errorf("non-integer speaker id %v", v)
		}
		if byID[id] {
			return id, nil
		}
		return 0, fmt.Errorf("unknown speaker id %d", id)
	case string:
		if id, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			if byID[id] {
				return id, nil
			}
			return 0, fmt.Errorf("unknown speaker id %d", id)
		}
		for _, c := range cast {
			if strings.EqualFold(strings.TrimSpace(v), c.Name) {
				return c.ID, nil
			}
		}
		return 0, fmt.Errorf("unknown speaker name %q", v)
	default:
		return 0, fmt.Errorf("unsupported speaker id type %T", speaker)
	}
}

// NormalizeScript converts raw LLM script lines into validated ScriptLines.
// Every speaker reference is resolved through NormalizeSpeaker; a line that
// cannot be resolved, or that has no text, rejects the whole script; the
// cycle aborts rather than voicing a broken conversation.
func NormalizeScript(raw []RawScriptLine, cast []Character) ([]ScriptLine, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("script is empty")
	}

	script := make([]ScriptLine, 0, len(raw))
	for i, line := range raw {
		if strings.TrimSpace(line.Text) == "" {
			return nil, fmt.Errorf("script line %d has no text", i+1)
		}
		id, err := NormalizeSpeaker(line.SpeakerID, cast)
		if err != nil {
			return nil, fmt.Errorf("script line %d: %w", i+1, err)
		}
		script = append(script, ScriptLine{
			SpeakerID: id,
			Text:      line.Text,
			Scene:     line.Scene,
			Emotion:   line.Emotion,
		})
	}
	return script, nil
}

// ValidateCharacter checks the required fields on a character loaded from
// external data. Voice keys are checked against the voice table separately.
func ValidateCharacter(c Character) error {
	if c.ID == 0 {
		return fmt.Errorf("character %q has no id", c.Name)
	}
	if c.Name == "" {
		return fmt.Errorf("character %d has no name", c.ID)
	}
	if c.Gender != GenderMale && c.Gender != GenderFemale {
		return fmt.Errorf("character %q (id %d) has invalid gender %q", c.Name, c.ID, c.Gender)
	}
	if c.Voice == "" {
		return fmt.Errorf("character %q (id %d) has no voice", c.Name, c.ID)
	}
	return nil
}
