package services

import "context"

// ---------------------------------------------------------------------------
// TTSService is the text-to-speech provider interface.
// The audio engine resolves a character to a provider voice ID and calls
// Synthesize once per script line.
// ---------------------------------------------------------------------------

// TTSService converts one line of dialogue into encoded audio bytes.
type TTSService interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}
