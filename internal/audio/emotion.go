package audio

import (
	"fmt"
	"strings"
)

// Emotionalize rewrites dialogue text so the synthesized delivery matches the
// script's emotion tag. TTS models react to punctuation and casing far more
// reliably than to style hints, so the transformation is purely textual.
// The original text is kept for subtitles; only the synthesis input changes.
func Emotionalize(text, emotion string) string {
	if emotion == "" {
		return text
	}

	e := strings.ToLower(emotion)

	// Anger: caps plus staccato periods.
	if containsAny(e, "angr", "yell", "shout", "furious", "mad") {
		return strings.ReplaceAll(strings.ToUpper(text), " ", ". ") + "!"
	}

	// Shock: interrobangs.
	if containsAny(e, "shock", "surpris", "disbelief", "no way", "what") {
		t := strings.ReplaceAll(text, "?", "?!")
		t = strings.ReplaceAll(t, "!", "?!")
		return t + "?!"
	}

	// Nervous: filler words and trailing pauses.
	if containsAny(e, "nervous", "awkward", "hesitant", "shy", "uncomfortable") {
		words := strings.Fields(text)
		if len(words) > 3 {
			mid := len(words) / 2
			words = append(words[:mid], append([]string{"...um..."}, words[mid:]...)...)
		}
		return "Um... " + strings.Join(words, " ") + "..."
	}

	// Excitement: exclamation plus laughter phonetics.
	if containsAny(e, "excit", "happy", "laugh", "funny", "lol") {
		return text + "! Ha! Ha!"
	}

	// Sarcasm: air quotes and a flat tag question.
	if containsAny(e, "sarcas", "sassy", "ironic") {
		return fmt.Sprintf("%q... really?", text)
	}

	return text
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
