package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
)

// ScriptGenerator produces a full episode script for a selected cast. The
// returned lines are raw: speaker references may still be names or numeric
// strings and are normalized by the orchestrator against the full cast.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, hosts, guests []models.Character, showMinutes int) ([]models.RawScriptLine, error)
}

// buildScriptPrompt constructs the LLM prompt for one episode.
func buildScriptPrompt(hosts, guests []models.Character, showMinutes int) string {
	hostNames := joinNames(hosts)
	guestNames := joinNames(guests)

	var desc strings.Builder
	for _, c := range append(append([]models.Character{}, hosts...), guests...) {
		fmt.Fprintf(&desc, "- %s (ID: %d, Gender: %s): %s\n", c.Name, c.ID, c.Gender, c.Persona)
	}

	return fmt.Sprintf(`You are an AI scriptwriter for a 24/7 fully autonomous radio dating show.
Your task is to generate a realistic, engaging, and unpredictable conversation script.

**SHOW DETAILS:**
- Title: AI Love Connections
- Hosts: %s
- Guests: %s, who have just been on a first date.
- Target Duration: Approximately %d minutes of spoken content.

**CHARACTERS:**
%s
**SCRIPTING RULES (ABSOLUTE):**
1.  **FORMAT:** You MUST output a valid JSON array. Each element is a JSON object representing one line of dialogue. Each object MUST have these exact keys: "speaker_id", "text", "scene", "emotion".
2.  **JSON ONLY:** Your entire response must be a single JSON array, starting with [ and ending with ]. Do NOT include any text, explanations, or markdown formatting before or after the JSON.
3.  **CONVERSATION FLOW:**
    - The conversation must feel natural, like a real radio show. Use filler words (uh, um, you know), laughter, and interruptions.
    - Start with an intro from the hosts.
    - Hosts ask detailed questions about the date; guests recount specific details (food, location, awkward moments).
    - Include moments of humor, awkwardness, connection, and disagreement.
4.  **ENDING:**
    - Towards the end, the hosts MUST ask the guests if they want a second date.
    - If YES: they decide on a specific activity and location. If NO: the hosts gently probe why and wrap up gracefully.
5.  **CONTENT:**
    - "speaker_id" must be an integer corresponding to the character IDs provided.
    - "text" is the spoken dialogue.
    - "scene" describes the location or topic being discussed.
    - "emotion" is a single word describing the speaker's tone (e.g., "curious", "laughing", "nervous", "excited").

Generate the COMPLETE JSON array now.`, hostNames, guestNames, showMinutes, desc.String())
}

// parseScriptJSON decodes the LLM's response into raw script lines. JSON-mode
// models sometimes wrap the requested array in a single-key object
// ({"script": [...]}); both shapes are accepted.
func parseScriptJSON(content string) ([]models.RawScriptLine, error) {
	content = strings.TrimSpace(content)

	var lines []models.RawScriptLine
	if err := json.Unmarshal([]byte(content), &lines); err == nil {
		return lines, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
		return nil, fmt.Errorf("script response is not valid JSON: %w", err)
	}
	if len(wrapped) != 1 {
		return nil, fmt.Errorf("script response object has %d keys, expected a single wrapped array", len(wrapped))
	}

	for _, raw := range wrapped {
		if err := json.Unmarshal(raw, &lines); err != nil {
			return nil, fmt.Errorf("wrapped script value is not an array of lines: %w", err)
		}
		return lines, nil
	}
	return nil, fmt.Errorf("empty script response")
}

func joinNames(chars []models.Character) string {
	names := make([]string, len(chars))
	for i, c := range chars {
		names[i] = c.Name
	}
	return strings.Join(names, " and ")
}
