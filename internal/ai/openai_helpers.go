package ai

import (
	"encoding/json"
	"strings"
)

func decodeInto(obj map[string]any, out any) {
	if obj == nil {
		return
	}
	b, _ := json.Marshal(obj)
	_ = json.Unmarshal(b, out)
}

func userContextPrompt(uc UserContext) string {
	if uc.IsZero() {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nLearner context:")
	if uc.Goal != "" {
		b.WriteString("\n- goal: " + uc.Goal)
	}
	if uc.ExperienceLevel != "" {
		b.WriteString("\n- experience level: " + uc.ExperienceLevel)
	}
	if uc.TimeBudget != "" {
		b.WriteString("\n- time budget: " + uc.TimeBudget)
	}
	if uc.LearningStyle != "" {
		b.WriteString("\n- preferred learning style: " + uc.LearningStyle)
	}
	return b.String()
}

func schemaStringArray() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}
