package orchestrator

import "strings"

// deriveSituation maps a question onto a social-story situation by keyword.
// First match wins.
func deriveSituation(question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "doctor"):
		return "going to the doctor"
	case strings.Contains(q, "school"):
		return "going to school"
	case strings.Contains(q, "new") && strings.Contains(q, "people"):
		return "meeting new people"
	case strings.Contains(q, "loud") || strings.Contains(q, "noise"):
		return "dealing with loud noises"
	default:
		return "learning new things"
	}
}

// deriveImagePrompt maps a question onto an illustration prompt by keyword.
// First match wins.
func deriveImagePrompt(question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "sensory"):
		return "child with autism using sensory toys, educational setting"
	case strings.Contains(q, "communication") || strings.Contains(q, "talk"):
		return "child using communication cards, friendly setting"
	case strings.Contains(q, "diagnosis") || strings.Contains(q, "doctor"):
		return "doctor meeting with child and parent, medical office"
	case strings.Contains(q, "school") || strings.Contains(q, "classroom"):
		return "child in inclusive classroom, learning environment"
	default:
		return "diverse children with autism in educational setting"
	}
}
