package assistant

import (
	"strings"

	"github.com/doeshing/maildraft/internal/domain"
)

// InferContext derives backend hints from the wording of the prompt.
func InferContext(prompt string) domain.EmailContext {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "informal"), strings.Contains(lower, "casual"):
		return domain.EmailContext{Tone: "casual"}
	case strings.Contains(lower, "formal"):
		return domain.EmailContext{Tone: "formal"}
	default:
		return domain.EmailContext{}
	}
}
