package invitation

import (
	"strings"
	"unicode"
)

type Tier string

const (
	TierHigh    Tier = "high"
	TierMedium  Tier = "medium"
	TierDefault Tier = "default"
)

// PriorityStyle is the visual treatment of a priority label.
type PriorityStyle struct {
	Tier       Tier
	Accent     string
	Background string
	// Label is for display only. Unknown labels keep their own text while
	// falling into the default colours.
	Label string
}

// Classify maps a free-text priority label to its style. It never fails.
func Classify(label string) PriorityStyle {
	trimmed := strings.TrimSpace(label)
	display := titleCase(trimmed)
	if display == "" {
		display = "Medium"
	}

	switch strings.ToLower(trimmed) {
	case "high":
		return PriorityStyle{Tier: TierHigh, Accent: "#ff6b6b", Background: "#fff5f5", Label: display}
	case "medium":
		return PriorityStyle{Tier: TierMedium, Accent: "#4ecdc4", Background: "#f0fffd", Label: display}
	default:
		return PriorityStyle{Tier: TierDefault, Accent: "#45b7d1", Background: "#f0f8ff", Label: display}
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
