package pretty

import "strings"

const (
	DecisionRemove = "remove"
	DecisionKeep   = "keep"
	DecisionExempt = "exempt"
)

// DecisionColor colors a pruning decision: removals red, exempted roots
// yellow, kept packages green.
func DecisionColor(decision string) string {
	if Colorless || Disabled {
		return ""
	}
	switch strings.ToLower(decision) {
	case DecisionRemove:
		return Red
	case DecisionExempt:
		return Yellow
	case DecisionKeep:
		return Green
	default:
		return ""
	}
}

// Decision renders a decision label in its color.
func Decision(decision string) string {
	color := DecisionColor(decision)
	if len(color) == 0 {
		return decision
	}
	return color + decision + Reset
}

// Bright makes text bold when colors are on.
func Bright(text string) string {
	if len(Bold) == 0 {
		return text
	}
	return csif("1m") + text + Reset
}
