package twin

import "strings"

const (
	// SituationGeneral is assigned when no keyword matches.
	SituationGeneral = "general"

	// initialConfidence is the fixed score for a freshly observed pattern.
	initialConfidence = 0.3

	// patternTextLimit bounds stored context and response text, in runes.
	patternTextLimit = 500
)

// situationKeyword maps a keyword stem to a situation category. Order
// matters: the first stem found in the message wins. Stems rather than
// full words so inflected forms ("работе", "проблемы") still match.
type situationKeyword struct {
	stem      string
	situation string
}

var situationKeywords = []situationKeyword{
	{"работ", "professional"},
	{"отдых", "leisure"},
	{"проблем", "problem_solving"},
	{"решени", "decision_making"},
	{"чувству", "emotional"},
	{"дума", "analytical"},
}

// ClassifySituation maps free text to exactly one situation category via
// case-insensitive substring matching. This is a coarse heuristic, not an
// NLP classifier; overlaps are resolved purely by list order.
func ClassifySituation(message string) string {
	lowered := strings.ToLower(message)
	for _, kw := range situationKeywords {
		if strings.Contains(lowered, kw.stem) {
			return kw.situation
		}
	}
	return SituationGeneral
}

// ObservedPattern builds the low-confidence behavior pattern recorded for
// one user message.
func ObservedPattern(message string) BehaviorPattern {
	return BehaviorPattern{
		SituationType:   ClassifySituation(message),
		Context:         truncateRunes(message, patternTextLimit),
		TypicalResponse: truncateRunes(message, patternTextLimit),
		Confidence:      initialConfidence,
		TimesObserved:   1,
	}
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
