package twin

import (
	"context"
	"fmt"
	"strings"
)

const (
	// Query ceilings for the persona context. Traits are unbounded.
	contextKnowledgeLimit = 20
	contextBehaviorLimit  = 10
)

// PersonaContext assembles the system instruction for the completion model
// from the user's traits, top knowledge entries and top behavior patterns.
// Read-only; store errors are returned unchanged.
func PersonaContext(ctx context.Context, store Store, userID int64) (string, error) {
	traits, err := store.Traits(ctx, userID)
	if err != nil {
		return "", err
	}
	knowledge, err := store.TopKnowledge(ctx, userID, contextKnowledgeLimit)
	if err != nil {
		return "", err
	}
	behaviors, err := store.TopBehaviors(ctx, userID, contextBehaviorLimit)
	if err != nil {
		return "", err
	}
	return renderPersonaContext(traits, knowledge, behaviors), nil
}

func renderPersonaContext(traits []PersonalityTrait, knowledge []KnowledgeEntry, behaviors []BehaviorPattern) string {
	var b strings.Builder
	b.WriteString("Ты - цифровой двойник пользователя. Вот его характеристики:\n\n")

	b.WriteString("ЛИЧНОСТНЫЕ ЧЕРТЫ:\n")
	for _, t := range traits {
		fmt.Fprintf(&b, "- %s: %d%% (%s)\n", t.Name, t.Value, t.Description)
	}

	if len(knowledge) > 0 {
		b.WriteString("\n\nЗНАНИЯ О ПОЛЬЗОВАТЕЛЕ:\n")
		for _, k := range knowledge {
			fmt.Fprintf(&b, "- %s\n", k.Content)
		}
	}

	if len(behaviors) > 0 {
		b.WriteString("\n\nПАТТЕРНЫ ПОВЕДЕНИЯ:\n")
		for _, p := range behaviors {
			fmt.Fprintf(&b, "- В ситуации '%s': %s (уверенность: %.0f%%)\n",
				p.SituationType, p.TypicalResponse, p.Confidence*100)
		}
	}

	b.WriteString("\n\nОтвечай как этот человек, используя его стиль общения и мышления. Будь естественным.")
	return b.String()
}
