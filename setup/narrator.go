package setup

import (
	"context"
	"fmt"

	"wolfsim/narrate"
	"wolfsim/werewolf"
)

// NewNarrator builds the narrator the setup asks for. Rule narration is
// seeded from seed so a seeded run replays identically. A gemini setup
// without credentials degrades to rule narration and reports why in note.
func (f *File) NewNarrator(ctx context.Context, seed int64) (n werewolf.Narrator, note string, err error) {
	styles := narrate.DefaultStyles()
	if f.Styles != "" {
		if err := styles.LoadFromFile(f.Styles); err != nil {
			return nil, "", fmt.Errorf("setup: %w", err)
		}
	}
	rule := narrate.NewRuleNarrator(styles, seed)

	switch f.Narrator {
	case NarratorPlain:
		return nil, "", nil
	case NarratorGemini:
		g, err := narrate.GeminiFromEnv(ctx, rule)
		if err != nil {
			return rule, fmt.Sprintf("gemini unavailable (%v), using rule narration", err), nil
		}
		return g, "", nil
	default:
		return rule, "", nil
	}
}
