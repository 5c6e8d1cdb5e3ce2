package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/story-console/pkg/generation"
	"github.com/jwebster45206/story-console/pkg/state"
)

// Builder assembles the prompt text for one generation using a fluent interface.
// Build has no side effects and cannot fail.
type Builder struct {
	snapshot     state.Snapshot
	selection    string
	hasSelection bool
	theme        string
	mode         generation.HealthMode
	historyLimit int
}

// New creates a builder for a fresh game in absolute-health mode.
func New() *Builder {
	return &Builder{
		snapshot: state.Snapshot{Health: state.StartingHealth},
		theme:    DefaultTheme,
		mode:     generation.HealthModeAbsolute,
	}
}

// WithSnapshot sets the narrative state the prompt continues from.
func (b *Builder) WithSnapshot(s state.Snapshot) *Builder {
	b.snapshot = s
	return b
}

// WithSelection sets the text of the option the player just chose.
func (b *Builder) WithSelection(option string) *Builder {
	b.selection = option
	b.hasSelection = true
	return b
}

// WithTheme overrides the opening theme.
func (b *Builder) WithTheme(theme string) *Builder {
	if strings.TrimSpace(theme) != "" {
		b.theme = theme
	}
	return b
}

// WithMode sets which health field the output format asks for.
func (b *Builder) WithMode(mode generation.HealthMode) *Builder {
	b.mode = mode
	return b
}

// WithHistoryLimit keeps only the last n story entries; 0 keeps everything.
func (b *Builder) WithHistoryLimit(n int) *Builder {
	if n >= 0 {
		b.historyLimit = n
	}
	return b
}

// IsOpening reports whether Build will produce the opening prompt.
func (b *Builder) IsOpening() bool {
	return !b.hasSelection && len(b.history()) == 0
}

// Build returns the prompt text.
func (b *Builder) Build() string {
	format := AbsoluteFormat
	if b.mode == generation.HealthModeDelta {
		format = DeltaFormat
	}

	if b.IsOpening() {
		return fmt.Sprintf(OpeningPrompt, b.theme, format)
	}

	selection := ""
	if b.hasSelection {
		selection = fmt.Sprintf(SelectionSection, b.selection)
	}

	return fmt.Sprintf(ContinuationPrompt,
		state.ClampHealth(b.snapshot.Health),
		selection,
		format,
		strings.Join(b.history(), "\n"),
	)
}

// history is the story log minus the lines the game writes about itself.
func (b *Builder) history() []string {
	entries := make([]string, 0, len(b.snapshot.Story))
	for _, entry := range b.snapshot.Story {
		switch entry {
		case state.InvalidSelectionMessage, state.GenerationErrorMarker, state.GameOverMessage:
			continue
		}
		entries = append(entries, entry)
	}

	if b.historyLimit > 0 && len(entries) > b.historyLimit {
		entries = entries[len(entries)-b.historyLimit:]
	}
	return entries
}
