package state

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jwebster45206/story-console/pkg/generation"
)

const (
	StartingHealth = 100
	MinHealth      = 0
	MaxHealth      = 100
)

// Lines the store writes into the story log on its own.
const (
	InvalidSelectionMessage = "Invalid option selected."
	GenerationErrorMarker   = "[ERROR: Failed to generate response]"
	DeathMessage            = "Your health has run out. The story ends here."
	GameOverMessage         = "The story has ended. Press q to quit."
)

var (
	ErrInvalidSelection = errors.New("invalid option selected")
	ErrGameOver         = errors.New("game over")
)

// NarrativeState is the single shared record of story log, health and options.
// One mutex guards all three so readers never see a story segment paired
// with options from a different result.
type NarrativeState struct {
	mu       sync.Mutex
	mode     generation.HealthMode
	story    []string
	health   int
	options  []string
	gameOver bool
}

// Snapshot is an immutable copy of the narrative state at one instant.
type Snapshot struct {
	Story    []string
	Health   int
	Options  []string
	GameOver bool
}

// StoryText joins the story log into display text.
func (s Snapshot) StoryText() string {
	return strings.Join(s.Story, "\n")
}

// NewNarrativeState returns the start-of-game state for the given schema mode.
func NewNarrativeState(mode generation.HealthMode) *NarrativeState {
	if mode != generation.HealthModeDelta {
		mode = generation.HealthModeAbsolute
	}
	return &NarrativeState{
		mode:    mode,
		story:   make([]string, 0),
		health:  StartingHealth,
		options: make([]string, 0),
	}
}

// Mode returns the schema mode results are interpreted in.
func (ns *NarrativeState) Mode() generation.HealthMode {
	return ns.mode
}

// Snapshot copies the current state under the lock.
func (ns *NarrativeState) Snapshot() Snapshot {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	story := make([]string, len(ns.story))
	copy(story, ns.story)
	options := make([]string, len(ns.options))
	copy(options, ns.options)

	return Snapshot{
		Story:    story,
		Health:   ns.health,
		Options:  options,
		GameOver: ns.gameOver,
	}
}

// GameOver reports whether health has reached zero.
func (ns *NarrativeState) GameOver() bool {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return ns.gameOver
}

// ApplySelection validates a 1-based option index. A valid choice is echoed into
// the story log and the options are cleared; the chosen text is returned.
// An out-of-range index appends InvalidSelectionMessage and changes nothing else.
func (ns *NarrativeState) ApplySelection(index int) (string, error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if ns.gameOver {
		ns.story = append(ns.story, GameOverMessage)
		return "", ErrGameOver
	}

	if index < 1 || index > len(ns.options) {
		ns.story = append(ns.story, InvalidSelectionMessage)
		return "", fmt.Errorf("%w: %d of %d", ErrInvalidSelection, index, len(ns.options))
	}

	choice := ns.options[index-1]
	ns.story = append(ns.story, fmt.Sprintf("You chose option %d: %s", index, choice))
	ns.options = make([]string, 0)
	return choice, nil
}

// ApplyGenerationResult merges a finished generation as one state transition.
// A failure appends GenerationErrorMarker and leaves health and options alone.
func (ns *NarrativeState) ApplyGenerationResult(result generation.Result) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if !result.OK() {
		ns.story = append(ns.story, GenerationErrorMarker)
		return
	}

	if result.Story != "" {
		ns.story = append(ns.story, result.Story)
	}

	switch ns.mode {
	case generation.HealthModeDelta:
		// The delta is bounded first so the sum cannot overflow.
		delta := result.Health
		if delta > MaxHealth-MinHealth {
			delta = MaxHealth - MinHealth
		} else if delta < MinHealth-MaxHealth {
			delta = MinHealth - MaxHealth
		}
		ns.health = ClampHealth(ns.health + delta)
	default:
		ns.health = ClampHealth(result.Health)
	}

	options := make([]string, len(result.Options))
	copy(options, result.Options)
	ns.options = options

	if ns.health == MinHealth {
		ns.gameOver = true
		ns.options = make([]string, 0)
		ns.story = append(ns.story, DeathMessage)
	}
}

// AppendNotice writes a line into the story log without touching health or options.
func (ns *NarrativeState) AppendNotice(line string) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.story = append(ns.story, line)
}

// ClampHealth bounds h to [MinHealth, MaxHealth].
func ClampHealth(h int) int {
	if h < MinHealth {
		return MinHealth
	}
	if h > MaxHealth {
		return MaxHealth
	}
	return h
}
