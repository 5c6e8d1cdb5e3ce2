package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/story-console/pkg/state"
)

const (
	Title         = "Story"
	FilledGlyph   = "■"
	EmptyGlyph    = "□"
	BarWidth      = (state.MaxHealth - state.MinHealth) / 2
	NoOptionsText = "No options available."
	KeyHelp       = "g: continue  1-9: choose  c: copy  q: quit"
)

// Frame is everything the console needs to draw one screen.
type Frame struct {
	Title     string
	Story     string
	HealthBar HealthBar
	Options   []OptionLine
	NoOptions bool // a result arrived without options
	GameOver  bool
	Awaiting  bool
	Help      string
}

// HealthBar holds glyph counts for a health value clamped into [0, 100].
type HealthBar struct {
	Health int
	Filled int
	Empty  int
}

// String renders the bar as plain glyphs.
func (h HealthBar) String() string {
	return strings.Repeat(FilledGlyph, h.Filled) + strings.Repeat(EmptyGlyph, h.Empty)
}

// OptionLine is one numbered option with its display color.
type OptionLine struct {
	Number int
	Text   string
	Color  lipgloss.Color
}

// Label is the numbered option text without styling.
func (o OptionLine) Label() string {
	return fmt.Sprintf("%d: %s", o.Number, o.Text)
}

// NewHealthBar computes glyph counts. Health outside [0, 100] is clamped first
// so that neither count can go negative.
func NewHealthBar(health int) HealthBar {
	h := state.ClampHealth(health)
	filled := h / 2
	return HealthBar{
		Health: h,
		Filled: filled,
		Empty:  BarWidth - filled,
	}
}

// OptionColor is the green shade for option i (0-based) of n: later options are brighter.
func OptionColor(i, n int) lipgloss.Color {
	if n <= 0 {
		return lipgloss.Color("#00ff00")
	}
	step := 255 / (n + 1)
	green := step * (i + 2)
	if green > 255 {
		green = 255
	}
	return lipgloss.Color(fmt.Sprintf("#00%02x00", green))
}

// Produce derives a Frame from a narrative snapshot. It has no side effects.
func Produce(snap state.Snapshot, awaiting bool) Frame {
	options := make([]OptionLine, len(snap.Options))
	for i, opt := range snap.Options {
		options[i] = OptionLine{
			Number: i + 1,
			Text:   opt,
			Color:  OptionColor(i, len(snap.Options)),
		}
	}

	return Frame{
		Title:     Title,
		Story:     snap.StoryText(),
		HealthBar: NewHealthBar(snap.Health),
		Options:   options,
		NoOptions: !awaiting && !snap.GameOver && len(snap.Story) > 0 && len(snap.Options) == 0,
		GameOver:  snap.GameOver,
		Awaiting:  awaiting,
		Help:      KeyHelp,
	}
}
