package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/story-console/internal/config"
	"github.com/jwebster45206/story-console/internal/worker"
	"github.com/jwebster45206/story-console/pkg/generation"
	"github.com/jwebster45206/story-console/pkg/prompts"
	"github.com/jwebster45206/story-console/pkg/render"
	"github.com/jwebster45206/story-console/pkg/state"
)

type phase int

const (
	phaseIdle phase = iota
	phaseAwaitingGeneration
)

const (
	copiedStatus     = "Story copied to clipboard."
	copyFailedStatus = "Could not copy story"
	emptyCopyStatus  = "Nothing to copy yet."
)

// ConsoleUI is the BubbleTea model that runs the game.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ctx        context.Context
	config     *config.Config
	store      *state.NarrativeState
	dispatcher *worker.Dispatcher
	log        *slog.Logger

	phase   phase
	pending *worker.Handle

	viewport viewport.Model
	spinner  spinner.Model
	ready    bool
	width    int
	height   int

	// footer status line, e.g. clipboard results
	status string

	copyToClipboard func(string) error
}

type generationDoneMsg struct {
	result generation.Result
}

type clipboardMsg struct {
	err error
}

func NewConsoleUI(ctx context.Context, cfg *config.Config, store *state.NarrativeState, dispatcher *worker.Dispatcher, log *slog.Logger) ConsoleUI {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(loadingStyle),
	)

	vp := viewport.New(50, 20)
	vp.MouseWheelEnabled = true

	return ConsoleUI{
		ctx:             ctx,
		config:          cfg,
		store:           store,
		dispatcher:      dispatcher,
		log:             log,
		phase:           phaseIdle,
		viewport:        vp,
		spinner:         sp,
		copyToClipboard: clipboard.WriteAll,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return nil
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case generationDoneMsg:
		m.store.ApplyGenerationResult(msg.result)
		m.phase = phaseIdle
		m.pending = nil
		m.log.Debug("Generation applied", "request_id", msg.result.RequestID, "ok", msg.result.OK())
		if m.store.GameOver() {
			m.log.Info("Character died, game over", "request_id", msg.result.RequestID)
		}
		m.refresh()
		return m, nil

	case clipboardMsg:
		switch {
		case errors.Is(msg.err, errNothingToCopy):
			m.status = emptyCopyStatus
		case msg.err != nil:
			m.log.Warn("Clipboard copy failed", "error", msg.err)
			m.status = copyFailedStatus + ": " + msg.err.Error()
		default:
			m.status = copiedStatus
		}
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseAwaitingGeneration {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	command := state.ParseKey(msg.String())

	if command.Force {
		m.log.Info("Quit requested", "forced", true)
		return m, tea.Quit
	}

	// A generation is outstanding: keys are dropped until its result is applied.
	if m.phase == phaseAwaitingGeneration {
		return m, nil
	}

	m.status = ""

	switch command.Type {
	case state.CmdQuit:
		m.log.Info("Quit requested")
		return m, tea.Quit

	case state.CmdGenerate:
		if m.store.GameOver() {
			m.store.AppendNotice(state.GameOverMessage)
			m.refresh()
			return m, nil
		}
		prompt := m.newPrompt().Build()
		return m.dispatch(prompt)

	case state.CmdSelect:
		choice, err := m.store.ApplySelection(command.Option)
		if err != nil {
			m.log.Warn("Selection rejected", "option", command.Option, "error", err)
			m.refresh()
			return m, nil
		}
		prompt := m.newPrompt().WithSelection(choice).Build()
		return m.dispatch(prompt)

	case state.CmdCopy:
		return m, m.copyStory()
	}

	// Anything else scrolls the story.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ConsoleUI) newPrompt() *prompts.Builder {
	return prompts.New().
		WithSnapshot(m.store.Snapshot()).
		WithTheme(m.config.Theme).
		WithMode(m.store.Mode()).
		WithHistoryLimit(m.config.HistoryLimit)
}

// dispatch hands the prompt to the background worker and moves to awaiting.
func (m ConsoleUI) dispatch(prompt string) (tea.Model, tea.Cmd) {
	req := generation.NewRequest(m.store.Mode(), prompt)
	handle, err := m.dispatcher.Dispatch(m.ctx, req)
	if err != nil {
		m.log.Warn("Generation not dispatched", "error", err)
		m.refresh()
		return m, nil
	}

	m.phase = phaseAwaitingGeneration
	m.pending = handle
	m.refresh()

	return m, tea.Batch(awaitGeneration(handle), m.spinner.Tick)
}

// awaitGeneration blocks in the command goroutine, never in Update.
func awaitGeneration(h *worker.Handle) tea.Cmd {
	return func() tea.Msg {
		return generationDoneMsg{result: h.Await()}
	}
}

var errNothingToCopy = errors.New("story is empty")

func (m ConsoleUI) copyStory() tea.Cmd {
	text := m.store.Snapshot().StoryText()
	write := m.copyToClipboard
	return func() tea.Msg {
		if text == "" {
			return clipboardMsg{err: errNothingToCopy}
		}
		return clipboardMsg{err: write(text)}
	}
}

func (m *ConsoleUI) resize() {
	w, h := bodySize(m.width, m.height)
	m.viewport.Width = w
	m.viewport.Height = h
}

// refresh redraws the story body from the current state and keeps the newest
// lines in view.
func (m *ConsoleUI) refresh() {
	frame := render.Produce(m.store.Snapshot(), m.phase == phaseAwaitingGeneration)
	m.viewport.SetContent(renderBody(frame, m.viewport.Width))
	m.viewport.GotoBottom()
}
