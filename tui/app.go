// Package tui is the terminal observer for a running simulation. It follows
// the bubbletea model: key messages start rounds as commands or reconfigure
// the view, and View renders the whole screen from the last captured state.
package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wolfsim/werewolf"
)

const (
	rosterWidth  = 28
	chromeHeight = 4
	// a: stops here when no round limit is configured
	runAllCap = 200
)

// AppOption customizes App construction.
type AppOption func(*App)

// WithGodView starts the observer with roles and inner thoughts visible.
func WithGodView(on bool) AppOption {
	return func(a *App) { a.god = on }
}

// WithLogger routes observer events to l.
func WithLogger(l werewolf.Logger) AppOption {
	return func(a *App) { a.logger = l }
}

// WithMaxRounds stops the run key after n rounds (0 means no limit).
func WithMaxRounds(n int) AppOption {
	return func(a *App) { a.maxRounds = n }
}

// App is the observer model. A round runs in a tea.Cmd, so the model keeps
// its own copy of what it renders and only touches the world while idle.
type App struct {
	world     *werewolf.World
	title     string
	god       bool
	maxRounds int
	logger    werewolf.Logger

	viewport viewport.Model
	ready    bool
	width    int
	height   int

	round    int
	alive    int
	terminal bool
	records  []werewolf.RoundRecord
	agents   []werewolf.AgentView

	busy    bool
	running bool
	runLeft int

	statusMsg string
	err       error
}

// roundDoneMsg carries the result of one AdvanceRound back into Update.
type roundDoneMsg struct {
	rec werewolf.RoundRecord
	err error
}

func NewApp(world *werewolf.World, title string, opts ...AppOption) *App {
	a := &App{
		world:     world,
		title:     title,
		statusMsg: "n: next day · a: run to the end · g: god view · q: quit",
	}
	for _, opt := range opts {
		opt(a)
	}
	a.capture()
	return a
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		w := max(20, msg.Width-rosterWidth-4)
		h := max(5, msg.Height-chromeHeight)
		if !a.ready {
			a.viewport = viewport.New(w, h)
			a.ready = true
		} else {
			a.viewport.Width, a.viewport.Height = w, h
		}
		a.refresh(false)
		return a, nil

	case roundDoneMsg:
		return a, a.finishRound(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "n":
			if a.busy {
				a.statusMsg = "Still simulating..."
				return a, nil
			}
			return a, a.startRound()
		case "a":
			if a.busy {
				a.statusMsg = "Still simulating..."
				return a, nil
			}
			a.running, a.runLeft = true, runAllCap
			return a, a.startRound()
		case "g":
			a.god = !a.god
			if a.god {
				a.statusMsg = "God view on: roles and inner thoughts visible."
			} else {
				a.statusMsg = "God view off."
			}
			a.refresh(false)
			return a, nil
		}
	}

	if !a.ready {
		return a, nil
	}
	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

// startRound returns the command that plays the next round, or nil when the
// game or the round limit is already reached.
func (a *App) startRound() tea.Cmd {
	if a.terminal {
		a.running = false
		a.statusMsg = fmt.Sprintf("The game is over: %s won.", a.world.WinningTeam())
		return nil
	}
	if a.maxRounds > 0 && a.round >= a.maxRounds {
		a.running = false
		a.statusMsg = fmt.Sprintf("Round limit %d reached.", a.maxRounds)
		return nil
	}
	a.busy = true
	a.statusMsg = fmt.Sprintf("Simulating day %d...", a.round+1)
	world := a.world
	return func() tea.Msg {
		rec, err := world.AdvanceRound()
		return roundDoneMsg{rec: rec, err: err}
	}
}

func (a *App) finishRound(msg roundDoneMsg) tea.Cmd {
	a.busy = false
	a.capture()
	switch {
	case errors.Is(msg.err, werewolf.ErrGameOver):
		a.running = false
		a.statusMsg = fmt.Sprintf("The game is over: %s won.", a.world.WinningTeam())
		return nil
	case msg.err != nil:
		a.running = false
		a.err = msg.err
		a.statusMsg = "Round aborted: " + msg.err.Error()
		a.logf("[TUI] round aborted: %v", msg.err)
		return nil
	}
	a.err = nil
	a.logf("[TUI] day %d simulated, %d events", msg.rec.Round, len(msg.rec.Events))
	if a.terminal {
		a.statusMsg = fmt.Sprintf("Day %d: %s win. Press q to quit.", msg.rec.Round, a.world.WinningTeam())
	} else {
		a.statusMsg = fmt.Sprintf("Day %d simulated. %d alive.", msg.rec.Round, a.alive)
	}
	a.refresh(true)

	if !a.running {
		return nil
	}
	a.runLeft--
	if a.terminal || a.runLeft <= 0 {
		a.running = false
		return nil
	}
	return a.startRound()
}

// capture copies what View needs out of the world. Only call it while no
// round is in flight.
func (a *App) capture() {
	a.round = a.world.Round()
	a.alive = len(a.world.LivingAgents())
	a.terminal = a.world.IsTerminal()
	a.records = a.world.Log()
	a.agents = a.world.Agents()
}

func (a *App) refresh(toBottom bool) {
	if !a.ready {
		return
	}
	a.viewport.SetContent(renderLog(a.records, a.agents, a.god))
	if toBottom {
		a.viewport.GotoBottom()
	}
}

func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}
	header := titleStyle.Render(fmt.Sprintf("🐺 %s · day %d · %d alive", a.title, a.round, a.alive))
	if a.god {
		header += phaseStyle.Render("  [god view]")
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(a.viewport.View()),
		renderRoster(a.agents, a.god),
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footerStyle.Render(a.statusMsg))
}

// Busy reports whether a round is being simulated.
func (a *App) Busy() bool { return a.busy }

// GodView reports whether hidden information is shown.
func (a *App) GodView() bool { return a.god }

// Status is the footer line.
func (a *App) Status() string { return a.statusMsg }

func (a *App) logf(format string, args ...any) {
	if a.logger != nil {
		a.logger.Printf(format, args...)
	}
}
