package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"wolfsim/setup"
	"wolfsim/werewolf"
)

func newTestApp(t *testing.T, opts ...AppOption) *App {
	t.Helper()
	cfg, err := setup.Default().Build(7)
	if err != nil {
		t.Fatalf("Build err: %v", err)
	}
	w, err := werewolf.NewWorld(cfg)
	if err != nil {
		t.Fatalf("NewWorld err: %v", err)
	}
	app := NewApp(w, "test", opts...)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drive feeds msg to the app and keeps running the commands it returns,
// the way the bubbletea runtime would, until none is left.
func drive(app *App, msg tea.Msg) {
	for msg != nil {
		_, cmd := app.Update(msg)
		if cmd == nil {
			return
		}
		msg = cmd()
	}
}

func TestViewBeforeSizeIsLoading(t *testing.T) {
	cfg, err := setup.Default().Build(1)
	if err != nil {
		t.Fatalf("Build err: %v", err)
	}
	w, err := werewolf.NewWorld(cfg)
	if err != nil {
		t.Fatalf("NewWorld err: %v", err)
	}
	if got := NewApp(w, "x").View(); got != "Loading..." {
		t.Fatalf("View = %q", got)
	}
}

func TestNextDayAdvancesWorld(t *testing.T) {
	app := newTestApp(t)
	drive(app, key("n"))
	if app.world.Round() != 1 {
		t.Fatalf("round = %d, want 1", app.world.Round())
	}
	if !strings.Contains(app.View(), "day 1") {
		t.Fatalf("view missing day header")
	}
}

func TestNextDayRunsOutsideUpdate(t *testing.T) {
	app := newTestApp(t)
	_, cmd := app.Update(key("n"))
	if cmd == nil {
		t.Fatalf("n should return a command")
	}
	if app.world.Round() != 0 || !app.Busy() {
		t.Fatalf("round %d busy %v before the command ran", app.world.Round(), app.Busy())
	}
	if _, again := app.Update(key("n")); again != nil {
		t.Fatalf("a second n while busy started another round")
	}
	if !strings.Contains(app.View(), "day 0") {
		t.Fatalf("view should show the last captured day while busy")
	}

	msg := cmd()
	if _, ok := msg.(roundDoneMsg); !ok {
		t.Fatalf("command returned %T", msg)
	}
	drive(app, msg)
	if app.world.Round() != 1 || app.Busy() {
		t.Fatalf("round %d busy %v after the command", app.world.Round(), app.Busy())
	}
	if !strings.Contains(app.View(), "day 1") {
		t.Fatalf("view missing day header")
	}
}

func TestGodToggle(t *testing.T) {
	app := newTestApp(t)
	if app.GodView() {
		t.Fatalf("god view should start off")
	}
	app.Update(key("g"))
	if !app.GodView() {
		t.Fatalf("g should enable god view")
	}
	if !strings.Contains(app.View(), "[god view]") {
		t.Fatalf("header should mark god view")
	}
	app.Update(key("g"))
	if app.GodView() {
		t.Fatalf("second g should disable god view")
	}
}

func TestRunToEndStopsAtTerminal(t *testing.T) {
	app := newTestApp(t, WithMaxRounds(30))
	drive(app, key("a"))
	if !app.world.IsTerminal() && app.world.Round() < 30 {
		t.Fatalf("run stopped early at round %d", app.world.Round())
	}
	if app.Busy() {
		t.Fatalf("app still busy after the run")
	}
	before := app.world.Round()
	drive(app, key("n"))
	if app.world.Round() != before {
		t.Fatalf("advancing after the end changed the round")
	}
}

func TestQuitReturnsQuitCmd(t *testing.T) {
	app := newTestApp(t)
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("ctrl+c should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("ctrl+c should quit")
	}
}

func TestRenderLogHidesThoughtsOutsideGodView(t *testing.T) {
	recs := []werewolf.RoundRecord{{
		Round: 1,
		Events: []werewolf.Event{
			{Kind: werewolf.EventChat, Actor: "Taro", Text: "I vote for Jiro.", InnerThought: "secret plan"},
		},
	}}
	if strings.Contains(renderLog(recs, nil, false), "secret plan") {
		t.Fatalf("inner thought leaked in public view")
	}
	if !strings.Contains(renderLog(recs, nil, true), "secret plan") {
		t.Fatalf("inner thought missing in god view")
	}
}
