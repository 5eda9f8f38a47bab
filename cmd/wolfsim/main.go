// wolfsim runs a village of scripted agents through day and night until one
// team wins. By default the days are stepped in a terminal UI; -headless
// prints the whole game to stdout instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"wolfsim/setup"
	"wolfsim/tui"
	"wolfsim/werewolf"
)

func main() {
	setupPath := flag.String("setup", "", "game setup YAML (defaults to the built-in table)")
	seed := flag.Int64("seed", 0, "RNG seed; overrides the setup file when non-zero")
	headless := flag.Bool("headless", false, "print the game to stdout instead of opening the UI")
	god := flag.Bool("god", false, "show roles and inner thoughts")
	initPath := flag.String("init", "", "write the default setup YAML to this path and exit")
	logDir := flag.String("logdir", ".wolfsim", "directory for the UI trace log")
	flag.Parse()

	// A missing .env is fine; GEMINI_* may already be in the environment.
	_ = godotenv.Load()

	if *initPath != "" {
		if err := os.WriteFile(*initPath, []byte(setup.DefaultYAML()), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing setup: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default setup to %s\n", *initPath)
		return
	}

	file := setup.Default()
	if *setupPath != "" {
		f, err := setup.Load(*setupPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading setup: %v\n", err)
			os.Exit(1)
		}
		file = f
	}
	if *seed != 0 {
		file.Seed = *seed
	}
	runSeed := file.EffectiveSeed()

	cfg, err := file.Build(runSeed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building game: %v\n", err)
		os.Exit(1)
	}
	narrator, note, err := file.NewNarrator(context.Background(), runSeed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building narrator: %v\n", err)
		os.Exit(1)
	}
	cfg.Narrator = narrator

	if *headless {
		cfg.Logger = log.New(os.Stderr, "", log.LstdFlags)
		if note != "" {
			log.Printf("[Main] %s", note)
		}
		if err := runHeadless(os.Stdout, cfg, file.MaxRounds, *god); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger, err := tui.NewFileLogger(*logDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	cfg.Logger = logger
	logger.Printf("[Main] seed=%d narrator=%s players=%d", runSeed, file.Narrator, len(cfg.Seats))
	if note != "" {
		logger.Printf("[Main] %s", note)
	}

	world, err := werewolf.NewWorld(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating world: %v\n", err)
		os.Exit(1)
	}
	title := "wolfsim"
	if *setupPath != "" {
		title = filepath.Base(*setupPath)
	}
	p := tea.NewProgram(
		tui.NewApp(world, title, tui.WithGodView(*god), tui.WithLogger(logger), tui.WithMaxRounds(file.MaxRounds)),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func runHeadless(out io.Writer, cfg werewolf.Config, maxRounds int, god bool) error {
	world, err := werewolf.NewWorld(cfg)
	if err != nil {
		return err
	}
	for _, a := range world.Agents() {
		if god {
			fmt.Fprintf(out, "%s %s (%s, %s)\n", a.Role.Icon(), a.Name, a.Role.Title(), a.Personality)
		} else {
			fmt.Fprintf(out, "%s %s\n", a.Personality.Emoji(), a.Name)
		}
	}
	fmt.Fprintln(out)

	runErr := world.RunToEnd(maxRounds)
	for _, rec := range world.Log() {
		if !god {
			rec = rec.Public()
		}
		printRecord(out, rec, god)
	}
	if werewolf.IsInvalidState(runErr) {
		return runErr
	}
	if !world.IsTerminal() {
		fmt.Fprintf(out, "No winner after %d days.\n", world.Round())
	}
	return nil
}

func printRecord(out io.Writer, rec werewolf.RoundRecord, god bool) {
	fmt.Fprintf(out, "== Day %d ==\n", rec.Round)
	for _, e := range rec.Events {
		if e.Kind != werewolf.EventChat {
			fmt.Fprintln(out, e.Text)
			continue
		}
		fmt.Fprintf(out, "  %s: %s\n", e.Actor, e.Text)
		if god && e.InnerThought != "" {
			fmt.Fprintf(out, "    (%s)\n", e.InnerThought)
		}
	}
	fmt.Fprintln(out)
}
