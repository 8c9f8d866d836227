package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pes18fan/amai/config"
	"github.com/pes18fan/amai/library"
	"github.com/pes18fan/amai/player"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "amai: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config.toml (defaults to the XDG config dir)")
	musicDir := flag.String("dir", "", "music folder to play from (overrides config)")
	flag.Parse()

	path := *configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if *musicDir != "" {
		cfg.MusicDir = *musicDir
	}

	logFile := cfg.LogFile
	if logFile == "" && len(os.Getenv("DEBUG")) > 0 {
		logFile = "debug.log"
	}
	if logFile != "" {
		f, err := tea.LogToFile(logFile, "debug")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	dir, err := cfg.ResolveMusicDir()
	if err != nil {
		return err
	}

	// a failed scan is shown in the UI, the folder may appear later
	list, scanErr := library.Scan(dir, cfg.Extensions)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes <-chan struct{}
	if cfg.Watch {
		changes, err = library.Watch(ctx, dir, library.DefaultDebounce)
		if err != nil {
			log.Println("not watching music folder:", err)
			changes = nil
		}
	}

	engine := player.NewBeepEngine()
	defer engine.Close()

	m := initialModel(cfg, engine, dir, list, changes)
	m.err = scanErr

	p := tea.NewProgram(m, tea.WithAltScreen())
	log.Println("set up tea program")

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tea program got error: %w", err)
	}
	return nil
}
