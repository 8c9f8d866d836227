// Command amai-hub answers bridge requests on stdin/stdout for an app
// that embeds the player's library and metadata logic.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pes18fan/amai/bridge"
	"github.com/pes18fan/amai/config"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (defaults to the XDG config dir)")
	musicDir := flag.String("dir", "", "music folder to answer from (overrides config)")
	flag.Parse()

	// stdout carries frames, so logs go to stderr
	log.SetOutput(os.Stderr)

	path := *configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "amai-hub: %v\n", err)
			os.Exit(1)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "amai-hub: %v\n", err)
		os.Exit(1)
	}
	if *musicDir != "" {
		cfg.MusicDir = *musicDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := bridge.NewHandler(cfg.MusicDir, cfg.Extensions)
	log.Println("amai-hub serving on stdio")

	// a read on stdin does not observe ctx, so serve in the background
	errc := make(chan error, 1)
	go func() { errc <- bridge.Serve(ctx, os.Stdin, os.Stdout, h) }()

	select {
	case err := <-errc:
		if err != nil {
			fmt.Fprintf(os.Stderr, "amai-hub: %v\n", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}
	log.Println("amai-hub stopped")
}
