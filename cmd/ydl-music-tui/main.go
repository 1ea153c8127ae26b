package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handiism/ydl-music/internal/config"
	"github.com/handiism/ydl-music/internal/logging"
	"github.com/handiism/ydl-music/internal/tui"
	"github.com/spf13/afero"
)

func main() {
	configFlag := flag.String("config", config.DefaultPath(), "settings file (.toml or .json)")
	verboseFlag := flag.Bool("verbose", false, "log debug output to the log file")
	flag.Parse()

	settings, err := config.Load(afero.NewOsFs(), *configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs only go to the file.
	log, closer, err := logging.New(logging.Options{Verbose: *verboseFlag, File: settings.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := tui.Run(settings, log); err != nil {
		closer.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
