package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/handiism/ydl-music/internal/config"
	"github.com/handiism/ydl-music/internal/logging"
	"github.com/handiism/ydl-music/internal/operator"
	"github.com/handiism/ydl-music/internal/pipeline"
	"github.com/handiism/ydl-music/internal/runner"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type app struct {
	fs afero.Fs

	configPath  string
	musicRoot   string
	logFile     string
	verbose     bool
	interactive bool
	playlist    bool
	coverArt    bool

	settings *config.Settings
	log      zerolog.Logger
	closer   io.Closer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{fs: afero.NewOsFs()}
	err := a.rootCmd().ExecuteContext(ctx)
	a.close()
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "Cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ydl-music",
		Short: "Split YouTube music videos into tagged album tracks",
		Long: "ydl-music downloads the audio of a YouTube video titled\n" +
			"\"BAND - ALBUM (YEAR ...)\", cuts it at its chapters and writes one tagged\n" +
			"track per chapter into <music root>/<band>/<album>.\n\n" +
			"For an interactive front-end, use ydl-music-tui.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultPath(), "settings file (.toml or .json)")
	flags.StringVar(&a.musicRoot, "root", "", "music root directory (overrides settings)")
	flags.StringVar(&a.logFile, "log-file", "", "rotating log file (overrides settings)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "show verbose output")
	flags.BoolVarP(&a.interactive, "interactive", "i", false, "ask on stdin to correct titles and chapter times")
	flags.BoolVar(&a.playlist, "playlist", false, "create an album playlist file")
	flags.BoolVar(&a.coverArt, "cover-art", false, "save the video thumbnail as album cover art")

	cmd.AddCommand(a.videoCmd(), a.playlistCmd(), a.overlapCmd())
	return cmd
}

// setup loads settings, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	settings, err := config.Load(a.fs, a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		settings.MusicRoot = a.musicRoot
	}
	if flags.Changed("log-file") {
		settings.LogFile = a.logFile
	}
	if flags.Changed("playlist") {
		settings.CreatePlaylist = a.playlist
	}
	if flags.Changed("cover-art") {
		settings.SaveCoverArt = a.coverArt
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	log, closer, err := logging.New(logging.Options{
		Verbose: a.verbose,
		File:    settings.LogFile,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	a.settings = settings
	a.log = log
	a.closer = closer
	a.log.Debug().Str("config", a.configPath).Str("root", settings.MusicRoot).Msg("settings loaded")
	return nil
}

// close releases the log file. Cobra skips post-run hooks when a command
// fails, so main calls this after every run.
func (a *app) close() {
	if a.closer == nil {
		return
	}
	if err := a.closer.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing log file: %v\n", err)
	}
	a.closer = nil
}

func (a *app) operator() operator.Operator {
	if a.interactive {
		return operator.NewTerminal(os.Stdin, os.Stdout)
	}
	return operator.NonInteractive{}
}

func (a *app) processor(out io.Writer) *pipeline.Processor {
	return pipeline.NewProcessor(
		a.settings,
		runner.NewExecRunner(a.log),
		a.operator(),
		a.log,
		a.printer(out),
	)
}

// printer writes progress events as plain lines.
func (a *app) printer(out io.Writer) func(pipeline.ProgressEvent) {
	return func(event pipeline.ProgressEvent) {
		if event.Level == pipeline.LevelVerbose && !a.verbose {
			return
		}

		prefix := "  "
		switch event.Level {
		case pipeline.LevelError:
			prefix = "✗ "
		case pipeline.LevelWarning:
			prefix = "! "
		case pipeline.LevelSuccess:
			prefix = "✓ "
		case pipeline.LevelInfo:
			prefix = "› "
		}

		fmt.Fprintln(out, prefix+event.Message)
	}
}

func printSummary(out io.Writer, stats pipeline.Stats) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Videos: %d processed, %d failed\n", stats.Videos, stats.FailedVideos)
	fmt.Fprintf(out, "Tracks: %d written, %d failed (%s)\n",
		stats.Tracks, stats.FailedTracks, humanize.Bytes(uint64(max(stats.Bytes, 0))))
}
