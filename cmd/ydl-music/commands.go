package main

import (
	"fmt"

	"github.com/handiism/ydl-music/internal/audio"
	"github.com/handiism/ydl-music/internal/chapters"
	"github.com/handiism/ydl-music/internal/pipeline"
	"github.com/handiism/ydl-music/internal/playlist"
	"github.com/handiism/ydl-music/internal/runner"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func (a *app) videoCmd() *cobra.Command {
	var (
		customTitle  string
		chaptersFile string
		editTimes    bool
		stopOnError  bool
	)

	cmd := &cobra.Command{
		Use:   "video <id|url>",
		Short: "Split one video into an album",
		Example: "  ydl-music video dQw4w9WgXcQ\n" +
			"  ydl-music video https://youtu.be/dQw4w9WgXcQ --title \"Band - Album (1999)\"\n" +
			"  ydl-music video dQw4w9WgXcQ --chapters chapters.json",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := pipeline.VideoRequest{
				VideoID:     args[0],
				CustomTitle: customTitle,
				EditTimes:   editTimes,
			}

			if chaptersFile != "" {
				data, err := afero.ReadFile(a.fs, chaptersFile)
				if err != nil {
					return fmt.Errorf("failed to read chapters file: %w", err)
				}
				req.CustomChapters, err = chapters.DecodeOverrides(data)
				if err != nil {
					return fmt.Errorf("invalid chapters file %s: %w", chaptersFile, err)
				}
			}
			if cmd.Flags().Changed("stop-on-track-error") {
				a.settings.StopOnTrackError = stopOnError
			}

			out := cmd.OutOrStdout()
			proc := a.processor(out)
			album, err := proc.ProcessVideo(cmd.Context(), req)
			printSummary(out, proc.Stats())
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Album written to %s\n", album.Path)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&customTitle, "title", "", "use this title instead of the video title")
	flags.StringVar(&chaptersFile, "chapters", "", "JSON file of chapters to use instead of the video chapters")
	flags.BoolVar(&editTimes, "edit-times", false, "ask for new chapter start and end times (needs --interactive)")
	flags.BoolVar(&stopOnError, "stop-on-track-error", false, "stop at the first track that cannot be written")

	return cmd
}

func (a *app) playlistCmd() *cobra.Command {
	var (
		failFast bool
		interval float64
	)

	cmd := &cobra.Command{
		Use:   "playlist <file.csv>",
		Short: "Process every video listed in a CSV playlist",
		Long: "The CSV file has the header video_id,custom_title,custom_chapters,edit_times.\n" +
			"Every row is checked before the first download starts. Videos are\n" +
			"processed one after another, throttled by throttle_interval seconds.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("fail-fast") {
				a.settings.FailFast = failFast
			}
			if flags.Changed("throttle") {
				a.settings.ThrottleInterval = interval
			}
			if err := a.settings.Validate(); err != nil {
				return err
			}

			entries, err := playlist.Load(a.fs, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			proc := a.processor(out)
			albums, err := proc.ProcessPlaylist(cmd.Context(), pipeline.RequestsFromPlaylist(entries))
			printSummary(out, proc.Stats())
			for _, album := range albums {
				fmt.Fprintf(out, "  %s -> %s\n", album.Identity, album.Path)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&failFast, "fail-fast", false, "stop at the first video that fails")
	flags.Float64Var(&interval, "throttle", 0, "seconds between video downloads (overrides settings)")

	return cmd
}

func (a *app) overlapCmd() *cobra.Command {
	var (
		outDir  string
		seconds float64
	)

	cmd := &cobra.Command{
		Use:   "overlap <file> <file>...",
		Short: "Mix the start of each track into the end of the one before it",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o := audio.NewOverlapper(a.fs, runner.NewExecRunner(a.log), a.settings.FFmpegPath, a.log)
			written, err := o.Overlap(cmd.Context(), args, outDir, seconds)

			out := cmd.OutOrStdout()
			for _, path := range written {
				fmt.Fprintf(out, "✓ %s\n", path)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&outDir, "out", "o", ".", "directory for the output_ files")
	flags.Float64Var(&seconds, "seconds", 1, "overlap length in seconds")

	return cmd
}
