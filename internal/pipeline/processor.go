package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/handiism/ydl-music/internal/audio"
	"github.com/handiism/ydl-music/internal/chapters"
	"github.com/handiism/ydl-music/internal/config"
	"github.com/handiism/ydl-music/internal/http"
	ioutils "github.com/handiism/ydl-music/internal/io"
	"github.com/handiism/ydl-music/internal/model"
	"github.com/handiism/ydl-music/internal/operator"
	"github.com/handiism/ydl-music/internal/runner"
	"github.com/handiism/ydl-music/internal/title"
	"github.com/handiism/ydl-music/internal/ytdl"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"
)

// ThumbnailFetcher downloads a thumbnail image.
type ThumbnailFetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Option customizes a Processor.
type Option func(*Processor)

// WithFs replaces the OS file system. The runner's tools must see the
// same files, so this is only useful together with a fake runner.
func WithFs(afs afero.Fs) Option {
	return func(p *Processor) { p.fs = afs }
}

// WithThumbnailFetcher replaces the HTTP client used for cover art.
func WithThumbnailFetcher(f ThumbnailFetcher) Option {
	return func(p *Processor) { p.thumbs = f }
}

// WithTempRoot sets the directory temporary work directories are created
// in. Empty means the OS default.
func WithTempRoot(dir string) Option {
	return func(p *Processor) { p.tempRoot = dir }
}

// Processor runs videos through the download, split and tag sequence.
type Processor struct {
	settings *config.Settings
	pathCfg  *model.PathConfig
	operator operator.Operator
	log      zerolog.Logger

	fs       afero.Fs
	thumbs   ThumbnailFetcher
	tempRoot string

	downloader *ytdl.Downloader
	writer     *audio.TrackWriter
	verifier   *audio.Verifier
	playlist   *audio.PlaylistCreator
	images     *ioutils.ImageService
	limiter    *rate.Limiter

	onProgress func(ProgressEvent)

	mu    sync.Mutex
	stats Stats
}

// NewProcessor creates a new Processor. A nil op behaves like
// operator.NonInteractive.
func NewProcessor(
	settings *config.Settings,
	r runner.Runner,
	op operator.Operator,
	log zerolog.Logger,
	onProgress func(ProgressEvent),
	opts ...Option,
) *Processor {
	if op == nil {
		op = operator.NonInteractive{}
	}

	p := &Processor{
		settings:   settings,
		pathCfg:    settings.ToPathConfig(),
		operator:   op,
		log:        log.With().Str("component", "pipeline").Logger(),
		fs:         afero.NewOsFs(),
		thumbs:     http.NewClient(),
		playlist:   audio.NewPlaylistCreator(model.ParsePlaylistFormat(settings.PlaylistFormat), settings.M3UExtended),
		images:     ioutils.NewImageService(),
		limiter:    newLimiter(settings),
		onProgress: onProgress,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.downloader = ytdl.NewDownloader(p.fs, r, ytdl.Options{
		Binary:       settings.YtDlpPath,
		AudioFormat:  settings.AudioFormat,
		AudioQuality: settings.AudioQuality,
	}, log)
	p.writer = audio.NewTrackWriter(p.fs, r, settings.FFmpegPath, log)
	p.verifier = audio.NewVerifier(p.fs)

	return p
}

func newLimiter(settings *config.Settings) *rate.Limiter {
	burst := max(settings.ThrottleBurst, 1)
	if settings.ThrottleInterval <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	return rate.NewLimiter(rate.Every(settings.Interval()), burst)
}

// Stats returns a snapshot of the counters.
func (p *Processor) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// ProcessPlaylist processes reqs in order, waiting on the throttle before
// each video. Requests that cannot succeed are reported before anything is
// downloaded. Failures are collected and returned joined; with
// settings.FailFast the run stops at the first one. The albums of the
// videos that got as far as writing tracks are returned.
func (p *Processor) ProcessPlaylist(ctx context.Context, reqs []VideoRequest) ([]*model.Album, error) {
	var (
		albums []*model.Album
		errs   []error
	)

	for _, req := range reqs {
		if err := p.checkRequest(req); err != nil {
			errs = append(errs, fmt.Errorf("video %s: %w", req.VideoID, err))
		}
	}
	if len(errs) > 0 {
		p.progress(ProgressEvent{Message: fmt.Sprintf("%d of %d videos cannot be processed, nothing downloaded", len(errs), len(reqs)), Level: LevelError})
		return nil, errors.Join(errs...)
	}

	for i, req := range reqs {
		if err := p.limiter.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("playlist interrupted before video %s: %w", req.VideoID, err))
			break
		}

		p.progress(ProgressEvent{Message: fmt.Sprintf("Processing video %d/%d: %s", i+1, len(reqs), req.VideoID), Level: LevelInfo})

		album, err := p.ProcessVideo(ctx, req)
		if album != nil {
			albums = append(albums, album)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("video %s: %w", req.VideoID, err))
			if p.settings.FailFast || ctx.Err() != nil {
				break
			}
		}
	}

	if len(errs) > 0 {
		p.progress(ProgressEvent{Message: fmt.Sprintf("%d of %d videos failed", len(errs), len(reqs)), Level: LevelWarning})
	} else {
		p.progress(ProgressEvent{Message: fmt.Sprintf("All %d videos processed", len(reqs)), Level: LevelSuccess})
	}

	return albums, errors.Join(errs...)
}

// ProcessVideo downloads one video and writes its tracks. The returned
// album lists the tracks actually written; it is nil if processing failed
// before any track was attempted.
//
// A track whose file already exists does not stop its siblings unless
// settings.StopOnTrackError is set. Tool failures abort the video.
func (p *Processor) ProcessVideo(ctx context.Context, req VideoRequest) (album *model.Album, err error) {
	defer func() {
		p.mu.Lock()
		p.stats.Videos++
		if err != nil {
			p.stats.FailedVideos++
		}
		p.mu.Unlock()
		if err != nil {
			p.progress(ProgressEvent{Message: fmt.Sprintf("Failed %s: %v", req.VideoID, err), Level: LevelError})
		}
	}()

	if err := p.checkRequest(req); err != nil {
		return nil, err
	}

	tmp, err := afero.TempDir(p.fs, p.tempRoot, "ydl-music-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer func() {
		if rmErr := p.fs.RemoveAll(tmp); rmErr != nil {
			p.log.Warn().Err(rmErr).Str("dir", tmp).Msg("failed to remove work directory")
		}
	}()

	p.progress(ProgressEvent{Message: fmt.Sprintf("Downloading %s", req.VideoID), Level: LevelInfo})
	res, err := p.downloader.Download(ctx, req.VideoID, tmp)
	if err != nil {
		return nil, err
	}

	rawTitle := res.Info.Title
	if req.CustomTitle != "" {
		rawTitle = req.CustomTitle
	}
	id, err := title.Resolve(ctx, rawTitle, p.operator, p.log)
	if err != nil {
		return nil, err
	}
	p.progress(ProgressEvent{Message: fmt.Sprintf("Found album: %s", id), Level: LevelInfo})

	chs, err := p.chapters(ctx, res.Info, req)
	if err != nil {
		return nil, err
	}

	album, err = p.provision(id)
	if err != nil {
		return nil, err
	}

	tracks, err := buildTracks(album, chs, strings.ToLower(filepath.Ext(res.AudioPath)), req.EditTimes)
	if err != nil {
		return nil, err
	}

	trackErrs, err := p.writeTracks(ctx, res.AudioPath, album, tracks)
	if err != nil {
		return album, err
	}

	if p.settings.CreatePlaylist && len(album.Tracks) > 0 {
		p.writePlaylist(album)
	}
	if p.settings.SaveCoverArt {
		p.saveCoverArt(ctx, album, res.ThumbnailURL)
	}

	if len(trackErrs) == 0 {
		p.progress(ProgressEvent{Message: fmt.Sprintf("Successfully processed album: %s", id), Level: LevelSuccess})
	} else {
		p.progress(ProgressEvent{Message: fmt.Sprintf("Finished %s, %d of %d tracks failed", id, len(trackErrs), len(tracks)), Level: LevelWarning})
	}

	return album, errors.Join(trackErrs...)
}

// checkRequest rejects requests that would fail only after the download.
func (p *Processor) checkRequest(req VideoRequest) error {
	if strings.TrimSpace(req.VideoID) == "" {
		return errors.New("no video id given")
	}
	if len(req.CustomChapters) > 0 {
		if err := chapters.Validate(req.CustomChapters); err != nil {
			return err
		}
	}
	if req.EditTimes && !operator.CanAsk(p.operator) {
		return fmt.Errorf("editing chapter times needs an interactive session: %w", operator.ErrNonInteractive)
	}
	return nil
}

func (p *Processor) chapters(ctx context.Context, info *model.VideoInfo, req VideoRequest) ([]model.Chapter, error) {
	res := chapters.Resolve(info, req.CustomChapters)
	p.log.Info().Stringer("source", res.Source).Int("count", len(res.Chapters)).Msg("resolved chapters")

	chs := res.Chapters
	switch res.Source {
	case chapters.SourcePlaceholder:
		p.progress(ProgressEvent{Message: "Video has no chapters, writing a single track", Level: LevelWarning})
	case chapters.SourceVideo:
		chs = chapters.Clean(chs)
	}

	if req.EditTimes {
		edited, err := chapters.EditTimes(ctx, chs, p.operator)
		if err != nil {
			return nil, err
		}
		chs = edited
	}

	return chs, nil
}

func (p *Processor) provision(id model.Identity) (*model.Album, error) {
	if err := ioutils.EnsureDir(p.fs, p.settings.MusicRoot); err != nil {
		return nil, fmt.Errorf("failed to create music root: %w", err)
	}
	bandDir, err := ioutils.AddFolderIfNeeded(p.fs, p.settings.MusicRoot, id.Band)
	if err != nil {
		return nil, err
	}
	albumDir, err := ioutils.AddFolderIfNeeded(p.fs, bandDir, id.Album)
	if err != nil {
		return nil, err
	}
	return model.NewAlbum(id, albumDir, p.pathCfg), nil
}

// buildTracks maps chapters to tracks. A single chapter is one track named
// after the album; it spans the whole file unless its times were edited.
func buildTracks(album *model.Album, chs []model.Chapter, ext string, edited bool) ([]*model.Track, error) {
	if len(chs) == 1 {
		var seg *model.Segment
		if edited {
			seg = chs[0].Segment()
		}
		return []*model.Track{model.NewTrack(album, 1, album.Album, seg, ext)}, nil
	}

	tracks := make([]*model.Track, 0, len(chs))
	for i, ch := range chs {
		seg := ch.Segment()
		if seg == nil {
			return nil, fmt.Errorf("chapter %d %q has no usable time range (%gs to %gs)", i+1, ch.Title, ch.StartTime, ch.EndTime)
		}
		name := ch.Title
		if strings.TrimSpace(name) == "" {
			name = "Track " + model.FormatTrackNumber(i+1)
		}
		tracks = append(tracks, model.NewTrack(album, i+1, name, seg, ext))
	}
	return tracks, nil
}

// writeTracks writes tracks in order. Existing targets are collected in
// the first return value; any other failure is returned as the second and
// ends the video.
func (p *Processor) writeTracks(ctx context.Context, src string, album *model.Album, tracks []*model.Track) ([]error, error) {
	var trackErrs []error

	for _, track := range tracks {
		err := p.writer.Write(ctx, src, track)

		var exists *audio.TargetExistsError
		switch {
		case err == nil:
		case errors.As(err, &exists):
			p.countTrack(false, 0)
			trackErrs = append(trackErrs, fmt.Errorf("track %s: %w", track.TrackNumber(), err))
			p.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", filepath.Base(track.Path)), Level: LevelWarning})
			if p.settings.StopOnTrackError {
				return trackErrs, nil
			}
			continue
		default:
			p.countTrack(false, 0)
			return trackErrs, fmt.Errorf("failed to write track %s %q: %w", track.TrackNumber(), track.Title, err)
		}

		album.Tracks = append(album.Tracks, track)
		p.countTrack(true, p.fileSize(track.Path))
		p.progress(ProgressEvent{Message: fmt.Sprintf("Written: %s", filepath.Base(track.Path)), Level: LevelVerbose})

		if p.settings.VerifyTags && strings.EqualFold(filepath.Ext(track.Path), ".mp3") {
			p.verify(track)
		}
	}

	return trackErrs, nil
}

func (p *Processor) verify(track *model.Track) {
	mismatches, err := p.verifier.Verify(track)
	if err != nil {
		p.log.Warn().Err(err).Str("path", track.Path).Msg("could not verify tags")
		return
	}
	for _, m := range mismatches {
		p.progress(ProgressEvent{Message: fmt.Sprintf("Tag mismatch in %s: %s", filepath.Base(track.Path), m), Level: LevelWarning})
	}
}

func (p *Processor) writePlaylist(album *model.Album) {
	content, err := p.playlist.CreatePlaylist(album)
	if err == nil {
		err = ioutils.WriteNewFile(p.fs, album.PlaylistPath, content)
	}
	switch {
	case errors.Is(err, fs.ErrExist):
		p.progress(ProgressEvent{Message: fmt.Sprintf("Playlist %s already exists, left unchanged", filepath.Base(album.PlaylistPath)), Level: LevelWarning})
	case err != nil:
		p.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
	default:
		p.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist for %s", album.Album), Level: LevelSuccess})
	}
}

func (p *Processor) saveCoverArt(ctx context.Context, album *model.Album, url string) {
	if url == "" {
		p.progress(ProgressEvent{Message: "Video has no thumbnail, no cover art saved", Level: LevelVerbose})
		return
	}
	if ok, _ := ioutils.Exists(p.fs, album.ArtworkPath); ok {
		p.progress(ProgressEvent{Message: fmt.Sprintf("Cover art %s already exists, left unchanged", filepath.Base(album.ArtworkPath)), Level: LevelVerbose})
		return
	}

	thumb, err := p.thumbs.Get(ctx, url)
	if err != nil {
		p.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading artwork for %s: %v", album.Album, err), Level: LevelWarning})
		return
	}

	cover, err := p.images.Cover(ctx, thumb, p.settings.CoverArtMaxSize)
	if err != nil {
		p.progress(ProgressEvent{Message: fmt.Sprintf("Error converting artwork for %s: %v", album.Album, err), Level: LevelWarning})
		return
	}

	if err := ioutils.WriteNewFile(p.fs, album.ArtworkPath, cover); err != nil {
		p.progress(ProgressEvent{Message: fmt.Sprintf("Error saving artwork: %v", err), Level: LevelWarning})
		return
	}
	p.progress(ProgressEvent{Message: fmt.Sprintf("Saved artwork for %s", album.Album), Level: LevelVerbose})
}

func (p *Processor) fileSize(path string) int64 {
	info, err := p.fs.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func (p *Processor) countTrack(ok bool, size int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ok {
		p.stats.Tracks++
		p.stats.Bytes += size
	} else {
		p.stats.FailedTracks++
	}
}

func (p *Processor) progress(event ProgressEvent) {
	level := zerolog.InfoLevel
	switch event.Level {
	case LevelVerbose:
		level = zerolog.DebugLevel
	case LevelWarning:
		level = zerolog.WarnLevel
	case LevelError:
		level = zerolog.ErrorLevel
	}
	p.log.WithLevel(level).Msg(event.Message)

	if p.onProgress != nil {
		p.onProgress(event)
	}
}
