package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	ioutils "github.com/handiism/ydl-music/internal/io"
	"github.com/handiism/ydl-music/internal/model"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// AppName names the per-user config and state directories.
const AppName = "ydl-music"

// Settings holds all configuration options.
type Settings struct {
	// Output
	MusicRoot string `json:"music_root" toml:"music_root" validate:"required"`

	// External tools
	YtDlpPath    string `json:"ytdlp_path" toml:"ytdlp_path" validate:"required"`
	FFmpegPath   string `json:"ffmpeg_path" toml:"ffmpeg_path" validate:"required"`
	AudioFormat  string `json:"audio_format" toml:"audio_format" validate:"oneof=mp3 m4a opus flac wav"`
	AudioQuality string `json:"audio_quality" toml:"audio_quality" validate:"required"`

	// Playlist runs
	ThrottleInterval float64 `json:"throttle_interval" toml:"throttle_interval" validate:"gte=0"` // seconds
	ThrottleBurst    int     `json:"throttle_burst" toml:"throttle_burst" validate:"gte=1"`
	FailFast         bool    `json:"fail_fast" toml:"fail_fast"`

	// Tracks
	StopOnTrackError bool `json:"stop_on_track_error" toml:"stop_on_track_error"`
	VerifyTags       bool `json:"verify_tags" toml:"verify_tags"`

	// Album playlist file
	CreatePlaylist         bool   `json:"create_playlist" toml:"create_playlist"`
	PlaylistFormat         string `json:"playlist_format" toml:"playlist_format" validate:"oneof=m3u pls wpl zpl"`
	PlaylistFileNameFormat string `json:"playlist_file_name_format" toml:"playlist_file_name_format"`
	M3UExtended            bool   `json:"m3u_extended" toml:"m3u_extended"`

	// Cover art
	SaveCoverArt     bool   `json:"save_cover_art" toml:"save_cover_art"`
	CoverArtFileName string `json:"cover_art_file_name" toml:"cover_art_file_name"`
	CoverArtMaxSize  int    `json:"cover_art_max_size" toml:"cover_art_max_size" validate:"gt=0"`

	// Logging
	LogFile string `json:"log_file" toml:"log_file"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		MusicRoot: xdg.UserDirs.Music,

		YtDlpPath:    "yt-dlp",
		FFmpegPath:   "ffmpeg",
		AudioFormat:  "mp3",
		AudioQuality: "192K",

		ThrottleInterval: 10,
		ThrottleBurst:    1,
		FailFast:         false,

		StopOnTrackError: false,
		VerifyTags:       true,

		CreatePlaylist:         false,
		PlaylistFormat:         "m3u",
		PlaylistFileNameFormat: "{album}",
		M3UExtended:            true,

		SaveCoverArt:     false,
		CoverArtFileName: "cover",
		CoverArtMaxSize:  1000,

		LogFile: filepath.Join(xdg.StateHome, AppName, AppName+".log"),
	}
}

// DefaultPath returns the default settings file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("toml"), ",")
		return name
	})
	return v
}

// Validate checks value ranges and enumerations.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid setting %s: failed %s %s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// Interval returns the throttle interval as a duration.
func (s *Settings) Interval() time.Duration {
	return time.Duration(s.ThrottleInterval * float64(time.Second))
}

// Load reads settings from a TOML file if path ends in .toml and from a
// JSON file otherwise. A missing file yields the defaults. Keys absent
// from the file keep their default values.
func Load(afs afero.Fs, path string) (*Settings, error) {
	data, err := afero.ReadFile(afs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	settings := DefaultSettings()
	if isTOML(path) {
		err = toml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings %s: %w", path, err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes settings to path, in TOML or JSON by extension.
func (s *Settings) Save(afs afero.Fs, path string) error {
	if err := ioutils.EnsureDir(afs, filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	return afero.WriteFile(afs, path, data, 0o644)
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	return &model.PathConfig{
		CoverArtFileName:       s.CoverArtFileName,
		PlaylistFileNameFormat: s.PlaylistFileNameFormat,
		PlaylistFormat:         model.ParsePlaylistFormat(s.PlaylistFormat),
	}
}

// AudioExtension returns the extension of downloaded and written audio,
// including the dot.
func (s *Settings) AudioExtension() string {
	return "." + strings.ToLower(s.AudioFormat)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
