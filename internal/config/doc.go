// Package config provides configuration management for ydl-music.
//
// This package handles:
//   - Loading and saving settings from TOML or JSON files
//   - Default configuration values and XDG default paths
//   - Validation of enumerations and ranges
//   - Conversion to model.PathConfig for other packages
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Tracks go to the user's XDG music directory
//	// yt-dlp and ffmpeg are looked up in PATH
//	// Playlist runs wait 10s between videos
//
// # Loading from File
//
// The format follows the extension: .toml is TOML, anything else JSON.
//
//	settings, err := config.Load(afero.NewOsFs(), config.DefaultPath())
//	// A missing file yields the defaults
//
// # Saving Settings
//
//	settings.MusicRoot = "/srv/music"
//	err := settings.Save(afero.NewOsFs(), config.DefaultPath())
package config
