package ioutils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// AddFolderIfNeeded creates root/name if it does not exist yet and returns
// its path. An existing directory is left untouched.
//
// name is passed through SanitizeFileName first, so a band called "AC/DC"
// becomes the folder "AC_DC" instead of two nested folders.
//
// Example:
//
//	dir, err := AddFolderIfNeeded(fs, "/music", "Metallica")
//	// dir = "/music/Metallica"
func AddFolderIfNeeded(afs afero.Fs, root, name string) (string, error) {
	safe := SanitizeFileName(name)
	if safe == "" {
		return "", fmt.Errorf("folder name %q is empty after sanitizing", name)
	}

	dir := filepath.Join(root, safe)
	info, err := afs.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return dir, nil
	case err == nil:
		return "", fmt.Errorf("%s exists and is not a directory", dir)
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("failed to stat %s: %w", dir, err)
	}

	if err := afs.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}

// EnsureDir creates a directory and all parent directories if they don't exist.
func EnsureDir(afs afero.Fs, path string) error {
	return afs.MkdirAll(path, 0o755)
}

// Exists reports whether path exists.
func Exists(afs afero.Fs, path string) (bool, error) {
	_, err := afs.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// WriteNewFile writes data to path, failing with an error matching
// fs.ErrExist if the file is already there.
func WriteNewFile(afs afero.Fs, path string, data []byte) error {
	f, err := afs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// This function ensures filenames are valid across different operating systems,
// particularly Windows which has the most restrictive naming rules.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control characters 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Surrounding whitespace → removed
//
// Example:
//
//	SanitizeFileName("Song: Part 1/2")     // Returns "Song_ Part 1_2"
//	SanitizeFileName("Track...")           // Returns "Track"
//	SanitizeFileName("Name   with  spaces") // Returns "Name with spaces"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots = regexp.MustCompile(`\.+$`)
	multiSpace   = regexp.MustCompile(`\s+`)
)
