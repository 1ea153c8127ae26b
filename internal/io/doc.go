// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Folder provisioning for the band/album layout
//   - Create-only file writes (existing files are never replaced)
//   - Filename sanitization for cross-platform compatibility
//   - Square JPEG album covers from video thumbnails
//
// File system access goes through afero.Fs so callers can substitute an
// in-memory file system in tests.
//
// # Folder Provisioning
//
//	bandDir, err := ioutils.AddFolderIfNeeded(fs, "/music", "Metallica")
//	albumDir, err := ioutils.AddFolderIfNeeded(fs, bandDir, "Black Album")
//
// # Image Processing
//
//	svc := ioutils.NewImageService()
//	cover, err := svc.Cover(ctx, thumbnail, 1000) // square JPEG
package ioutils
