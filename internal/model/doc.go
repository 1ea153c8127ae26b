// Package model defines the core data structures used throughout
// ydl-music.
//
// # Video
//
// VideoInfo is the subset of the downloader's info-json sidecar that the
// pipeline reads: title, description, duration and chapters.
//
//	info, err := model.DecodeVideoInfo(r)
//	fmt.Println(info.Title, len(info.Chapters))
//
// # Identity
//
// Identity is the (band, album, year) triple parsed from a video title.
//
// # Album and Track
//
// Album groups the output tracks written for one video:
//
//	album := model.NewAlbum(id, "/music/Metallica/Black Album", pathConfig)
//	track := model.NewTrack(album, 1, "Enter Sandman", seg, ".mp3")
//	fmt.Println(track.Path) // /music/Metallica/Black Album/01 Enter Sandman.mp3
//
// Track numbers are 1-based and rendered with at least two digits.
package model
