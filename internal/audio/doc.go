// Package audio writes, verifies and post-processes the per-track audio
// files of an album.
//
// # Track Writing
//
// TrackWriter cuts one track out of the downloaded audio with ffmpeg. The
// codec stream is copied, never re-encoded, and the tag set of the track
// is stamped onto the output:
//
//	w := audio.NewTrackWriter(fs, runner, "ffmpeg", log)
//	err := w.Write(ctx, "/tmp/x/video.mp3", track)
//	var exists *audio.TargetExistsError
//	if errors.As(err, &exists) {
//	    // the file was already there, nothing was written
//	}
//
// # Tag Verification
//
// Verifier re-reads the ID3 tags of a written MP3 and reports fields that
// do not match the track:
//
//	mismatches, err := audio.NewVerifier(fs).Verify(track)
//
// # Playlists
//
// PlaylistCreator renders an album's tracks as M3U, PLS, WPL or ZPL:
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist(album)
//
// # Overlap
//
// Overlapper mixes the start of each track into the end of the previous
// one, for gapless-style playback of live albums.
package audio
