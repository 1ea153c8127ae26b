package pipeline

import (
	"github.com/handiism/ydl-music/internal/model"
	"github.com/handiism/ydl-music/internal/playlist"
)

// VideoRequest describes one video to process.
type VideoRequest struct {
	// VideoID is a video id or a full URL.
	VideoID string

	// CustomTitle replaces the video title before parsing when set.
	CustomTitle string

	// CustomChapters replaces the video's chapters when non-empty. It is
	// validated before anything is downloaded and never cleaned.
	CustomChapters []model.Chapter

	// EditTimes asks the operator for new chapter times.
	EditTimes bool
}

// RequestsFromPlaylist converts decoded playlist entries to requests.
func RequestsFromPlaylist(entries []playlist.Entry) []VideoRequest {
	reqs := make([]VideoRequest, len(entries))
	for i, e := range entries {
		reqs[i] = VideoRequest{
			VideoID:        e.VideoID,
			CustomTitle:    e.CustomTitle,
			CustomChapters: e.CustomChapters,
			EditTimes:      e.EditTimes,
		}
	}
	return reqs
}
