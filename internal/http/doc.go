// Package http provides the HTTP client used to fetch video thumbnails.
//
// Audio never goes through this package; yt-dlp downloads it. The client
// only fetches the small image that becomes an album's cover art.
//
// # Basic Usage
//
//	client := http.NewClient()
//	thumb, err := client.Get(ctx, result.ThumbnailURL)
package http
