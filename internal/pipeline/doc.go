// Package pipeline turns a video into a tagged album on disk.
//
// # Processor
//
// The Processor runs the whole sequence for one video:
//
//  1. Download audio and metadata with yt-dlp into a temporary directory
//  2. Parse band, album and year from the title
//  3. Resolve, clean and optionally edit the chapter list
//  4. Create <root>/<band>/<album>
//  5. Cut and tag one file per chapter with ffmpeg
//  6. Write the album playlist and cover art (optional)
//
// The temporary directory is removed whether the video succeeds or not.
//
// # Basic Usage
//
//	p := pipeline.NewProcessor(settings, runner.NewExecRunner(log), operator.NonInteractive{}, log,
//	    func(event pipeline.ProgressEvent) {
//	        fmt.Println(event.Message)
//	    })
//
//	album, err := p.ProcessVideo(ctx, pipeline.VideoRequest{VideoID: "dQw4w9WgXcQ"})
//
// # Playlists
//
// ProcessPlaylist handles videos one after another, waiting on a rate
// limiter between them. A failed video does not stop the run unless
// settings.FailFast is set; all failures are returned joined at the end.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
package pipeline
