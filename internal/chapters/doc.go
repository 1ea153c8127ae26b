// Package chapters turns a video's chapter markers, or a caller-supplied
// override, into the ordered list the track writer consumes.
//
// # Resolving
//
//	res := chapters.Resolve(info, custom)
//	if res.Source == chapters.SourcePlaceholder {
//	    // no chapter data: the whole video becomes one track
//	}
//
// # Cleaning
//
// Clean strips track-number prefixes ("01. ", "2 - ", ...) and trailing
// clock times ("Solo 4:20") from chapter titles. It is idempotent.
//
//	cleaned := chapters.Clean(res.Chapters)
//
// # Overrides
//
// DecodeOverrides parses and validates a JSON chapter list:
//
//	chs, err := chapters.DecodeOverrides([]byte(`[{"start_time":0,"end_time":99,"title":"Intro"}]`))
//
// # Editing times
//
// EditTimes asks an operator.Operator for replacement start and end times.
package chapters
