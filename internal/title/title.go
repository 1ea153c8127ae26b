// Package title parses "BAND - ALBUM (YEAR ...)" video titles into a
// model.Identity.
package title

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/handiism/ydl-music/internal/model"
	"github.com/handiism/ydl-music/internal/operator"
	"github.com/rs/zerolog"
)

// Pattern is the title layout the parser accepts: the band runs up to the
// first " - ", the album up to the last " (" that is followed by a
// four-digit year, and the year is the first four-digit run after it.
const Pattern = `^(.*?) - (.*) \(.*?([0-9]{4}).*$`

var titleRe = regexp.MustCompile(Pattern)

// ParseError reports a title that does not match Pattern.
type ParseError struct {
	Title   string
	Pattern string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("title %q does not match %q", e.Title, e.Pattern)
}

// Parse extracts band, album and year from title. Surrounding whitespace
// is trimmed from each field.
//
// Example:
//
//	id, err := title.Parse("Metallica - Black Album (1991, remaster)")
//	// id = Identity{Band: "Metallica", Album: "Black Album", Year: "1991"}
func Parse(title string) (model.Identity, error) {
	m := titleRe.FindStringSubmatch(title)
	if m == nil {
		return model.Identity{}, &ParseError{Title: title, Pattern: Pattern}
	}
	return model.Identity{
		Band:  strings.TrimSpace(m[1]),
		Album: strings.TrimSpace(m[2]),
		Year:  strings.TrimSpace(m[3]),
	}, nil
}

// Resolve parses title and, if that fails, asks op once for a corrected
// title. A corrected title that still does not parse is terminal.
//
// When op cannot answer (operator.ErrNonInteractive) the original
// *ParseError is returned.
func Resolve(ctx context.Context, title string, op operator.Operator, log zerolog.Logger) (model.Identity, error) {
	log.Info().Str("title", title).Msg("parsing band, album and year from title")

	id, err := Parse(title)
	if err == nil {
		return id, nil
	}

	log.Warn().Str("title", title).Str("pattern", Pattern).Msg("title does not match, asking for a corrected one")

	corrected, askErr := op.Ask(ctx, fmt.Sprintf("Title %q does not match %q, paste a title that does", title, Pattern))
	if askErr != nil {
		if errors.Is(askErr, operator.ErrNonInteractive) {
			return model.Identity{}, err
		}
		return model.Identity{}, fmt.Errorf("failed to get corrected title: %w", askErr)
	}

	return Parse(corrected)
}
