package title

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/handiism/ydl-music/internal/model"
	"github.com/handiism/ydl-music/internal/operator"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		title string
		want  model.Identity
	}{
		{
			title: "Metallica - Black Album (1991, remaster)",
			want:  model.Identity{Band: "Metallica", Album: "Black Album", Year: "1991"},
		},
		{
			title: "Iron Maiden - Powerslave (1984)",
			want:  model.Identity{Band: "Iron Maiden", Album: "Powerslave", Year: "1984"},
		},
		{
			title: "Band - Album - Part II (2003 Full Album)",
			want:  model.Identity{Band: "Band", Album: "Album - Part II", Year: "2003"},
		},
		{
			title: "Band - Album (Deluxe Edition) (2005)",
			want:  model.Identity{Band: "Band", Album: "Album (Deluxe Edition)", Year: "2005"},
		},
		{
			title: "Band - Album (1991, remastered 2011)",
			want:  model.Identity{Band: "Band", Album: "Album", Year: "1991"},
		},
		{
			title: "  Band   -   Album   (full album, 1977)",
			want:  model.Identity{Band: "Band", Album: "Album", Year: "1977"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got, err := Parse(tt.title)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_GeneratedTitles(t *testing.T) {
	bands := []string{"Metallica", "AC/DC", "Blue Öyster Cult", "Earth, Wind & Fire"}
	albums := []string{"Black Album", "Back in Black", "Agents of Fortune", "All 'N All", "Side A - Side B"}
	years := []string{"1976", "1980", "1991"}
	miscs := []string{"", " remaster", ", full album", " Full Album HQ 320kbps)"}

	for _, b := range bands {
		for _, a := range albums {
			for _, y := range years {
				for _, m := range miscs {
					title := fmt.Sprintf("%s - %s (%s%s)", b, a, y, m)
					got, err := Parse(title)
					require.NoError(t, err, title)
					assert.Equal(t, model.Identity{Band: b, Album: a, Year: y}, got, title)
				}
			}
		}
	}
}

func TestParse_NoMatch(t *testing.T) {
	titles := []string{
		"",
		"Just a video title",
		"Band - Album",
		"Band - Album (no year)",
		"Band Album (1999)",
		"Band - Album 1999",
		"Band - Album (99)",
	}

	for _, title := range titles {
		t.Run(title, func(t *testing.T) {
			got, err := Parse(title)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, title, perr.Title)
			assert.Equal(t, model.Identity{}, got)
		})
	}
}

func TestResolve_ParsesWithoutAsking(t *testing.T) {
	op := operator.Func(func(context.Context, string) (string, error) {
		t.Fatal("operator must not be asked")
		return "", nil
	})

	got, err := Resolve(context.Background(), "A - B (2000)", op, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, model.Identity{Band: "A", Album: "B", Year: "2000"}, got)
}

func TestResolve_NonInteractiveReturnsParseError(t *testing.T) {
	_, err := Resolve(context.Background(), "unparseable", operator.NonInteractive{}, zerolog.Nop())

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "unparseable", perr.Title)
}

func TestResolve_UsesCorrectedTitle(t *testing.T) {
	asked := 0
	op := operator.Func(func(context.Context, string) (string, error) {
		asked++
		return "Band - Album (1999)", nil
	})

	got, err := Resolve(context.Background(), "unparseable", op, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, asked)
	assert.Equal(t, model.Identity{Band: "Band", Album: "Album", Year: "1999"}, got)
}

func TestResolve_SecondFailureIsTerminal(t *testing.T) {
	asked := 0
	op := operator.Func(func(context.Context, string) (string, error) {
		asked++
		return "still wrong", nil
	})

	_, err := Resolve(context.Background(), "unparseable", op, zerolog.Nop())
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "still wrong", perr.Title)
	assert.Equal(t, 1, asked)
}

func TestResolve_OperatorFailure(t *testing.T) {
	boom := errors.New("boom")
	op := operator.Func(func(context.Context, string) (string, error) {
		return "", boom
	})

	_, err := Resolve(context.Background(), "unparseable", op, zerolog.Nop())
	assert.ErrorIs(t, err, boom)
}
