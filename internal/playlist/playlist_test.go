package playlist

import (
	"errors"
	"strings"
	"testing"

	"github.com/handiism/ydl-music/internal/chapters"
	"github.com/handiism/ydl-music/internal/model"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "video_id,custom_title,custom_chapters,edit_times\n"

func TestDecode(t *testing.T) {
	doc := header +
		"abc123,,,\n" +
		`def456,"Metallica - Black Album (1991)","[{""start_time"":0,""end_time"":99,""title"":""1""},{""start_time"":100,""end_time"":666,""title"":""2""}]",yes` + "\n" +
		"https://youtu.be/ghi789,,,TRUE\n"

	entries, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, Entry{Line: 2, VideoID: "abc123"}, entries[0])

	assert.Equal(t, 3, entries[1].Line)
	assert.Equal(t, "Metallica - Black Album (1991)", entries[1].CustomTitle)
	assert.Equal(t, []model.Chapter{
		{StartTime: 0, EndTime: 99, Title: "1"},
		{StartTime: 100, EndTime: 666, Title: "2"},
	}, entries[1].CustomChapters)
	assert.True(t, entries[1].EditTimes)

	assert.Equal(t, "https://youtu.be/ghi789", entries[2].VideoID)
	assert.True(t, entries[2].EditTimes)
}

func TestDecode_ColumnOrder(t *testing.T) {
	doc := "edit_times,video_id,custom_title,custom_chapters\nno,abc123,,\n"

	entries, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc123", entries[0].VideoID)
	assert.False(t, entries[0].EditTimes)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		rows  string
		line  int
		field string
	}{
		{name: "missing id", rows: ",,,\n", line: 2, field: "video_id"},
		{name: "id with space", rows: "abc 123,,,\n", line: 2, field: "video_id"},
		{name: "bad bool", rows: "abc,,,maybe\n", line: 2, field: "edit_times"},
		{name: "chapters not json", rows: "abc,,not json,\n", line: 2, field: "custom_chapters"},
		{
			name:  "overlapping chapters on second row",
			rows:  "ok,,,\n" + `bad,,"[{""start_time"":0,""end_time"":100,""title"":""a""},{""start_time"":50,""end_time"":200,""title"":""b""}]",` + "\n",
			line:  3,
			field: "custom_chapters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(header + tt.rows))

			var merr *MalformedRowError
			require.ErrorAs(t, err, &merr)
			assert.Equal(t, tt.line, merr.Line)
			assert.Equal(t, tt.field, merr.Field)
			assert.Contains(t, merr.Error(), "playlist line")
		})
	}
}

func TestDecode_ChapterErrorUnwraps(t *testing.T) {
	rows := `abc,,"[{""start_time"":0,""title"":""a""}]",` + "\n"
	_, err := Decode(strings.NewReader(header + rows))

	var verr *chapters.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "end_time", verr.Field)
}

func TestDecode_Empty(t *testing.T) {
	_, err := Decode(strings.NewReader(header))
	assert.True(t, errors.Is(err, ErrEmpty), "got %v", err)

	_, err = Decode(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p.csv", []byte(header+"abc,,,\n"), 0o644))

	entries, err := Load(fs, "/p.csv")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = Load(fs, "/missing.csv")
	assert.Error(t, err)
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "TRUE", "1", "yes", " Yes "} {
		v, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"", "false", "0", "no", "NO"} {
		v, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := ParseBool("y")
	assert.Error(t, err)
}
