package chapters

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/handiism/ydl-music/internal/model"
	"github.com/handiism/ydl-music/internal/operator"
)

// TimeInputError reports an answer to a time prompt that is not a
// non-negative whole number of seconds.
type TimeInputError struct {
	Index int
	Field string
	Input string
}

func (e *TimeInputError) Error() string {
	return fmt.Sprintf("chapter %d: %s %q is not a whole number of seconds", e.Index, e.Field, e.Input)
}

// EditTimes asks op for a new start and end time for every chapter and
// returns the edited copy. A blank answer keeps the current value.
//
// The first unusable answer aborts with *TimeInputError; there is no
// re-prompt.
func EditTimes(ctx context.Context, chs []model.Chapter, op operator.Operator) ([]model.Chapter, error) {
	out := make([]model.Chapter, len(chs))
	copy(out, chs)

	for i := range out {
		ch := &out[i]

		start, err := askSeconds(ctx, op, i+1, ch.Title, "start_time", ch.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := askSeconds(ctx, op, i+1, ch.Title, "end_time", ch.EndTime)
		if err != nil {
			return nil, err
		}

		ch.StartTime = start
		ch.EndTime = end
	}

	return out, nil
}

func askSeconds(ctx context.Context, op operator.Operator, index int, title, field string, current float64) (float64, error) {
	question := fmt.Sprintf("Chapter %d %q: %s in seconds (blank keeps %s)", index, title, field, formatSeconds(current))

	answer, err := op.Ask(ctx, question)
	if err != nil {
		return 0, fmt.Errorf("failed to ask for chapter %d %s: %w", index, field, err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return current, nil
	}

	secs, err := strconv.Atoi(answer)
	if err != nil || secs < 0 {
		return 0, &TimeInputError{Index: index, Field: field, Input: answer}
	}
	return float64(secs), nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
