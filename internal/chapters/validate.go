package chapters

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/handiism/ydl-music/internal/model"
)

// ValidationError reports a caller-supplied chapter list that is not
// usable. Index is the 1-based chapter position, 0 for list-level problems.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index == 0 {
		return "invalid chapters: " + e.Reason
	}
	if e.Field == "" {
		return fmt.Sprintf("invalid chapter %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("invalid chapter %d: %s %s", e.Index, e.Field, e.Reason)
}

// rawChapter is a chapter as written by a user. Pointers distinguish a
// missing key from a zero value.
type rawChapter struct {
	StartTime *float64 `json:"start_time" validate:"required"`
	EndTime   *float64 `json:"end_time" validate:"required"`
	Title     *string  `json:"title" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeOverrides parses a JSON array of {"start_time", "end_time",
// "title"} objects and validates it with Validate. All three keys are
// required on every element.
func DecodeOverrides(data []byte) ([]model.Chapter, error) {
	var raw []rawChapter
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("not a JSON chapter list: %v", err)}
	}

	chs := make([]model.Chapter, 0, len(raw))
	for i, r := range raw {
		if err := validate.Struct(r); err != nil {
			return nil, fieldError(i+1, err)
		}
		chs = append(chs, model.Chapter{
			StartTime: *r.StartTime,
			EndTime:   *r.EndTime,
			Title:     *r.Title,
		})
	}

	if err := Validate(chs); err != nil {
		return nil, err
	}
	return chs, nil
}

// Validate checks a caller-supplied chapter list: at least one chapter,
// non-negative start times, end after start, non-empty titles, and
// chapters ordered without overlap.
func Validate(chs []model.Chapter) error {
	if len(chs) == 0 {
		return &ValidationError{Reason: "no chapters given"}
	}

	for i, ch := range chs {
		if err := validate.Struct(ch); err != nil {
			return fieldError(i+1, err)
		}
		if i > 0 && ch.StartTime < chs[i-1].EndTime {
			return &ValidationError{
				Index:  i + 1,
				Reason: fmt.Sprintf("starts at %gs before chapter %d ends at %gs", ch.StartTime, i, chs[i-1].EndTime),
			}
		}
	}
	return nil
}

func fieldError(index int, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Index: index, Reason: err.Error()}
	}

	fe := verrs[0]
	var reason string
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "gte":
		reason = "must be >= " + fe.Param()
	case "gtfield":
		reason = "must be greater than start_time"
	default:
		reason = "failed " + fe.Tag()
	}
	return &ValidationError{Index: index, Field: fe.Field(), Reason: reason}
}
