package twitch_poll

import (
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	MinDurationSeconds   = 15
	MaxDurationSeconds   = 1800
	MinChoices           = 2
	MaxChoices           = 5
	MaxTitleLength       = 60
	MaxChoiceTitleLength = 25
)

var (
	ErrInvalidDuration    = errors.New("poll duration must be between 15 and 1800 seconds")
	ErrTitleTooLong       = errors.New("poll title must be at most 60 characters")
	ErrChoicesCount       = errors.New("poll must have 2 to 5 choices")
	ErrChoiceTitleTooLong = errors.New("poll choice must be at most 25 characters")
)

// Validate checks the poll arguments against the platform limits. Lengths are
// counted in characters, not bytes.
func Validate(title string, durationSeconds int, choices []string) error {
	if durationSeconds < MinDurationSeconds || durationSeconds > MaxDurationSeconds {
		return errors.Wrapf(ErrInvalidDuration, "got %d", durationSeconds)
	}

	if utf8.RuneCountInString(title) > MaxTitleLength {
		return errors.Wrapf(ErrTitleTooLong, "got %d", utf8.RuneCountInString(title))
	}

	if len(choices) < MinChoices || len(choices) > MaxChoices {
		return errors.Wrapf(ErrChoicesCount, "got %d", len(choices))
	}

	for i, choice := range choices {
		if utf8.RuneCountInString(choice) > MaxChoiceTitleLength {
			return errors.Wrapf(ErrChoiceTitleTooLong, "choice %d", i+1)
		}
	}

	return nil
}
