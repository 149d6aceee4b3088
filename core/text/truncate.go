package text

import (
	"errors"
	"fmt"
)

// Ellipsis is appended to a truncated text.
const Ellipsis = "..."

// ErrLimitTooSmall is returned when a limit cannot hold the ellipsis marker.
var ErrLimitTooSmall = errors.New("truncation limit must be at least 3")

// TruncateWithOverflow bounds text to limit characters.
//
// When text fits, it is returned as is with a nil overflow. Otherwise complete is the
// first limit-3 characters followed by "..." and overflow holds the exact suffix that
// starts at the cut. Characters are counted as runes.
func TruncateWithOverflow(limit int, text string) (complete string, overflow *string, err error) {
	if limit < len(Ellipsis) {
		return "", nil, fmt.Errorf("%w: got %d", ErrLimitTooSmall, limit)
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return text, nil, nil
	}

	cut := limit - len(Ellipsis)
	rest := string(runes[cut:])
	return string(runes[:cut]) + Ellipsis, &rest, nil
}
