package visit

import (
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// normalizeDate validates an optional yyyy-MM-dd string. An absent value
// yields nil; any present but malformed value, empty included, is an error.
func normalizeDate(s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, *s)
	}
	v := parsed.Format(dateLayout)
	return &v, nil
}

// normalizeTime validates an optional HH:mm string with the same
// absent-is-nil contract as normalizeDate.
func normalizeTime(s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	parsed, err := time.Parse(timeLayout, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTime, *s)
	}
	v := parsed.Format(timeLayout)
	return &v, nil
}

// wireID translates the wire sentinel: nil and -1 both mean "unset".
func wireID(id *int) int {
	if id == nil {
		return -1
	}
	return *id
}
