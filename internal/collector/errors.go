package collector

import (
	"errors"
	"fmt"
)

// FetchError reports that a collector request could not be completed: the
// connection failed, timed out, or the collector answered with a non-2xx
// status. StatusCode is zero for transport failures.
type FetchError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		msg := fmt.Sprintf("collector: failed to fetch %s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
		if e.Body != "" {
			msg += ": " + e.Body
		}
		return msg
	}
	return fmt.Sprintf("collector: failed to fetch %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DecodeError reports that a collector response did not match the expected
// JSON shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("collector: failed to parse JSON from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsFetch reports whether err is, or wraps, a FetchError.
func IsFetch(err error) bool {
	var e *FetchError
	return errors.As(err, &e)
}

// IsDecode reports whether err is, or wraps, a DecodeError.
func IsDecode(err error) bool {
	var e *DecodeError
	return errors.As(err, &e)
}
