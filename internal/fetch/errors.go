package fetch

import "fmt"

// FetchError reports a failed request along with the URL it targeted.
type FetchError struct {
	URL       string
	Operation string
	Status    int // HTTP status, 0 when no response was received
	Err       error
	Hint      string
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s %s failed: %s", e.Operation, e.URL, e.Err)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
