package events

import "errors"

var errIgnored = errors.New("event type not handled")

// dataError marks an event whose payload could not be decoded.
type dataError struct{ err error }

func (e dataError) Error() string { return e.err.Error() }
func (e dataError) Unwrap() error { return e.err }

func isDataError(err error) bool {
	var de dataError
	return errors.As(err, &de)
}
