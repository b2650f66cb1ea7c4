package messages

import "errors"

// ErrEmptyLog is returned by Archive when there is nothing to upload.
var ErrEmptyLog = errors.New("message log is empty")
