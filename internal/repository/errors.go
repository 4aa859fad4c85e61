package repository

import "errors"

// ErrStaleState indicates a conditional update matched no rows because the
// entity left the expected state between the read and the write.
var ErrStaleState = errors.New("entity state changed concurrently")
