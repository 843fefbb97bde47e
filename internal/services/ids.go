package services

import (
	"strconv"
	"time"
)

// newID returns a time-derived identifier. Nanosecond ticks keep ids unique
// for requests landing in the same millisecond.
func newID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
