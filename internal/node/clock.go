package node

import "time"

// Clock supplies the close time stamped on applied transactions.
// The node owns time; submitters never supply it.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
