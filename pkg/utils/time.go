package utils

import "time"

// Now is the wall clock used for entity timestamps. Tests may replace it.
var Now = func() time.Time {
	return time.Now().UTC()
}
