package fetch

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// linearBackOff implements backoff.BackOff with a base + attempt-index*step
// schedule.
type linearBackOff struct {
	base    time.Duration
	step    time.Duration
	attempt int
}

var _ backoff.BackOff = (*linearBackOff)(nil)

func (l *linearBackOff) NextBackOff() time.Duration {
	d := l.base + time.Duration(l.attempt)*l.step
	l.attempt++
	return d
}

func (l *linearBackOff) Reset() {
	l.attempt = 0
}
