package service

import "time"

const backoffCeiling = 30 * time.Second

// retrier is a per-tick retry budget for transient failures. Every remote
// call during a tick draws from the same budget, so a flapping dependency
// cannot stall a tick indefinitely.
type retrier struct {
	attempts int
	max      int
	base     time.Duration
	sleep    func(time.Duration)
}

// next consumes one retry attempt, sleeping the backoff for it. Returns
// false once the budget is exhausted.
func (r *retrier) next() bool {
	if r.attempts >= r.max {
		return false
	}
	ms := int64(r.base/time.Millisecond) << uint(r.attempts)
	if ceil := int64(backoffCeiling / time.Millisecond); ms > ceil {
		ms = ceil
	}
	r.sleep(time.Duration(ms) * time.Millisecond)
	r.attempts++
	return true
}
