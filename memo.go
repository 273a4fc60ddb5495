package wad

import "github.com/sasha-s/go-deadlock"

// memo computes a value once and hands out the cached result, error included.
// compute runs outside the mutex; concurrent callers wait on the in-flight call.
type memo[T any] struct {
	mutex deadlock.Mutex
	call  *memoCall[T]
}

type memoCall[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func (m *memo[T]) get(compute func() (T, error)) (T, error) {
	m.mutex.Lock()
	c := m.call
	if c != nil {
		m.mutex.Unlock()
		<-c.done
		return c.value, c.err
	}
	c = &memoCall[T]{done: make(chan struct{})}
	m.call = c
	m.mutex.Unlock()

	c.value, c.err = compute()
	close(c.done)
	return c.value, c.err
}

// reset drops the cached value so the next get recomputes it. A call already in flight
// still completes for its waiters.
func (m *memo[T]) reset() {
	m.mutex.Lock()
	m.call = nil
	m.mutex.Unlock()
}
