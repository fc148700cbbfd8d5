package secrets

import (
	"context"
	"fmt"
	"time"
)

// WithTimeout bounds every call to m by d. A call that exceeds d fails with a
// transport error wrapping context.DeadlineExceeded; the underlying call is
// abandoned, not cancelled. d <= 0 returns m unchanged.
func WithTimeout(m Mechanism, d time.Duration) Mechanism {
	if d <= 0 {
		return m
	}
	return &timeoutMechanism{next: m, timeout: d}
}

type timeoutMechanism struct {
	next    Mechanism
	timeout time.Duration
}

func (t *timeoutMechanism) Name() string { return t.next.Name() }

func (t *timeoutMechanism) Get(service, key string) (string, error) {
	var value string
	err := t.call("get", func() error {
		var err error
		value, err = t.next.Get(service, key)
		return err
	})
	if err != nil {
		return "", err
	}
	return value, nil
}

func (t *timeoutMechanism) Set(service, key, value string) error {
	return t.call("set", func() error {
		return t.next.Set(service, key, value)
	})
}

func (t *timeoutMechanism) Delete(service, key string) error {
	return t.call("delete", func() error {
		return t.next.Delete(service, key)
	})
}

func (t *timeoutMechanism) call(op string, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- mechErr(t.Name(), op, FailureTransport, fmt.Errorf("panic: %v", r))
			}
		}()
		done <- fn()
	}()

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return mechErr(t.Name(), op, FailureTransport,
			fmt.Errorf("no answer after %s: %w", t.timeout, context.DeadlineExceeded))
	}
}
