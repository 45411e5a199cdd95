package httpx

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func breakerState(t *testing.T, cb CircuitBreaker) gobreaker.State {
	t.Helper()
	wrapper, ok := cb.(*circuitBreakerWrapper)
	require.True(t, ok)
	return wrapper.breaker.State()
}

func TestNewCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker("artifact-store", 30*time.Second, 3)
	require.IsType(t, &circuitBreakerWrapper{}, cb)
	assert.Equal(t, "artifact-store", cb.(*circuitBreakerWrapper).breaker.Name())
	assert.Equal(t, gobreaker.StateClosed, breakerState(t, cb))
}

func TestCircuitBreaker_Execute(t *testing.T) {
	cb := NewCircuitBreaker("exec", 30*time.Second, 3)
	assert.NoError(t, cb.Execute(func() error { return nil }))

	cause := errors.New("bucket unreachable")
	err := cb.Execute(func() error { return cause })
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "breaker (exec)")
}

func TestCircuitBreaker_RecoversPanics(t *testing.T) {
	for _, v := range []interface{}{"boom", errors.New("boom"), 42} {
		cb := NewCircuitBreaker("panics", 30*time.Second, 3)
		err := cb.Execute(func() error { panic(v) })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panic recovered:")
		assert.Contains(t, err.Error(), "panics")
	}
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker("trip", 50*time.Millisecond, 2)
	fail := func() error { return errors.New("failure") }

	assert.Error(t, cb.Execute(fail))
	assert.Equal(t, gobreaker.StateClosed, breakerState(t, cb))
	assert.Error(t, cb.Execute(fail))
	assert.Equal(t, gobreaker.StateOpen, breakerState(t, cb))

	err := cb.Execute(func() error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, gobreaker.StateHalfOpen, breakerState(t, cb))
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.NotEqual(t, gobreaker.StateOpen, breakerState(t, cb))
}

func TestCircuitBreaker_SuccessFilter(t *testing.T) {
	notFound := errors.New("not found")
	cb := NewCircuitBreaker("filter", 30*time.Second, 1, WithSuccessFilter(func(err error) bool {
		return errors.Is(err, notFound)
	}))

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return notFound })
		assert.ErrorIs(t, err, notFound)
	}
	assert.Equal(t, gobreaker.StateClosed, breakerState(t, cb))

	assert.Error(t, cb.Execute(func() error { return errors.New("timeout") }))
	assert.Equal(t, gobreaker.StateOpen, breakerState(t, cb))
}

func TestCircuitBreaker_ConcurrentAccess(t *testing.T) {
	cb := NewCircuitBreaker("concurrent", 30*time.Second, 5)
	done := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		go func(id int) {
			defer func() { done <- struct{}{} }()
			err := cb.Execute(func() error {
				if id%2 == 0 {
					return nil
				}
				return errors.New("failure")
			})
			if err != nil {
				assert.Contains(t, err.Error(), "concurrent")
			}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestCircuitBreaker_StateObserver(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker("observed", 30*time.Second, 1, WithStateObserver(func(name, from, to string) {
		transitions = append(transitions, name+":"+from+"->"+to)
	}))
	assert.Equal(t, "closed", cb.State())

	err := cb.Execute(func() error { return errors.New("s3 down") })
	require.Error(t, err)
	assert.False(t, IsOpen(err))
	assert.Equal(t, "open", cb.State())
	assert.Equal(t, []string{"observed:closed->open"}, transitions)

	err = cb.Execute(func() error { return nil })
	assert.True(t, IsOpen(err))
}
