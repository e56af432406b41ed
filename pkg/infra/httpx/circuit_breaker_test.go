package httpx

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func newBreaker(name string, timeout time.Duration, maxFailures uint32) CircuitBreaker {
	logger, _ := test.NewNullLogger()
	return NewCircuitBreaker(BreakerConfig{Name: name, Timeout: timeout, MaxFailures: maxFailures}, logger)
}

func TestNewCircuitBreaker(t *testing.T) {
	tests := []struct {
		name        string
		breakerName string
		timeout     time.Duration
		maxFailures uint32
	}{
		{name: "valid breaker", breakerName: "openai", timeout: 30 * time.Second, maxFailures: 3},
		{name: "zero timeout", breakerName: "zero-timeout", timeout: 0, maxFailures: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breaker := newBreaker(tt.breakerName, tt.timeout, tt.maxFailures)
			wrapper, ok := breaker.(*circuitBreakerWrapper)
			assert.True(t, ok)
			assert.Equal(t, tt.breakerName, wrapper.breaker.Name())
			assert.Equal(t, "closed", breaker.State())
		})
	}
}

func TestCircuitBreaker_Execute(t *testing.T) {
	breaker := newBreaker("generator", 30*time.Second, 3)

	assert.NoError(t, breaker.Execute(func() error { return nil }))

	cause := errors.New("upstream 503")
	err := breaker.Execute(func() error { return cause })
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "generator")
}

func TestCircuitBreaker_RecoversPanics(t *testing.T) {
	breaker := newBreaker("panicky", 30*time.Second, 3)
	err := breaker.Execute(func() error {
		panic("bad response")
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "panic recovered: bad response")
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	logger, hook := test.NewNullLogger()
	breaker := NewCircuitBreaker(BreakerConfig{Name: "flaky", Timeout: 50 * time.Millisecond, MaxFailures: 2}, logger)

	for i := 0; i < 2; i++ {
		assert.Error(t, breaker.Execute(func() error { return errors.New("fail") }))
	}
	assert.Equal(t, "open", breaker.State())

	called := false
	err := breaker.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, called)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	time.Sleep(100 * time.Millisecond)
	assert.NoError(t, breaker.Execute(func() error { return nil }))
	assert.Equal(t, "closed", breaker.State())
}

func TestCircuitBreaker_ConcurrentAccess(t *testing.T) {
	breaker := newBreaker("concurrent", 30*time.Second, 100)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_ = breaker.Execute(func() error {
				if id%2 == 0 {
					return nil
				}
				return errors.New("failure")
			})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, "closed", breaker.State())
}
