package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	breaker := NewBreaker("kabum", 2, time.Minute, logrus.New())
	failing := func() (interface{}, error) { return nil, errors.New("blocked") }

	_, err := breaker.Execute(failing)
	assert.EqualError(t, err, "blocked")
	assert.False(t, breaker.IsOpen())

	_, err = breaker.Execute(failing)
	assert.EqualError(t, err, "blocked")
	assert.True(t, breaker.IsOpen())

	calls := 0
	_, err = breaker.Execute(func() (interface{}, error) {
		calls++
		return nil, nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Zero(t, calls)
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	breaker := NewBreaker("google", 2, time.Minute, logrus.New())

	breaker.Execute(func() (interface{}, error) { return nil, errors.New("boom") })
	breaker.Execute(func() (interface{}, error) { return "ok", nil })
	breaker.Execute(func() (interface{}, error) { return nil, errors.New("boom") })

	assert.False(t, breaker.IsOpen())
}

func TestBreaker_ZeroFailuresNeverOpens(t *testing.T) {
	breaker := NewBreaker("mercadolivre", 0, time.Minute, logrus.New())

	for i := 0; i < 10; i++ {
		breaker.Execute(func() (interface{}, error) { return nil, errors.New("boom") })
	}

	assert.False(t, breaker.IsOpen())
}

func TestBreaker_CanceledCallsAreNotFailures(t *testing.T) {
	breaker := NewBreaker("kabum", 2, time.Minute, logrus.New())

	for i := 0; i < 5; i++ {
		_, err := breaker.Execute(func() (interface{}, error) {
			return nil, fmt.Errorf("request failed: %w", context.Canceled)
		})
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.False(t, breaker.IsOpen())

	_, err := breaker.Execute(func() (interface{}, error) { return nil, context.DeadlineExceeded })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, err = breaker.Execute(func() (interface{}, error) { return nil, context.DeadlineExceeded })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, breaker.IsOpen())
}
