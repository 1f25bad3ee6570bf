package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/piresc/ukdrive/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
)

var errDownstream = errors.New("downstream failed")

func failing(context.Context) error { return errDownstream }
func passing(context.Context) error { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	// Arrange
	mock := clock.NewMock(time.Unix(0, 0))
	cfg := DefaultConfig("api")
	cfg.FailureThreshold = 3
	cb := New(cfg, mock)

	// Act
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(context.Background(), failing), errDownstream)
	}

	// Assert
	assert.Equal(t, StateOpen, cb.State())
	called := false
	err := cb.Execute(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitBreakerOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	mock := clock.NewMock(time.Unix(0, 0))
	cfg := DefaultConfig("api")
	cfg.FailureThreshold = 1
	cb := New(cfg, mock)
	var transitions []State
	cb.config.OnStateChange = func(_ string, _ State, to State) { transitions = append(transitions, to) }

	_ = cb.Execute(context.Background(), failing)
	mock.Add(cfg.Timeout)

	assert.NoError(t, cb.Execute(context.Background(), passing))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, []State{StateOpen, StateHalfOpen, StateClosed}, transitions)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	mock := clock.NewMock(time.Unix(0, 0))
	cfg := DefaultConfig("api")
	cfg.FailureThreshold = 1
	cb := New(cfg, mock)

	_ = cb.Execute(context.Background(), failing)
	mock.Add(cfg.Timeout)
	_ = cb.Execute(context.Background(), failing)

	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_SuccessResetsConsecutiveFailures(t *testing.T) {
	cb := New(DefaultConfig("api"), clock.NewMock(time.Unix(0, 0)))

	for i := 0; i < 4; i++ {
		_ = cb.Execute(context.Background(), failing)
	}
	_ = cb.Execute(context.Background(), passing)
	_ = cb.Execute(context.Background(), failing)

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(1), cb.Counts().ConsecutiveFailures)
}

func TestManager_OneBreakerPerName(t *testing.T) {
	m := NewManager(clock.NewMock(time.Unix(0, 0)))

	_ = m.Execute(context.Background(), "a:80", failing)
	_ = m.Execute(context.Background(), "b:80", passing)

	stats := m.GetStats()
	assert.Len(t, stats, 2)
	assert.Equal(t, uint32(1), stats["a:80"].TotalFailures)
	assert.Equal(t, "CLOSED", stats["b:80"].State)
	assert.Same(t, m.GetOrCreate("a:80"), m.GetOrCreate("a:80"))
}
