package domain

import (
	"fmt"
	"time"
)

// DefaultTickInterval is the simulated time step between two sensor updates.
const DefaultTickInterval = 8 * time.Second

// TickInterval is the period of the simulation loop.
type TickInterval time.Duration

// NewTickInterval returns the interval as a TickInterval.
// It returns an error if the interval is not positive.
func NewTickInterval(interval time.Duration) (TickInterval, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("%w: tick interval must be greater than 0, got %s", ErrInvalidConfig, interval)
	}
	return TickInterval(interval), nil
}

// SendTimeout bounds a single outbound telemetry call.
type SendTimeout time.Duration

// DefaultSendTimeout is the bound applied to every outbound send.
const DefaultSendTimeout = 5 * time.Second

// NewSendTimeout returns the timeout as a SendTimeout.
func NewSendTimeout(timeout time.Duration) (SendTimeout, error) {
	if timeout <= 0 {
		return 0, fmt.Errorf("%w: send timeout must be greater than 0, got %s", ErrInvalidConfig, timeout)
	}
	return SendTimeout(timeout), nil
}

func (t TickInterval) String() string {
	return time.Duration(t).String()
}
