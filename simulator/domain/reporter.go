package domain

import (
	"context"
	"fmt"
	"time"
)

// Reporter defines the contract for transmitting sensor state to a collector.
type Reporter interface {
	// Send transmits one reading. Every outcome, including transport
	// failures, is returned as a SendResult; Send never panics on I/O errors
	// and performs no retries.
	Send(ctx context.Context, state SensorState) SendResult
}

// FailureReason classifies an unsuccessful send.
type FailureReason string

const (
	// ReasonRejected means the collector answered with a non-200 status.
	ReasonRejected FailureReason = "rejected"
	// ReasonUnreachable means no answer was received: connection refused,
	// DNS failure or timeout.
	ReasonUnreachable FailureReason = "unreachable"
	// ReasonUnencodable means the state could not be encoded, so nothing
	// was sent.
	ReasonUnencodable FailureReason = "unencodable"
)

// SendResult is the outcome of a single Reporter.Send call.
type SendResult struct {
	SentAt  time.Time
	Latency time.Duration
	// Reason is empty on success.
	Reason FailureReason
	// Code is the HTTP status returned by the collector, if any.
	Code int
	// Detail carries the error text for unreachable and unencodable failures.
	Detail string
}

// Success reports a delivered payload.
func Success(sentAt time.Time, latency time.Duration) SendResult {
	return SendResult{SentAt: sentAt, Latency: latency, Code: 200}
}

// Rejected reports a payload the collector answered with a non-200 status.
func Rejected(sentAt time.Time, latency time.Duration, code int) SendResult {
	return SendResult{SentAt: sentAt, Latency: latency, Reason: ReasonRejected, Code: code}
}

// Unreachable reports a payload that never reached the collector.
func Unreachable(sentAt time.Time, latency time.Duration, err error) SendResult {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	return SendResult{SentAt: sentAt, Latency: latency, Reason: ReasonUnreachable, Detail: detail}
}

// Unencodable reports a state that could not be turned into a payload.
func Unencodable(sentAt time.Time, err error) SendResult {
	return SendResult{SentAt: sentAt, Reason: ReasonUnencodable, Detail: err.Error()}
}

// OK is true when the payload was delivered.
func (r SendResult) OK() bool {
	return r.Reason == ""
}

// String describes the result in a single line.
func (r SendResult) String() string {
	switch r.Reason {
	case "":
		return fmt.Sprintf("delivered in %s", r.Latency.Round(time.Millisecond))
	case ReasonRejected:
		return fmt.Sprintf("rejected with status %d", r.Code)
	case ReasonUnencodable:
		return fmt.Sprintf("payload not encodable: %s", r.Detail)
	default:
		return fmt.Sprintf("unreachable: %s", r.Detail)
	}
}

// TelemetryPayload is the body posted to the collector. Field names are part
// of the collector contract and must not change.
type TelemetryPayload struct {
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Motion        bool    `json:"motion"`
	LightLevel    float64 `json:"light_level"`
	DoorSensor    bool    `json:"door_sensor"`
	SmokeDetector bool    `json:"smoke_detector"`
}

// NewTelemetryPayload maps a sensor state to its wire representation.
func NewTelemetryPayload(state SensorState) TelemetryPayload {
	return TelemetryPayload{
		Temperature:   state.Temperature,
		Humidity:      state.Humidity,
		Motion:        state.Motion,
		LightLevel:    state.LightLevel,
		DoorSensor:    state.DoorClosed,
		SmokeDetector: state.SmokeAlarm,
	}
}

// MirroredReporter sends every reading to a primary reporter and, at the
// same time, to a list of mirrors. Only the primary decides the result. The
// primary and all mirrors share one send timeout.
type MirroredReporter struct {
	primary Reporter
	mirrors []Reporter
	timeout time.Duration
	logger  Logger
}

type mirrorResult struct {
	index  int
	result SendResult
}

// Send implements Reporter. It returns once the primary and every mirror
// are done, or when the shared timeout expires, whichever comes first.
func (m *MirroredReporter) Send(ctx context.Context, state SensorState) SendResult {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	results := make(chan mirrorResult, len(m.mirrors))
	for i, mirror := range m.mirrors {
		go func() {
			results <- mirrorResult{index: i, result: mirror.Send(ctx, state)}
		}()
	}

	result := m.primary.Send(ctx, state)

	for pending := len(m.mirrors); pending > 0; pending-- {
		select {
		case r := <-results:
			if !r.result.OK() {
				m.logger.Error("mirror %d: %s", r.index, r.result.String())
			}
		case <-ctx.Done():
			m.logger.Error("%d mirror(s) still sending after %s, not waiting", pending, m.timeout)
			return result
		}
	}
	return result
}

// WithMirrors wraps primary so that each reading is also sent to mirrors,
// all bounded by timeout. Without mirrors the primary is returned unchanged.
//
// Example usage:
//
//	reporter := WithMirrors(httpReporter, config.SendTimeout, logger, mqttPublisher)
//	result := reporter.Send(ctx, *state)
func WithMirrors(primary Reporter, timeout SendTimeout, logger Logger, mirrors ...Reporter) Reporter {
	if len(mirrors) == 0 {
		return primary
	}
	return &MirroredReporter{primary: primary, mirrors: mirrors, timeout: time.Duration(timeout), logger: logger}
}
