package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	simDomain "github.com/samoilenko/home_sensors/simulator/domain"
)

// HTTPReporter posts sensor readings as JSON to the collector.
type HTTPReporter struct {
	client    *http.Client
	url       string
	timeout   time.Duration
	deviceID  simDomain.DeviceID
	userAgent string
	sequence  *SequenceGenerator
	logger    simDomain.Logger
}

// Send transmits the state once. Non-200 answers are reported as rejected,
// transport errors and timeouts as unreachable.
func (r *HTTPReporter) Send(ctx context.Context, state simDomain.SensorState) simDomain.SendResult {
	start := time.Now()

	body, err := json.Marshal(simDomain.NewTelemetryPayload(state))
	if err != nil {
		// NaN or infinite readings
		return simDomain.Unencodable(start, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return simDomain.Unreachable(start, time.Since(start), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("X-Device-ID", string(r.deviceID))
	req.Header.Set("X-Sequence", strconv.FormatUint(r.sequence.Next(), 10))

	resp, err := r.client.Do(req)
	if err != nil {
		return simDomain.Unreachable(start, time.Since(start), err)
	}
	defer func() {
		// drain so the keep-alive connection can be reused on the next tick
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		if closeErr := resp.Body.Close(); closeErr != nil {
			r.logger.Error("error closing response body: %s", closeErr.Error())
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return simDomain.Rejected(start, time.Since(start), resp.StatusCode)
	}

	return simDomain.Success(start, time.Since(start))
}

// NewHTTPReporter creates a reporter posting to the collector's update endpoint.
func NewHTTPReporter(
	address simDomain.CollectorAddress,
	timeout simDomain.SendTimeout,
	deviceID simDomain.DeviceID,
	logger simDomain.Logger,
) *HTTPReporter {
	return &HTTPReporter{
		client:    &http.Client{Timeout: time.Duration(timeout)},
		url:       address.UpdateURL(),
		timeout:   time.Duration(timeout),
		deviceID:  deviceID,
		userAgent: UserAgent(),
		sequence:  &SequenceGenerator{},
		logger:    logger,
	}
}
