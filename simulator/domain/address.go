package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// UpdatePath is the collector route receiving sensor updates.
const UpdatePath = "/api/sensors/update"

// CollectorAddress is the base URL of the telemetry collector, without a trailing slash.
type CollectorAddress string

// NewCollectorAddress validates the given string and returns it as a CollectorAddress.
// Only absolute http and https URLs are accepted.
func NewCollectorAddress(address string) (CollectorAddress, error) {
	if address == "" {
		return "", fmt.Errorf("%w: collector address cannot be empty", ErrInvalidConfig)
	}

	u, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("%w: collector address: %s", ErrInvalidConfig, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: collector address must use http or https, got %q", ErrInvalidConfig, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: collector address has no host: %s", ErrInvalidConfig, address)
	}

	return CollectorAddress(strings.TrimRight(address, "/")), nil
}

// UpdateURL returns the full endpoint sensor updates are posted to.
func (a CollectorAddress) UpdateURL() string {
	return string(a) + UpdatePath
}
