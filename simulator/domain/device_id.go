package domain

import "fmt"

// DeviceID identifies the single simulated device of a running instance.
type DeviceID string

// NewDeviceID validates the given string and returns it as a DeviceID.
func NewDeviceID(id string) (DeviceID, error) {
	if id == "" {
		return "", fmt.Errorf("%w: device id cannot be empty", ErrInvalidConfig)
	}
	return DeviceID(id), nil
}
