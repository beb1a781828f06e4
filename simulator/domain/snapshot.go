package domain

import "time"

// Reading is one labelled sensor value ready for display.
type Reading struct {
	Label string
	// Value is either Number formatted with Unit, or Text when set.
	Number float64
	Unit   string
	Text   string
	// Alert marks a reading that needs attention.
	Alert bool
}

// Snapshot is a human-readable view of a SensorState at a point in time.
type Snapshot struct {
	Tick      uint64
	TakenAt   time.Time
	Readings  []Reading
	Emergency bool
}

// NewSnapshot formats state without modifying it.
func NewSnapshot(tick uint64, takenAt time.Time, state SensorState) Snapshot {
	return Snapshot{
		Tick:    tick,
		TakenAt: takenAt,
		Readings: []Reading{
			{Label: "Temperature", Number: state.Temperature, Unit: "°C"},
			{Label: "Humidity", Number: state.Humidity, Unit: "%"},
			{Label: "Motion", Text: pick(state.Motion, "Detected", "Clear")},
			{Label: "Light Level", Number: state.LightLevel, Unit: " lux"},
			{Label: "Door", Text: pick(state.DoorClosed, "Closed", "Open")},
			{Label: "Smoke", Text: pick(state.SmokeAlarm, "ALERT!", "Clear"), Alert: state.SmokeAlarm},
		},
		Emergency: state.SmokeAlarm,
	}
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
