// Package domain holds the sensor model, the reporting contract and the
// simulation loop of the household sensor simulator.
package domain

import "time"

// Sensor domains and per-tick probabilities.
const (
	MinTemperature = 18.0
	MaxTemperature = 28.0
	MinHumidity    = 30.0
	MaxHumidity    = 70.0

	temperatureStep = 0.5
	humidityStep    = 2.0
	lightNoise      = 10.0

	DaylightBaseline = 80.0
	NightBaseline    = 20.0
	dayStartHour     = 6
	dayEndHour       = 18

	MotionProbability     = 0.10
	DoorClosedProbability = 0.95
	SmokeProbability      = 0.001
)

// RandomSource yields pseudo-random numbers in [0, 1).
// *math/rand/v2.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// SensorState holds the current value of every simulated sensor.
type SensorState struct {
	Temperature float64
	Humidity    float64
	Motion      bool
	LightLevel  float64
	// DoorClosed is the door contact: true while the door is shut.
	DoorClosed bool
	SmokeAlarm bool
}

// NewSensorState returns the state every simulated device boots with.
func NewSensorState() *SensorState {
	return &SensorState{
		Temperature: 22.0,
		Humidity:    45.0,
		Motion:      false,
		LightLevel:  75.0,
		DoorClosed:  true,
		SmokeAlarm:  false,
	}
}

// Update advances every sensor by one tick. Random numbers are drawn from rnd
// in field order, so a fixed source replays the same sequence of states.
func (s *SensorState) Update(now time.Time, rnd RandomSource) {
	s.Temperature = clamp(s.Temperature+uniform(rnd, -temperatureStep, temperatureStep), MinTemperature, MaxTemperature)
	s.Humidity = clamp(s.Humidity+uniform(rnd, -humidityStep, humidityStep), MinHumidity, MaxHumidity)
	s.Motion = rnd.Float64() < MotionProbability
	s.LightLevel = DiurnalBaseline(now.Hour()) + uniform(rnd, -lightNoise, lightNoise)
	s.DoorClosed = rnd.Float64() < DoorClosedProbability
	s.SmokeAlarm = rnd.Float64() < SmokeProbability
}

// DiurnalBaseline is the expected light level for an hour of the day.
// Hours 6 through 18 inclusive are daytime.
func DiurnalBaseline(hour int) float64 {
	if hour >= dayStartHour && hour <= dayEndHour {
		return DaylightBaseline
	}
	return NightBaseline
}

func uniform(rnd RandomSource, lo, hi float64) float64 {
	return lo + (hi-lo)*rnd.Float64()
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
