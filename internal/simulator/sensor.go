// Package simulator emulates the sensors of a smart tent.
package simulator

import (
	"math"
	"math/rand"
)

// Sensor produces values drifting around a mean.
type Sensor struct {
	Name string

	mean              float64
	standardDeviation float64
	current           float64
	rng               *rand.Rand
}

// NewSensor creates a sensor starting near mean.
func NewSensor(name string, mean, standardDeviation float64, rng *rand.Rand) *Sensor {
	return &Sensor{
		Name:              name,
		mean:              mean,
		standardDeviation: math.Abs(standardDeviation),
		current:           mean - rng.Float64(),
		rng:               rng,
	}
}

// Next moves the value by a small random step and returns it, rounded to one decimal.
func (s *Sensor) Next() float64 {
	step := s.rng.Float64() * s.standardDeviation / 10
	s.current += step * s.direction()
	return math.Round(s.current*10) / 10
}

// direction favours moving back towards the mean the further the value has drifted.
func (s *Sensor) direction() float64 {
	var distance, keep, turn float64
	if s.current > s.mean {
		distance = s.current - s.mean
		keep, turn = 1, -1
	} else {
		distance = s.mean - s.current
		keep, turn = -1, 1
	}
	chance := s.standardDeviation/2 - distance/50
	if s.standardDeviation*s.rng.Float64() < chance {
		return keep
	}
	return turn
}
