package simulator

import (
	"math"
	"math/rand"
)

// Payload is the body a tent posts to /api/data.
type Payload struct {
	DeviceID string  `json:"device_id"`
	Sensors  Sensors `json:"sensors"`
	System   System  `json:"system"`
}

type Sensors struct {
	Temperature    float64 `json:"temperature"`
	Humidity       float64 `json:"humidity"`
	GasLevel       float64 `json:"gas_level"`
	MotionDetected bool    `json:"motion_detected"`
	TemperatureExt float64 `json:"temperature_ext"`
	HumidityExt    float64 `json:"humidity_ext"`
	WindSpeed      float64 `json:"wind_speed"`
	MotionExterior bool    `json:"motion_exterior"`
}

type System struct {
	SignalStrength float64 `json:"signal_strength"`
	BatteryLevel   float64 `json:"battery_level"`
}

// Tent is a simulated device.
type Tent struct {
	DeviceID string

	temperature    *Sensor
	humidity       *Sensor
	gas            *Sensor
	temperatureExt *Sensor
	humidityExt    *Sensor
	wind           *Sensor
	signal         *Sensor
	battery        float64
	rng            *rand.Rand
}

// NewTent creates a simulated tent reporting as deviceID.
func NewTent(deviceID string, seed int64) *Tent {
	rng := rand.New(rand.NewSource(seed))
	return &Tent{
		DeviceID:       deviceID,
		temperature:    NewSensor("temperature", 22, 3, rng),
		humidity:       NewSensor("humidity", 55, 8, rng),
		gas:            NewSensor("gas_level", 200, 60, rng),
		temperatureExt: NewSensor("temperature_ext", 15, 5, rng),
		humidityExt:    NewSensor("humidity_ext", 70, 10, rng),
		wind:           NewSensor("wind_speed", 12, 6, rng),
		signal:         NewSensor("signal_strength", 75, 10, rng),
		battery:        100,
		rng:            rng,
	}
}

// Next samples every sensor once. The battery drains slowly and never goes below zero.
func (t *Tent) Next() Payload {
	t.battery = math.Max(0, t.battery-0.1*t.rng.Float64())
	return Payload{
		DeviceID: t.DeviceID,
		Sensors: Sensors{
			Temperature:    t.temperature.Next(),
			Humidity:       clampPercent(t.humidity.Next()),
			GasLevel:       math.Max(0, t.gas.Next()),
			MotionDetected: t.rng.Float64() < 0.1,
			TemperatureExt: t.temperatureExt.Next(),
			HumidityExt:    clampPercent(t.humidityExt.Next()),
			WindSpeed:      math.Max(0, t.wind.Next()),
			MotionExterior: t.rng.Float64() < 0.05,
		},
		System: System{
			SignalStrength: clampPercent(t.signal.Next()),
			BatteryLevel:   math.Round(t.battery*10) / 10,
		},
	}
}

func clampPercent(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
