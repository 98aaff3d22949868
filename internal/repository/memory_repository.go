package repository

import (
	"sync"

	"SmartTent.api/internal/models"
)

// Repository keeps the latest reading per device.
type Repository interface {
	Save(deviceID string, reading models.Reading)
	Get(deviceID string) (models.Reading, bool)
	All() models.DeviceReadings
	Count() int
}

// MemoryRepository is a Repository held in process memory. Device ids are
// listed in the order they were first saved.
type MemoryRepository struct {
	mu       sync.RWMutex
	order    []string
	readings map[string]models.Reading
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		readings: make(map[string]models.Reading),
	}
}

// Save replaces the reading stored for deviceID.
func (r *MemoryRepository) Save(deviceID string, reading models.Reading) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.readings[deviceID]; !ok {
		r.order = append(r.order, deviceID)
	}
	r.readings[deviceID] = reading
}

// Get returns the reading stored for deviceID.
func (r *MemoryRepository) Get(deviceID string) (models.Reading, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reading, ok := r.readings[deviceID]
	return reading, ok
}

// All returns a snapshot of every stored reading.
func (r *MemoryRepository) All() models.DeviceReadings {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(models.DeviceReadings, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, models.Telemetry{DeviceID: id, Reading: r.readings[id]})
	}
	return out
}

// Count returns the number of distinct devices stored.
func (r *MemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.readings)
}
