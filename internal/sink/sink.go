// Package sink forwards accepted readings to systems outside the process.
// Sinks are best effort: a failing sink never rejects a submission.
package sink

import (
	"context"

	"SmartTent.api/internal/models"
)

// Sink receives every reading accepted by the store.
type Sink interface {
	Name() string
	Publish(ctx context.Context, t models.Telemetry) error
}
