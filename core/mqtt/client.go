package mqtt

import (
	"context"

	"github.com/kilianp07/pca-scheduler/core/model"
)

// Publisher shares generated schedule sets with other systems, such as a
// wall display subscribed to the broker.
type Publisher interface {
	// Publish sends the set and returns once the broker accepted it.
	Publish(ctx context.Context, set model.ScheduleSet) error
	// Close disconnects from the broker.
	Close()
}
