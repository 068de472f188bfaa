package bridge

import (
	"context"

	"github.com/italolelis/spotdl_exporter/internal/telemetry"
)

// InstrumentedExecutor wraps an Executor with telemetry.
type InstrumentedExecutor struct {
	executor  Executor
	telemetry *telemetry.Telemetry
}

// NewInstrumentedExecutor creates a new instrumented executor.
func NewInstrumentedExecutor(executor Executor, tel *telemetry.Telemetry) *InstrumentedExecutor {
	return &InstrumentedExecutor{
		executor:  executor,
		telemetry: tel,
	}
}

// Execute runs a command with telemetry.
func (e *InstrumentedExecutor) Execute(ctx context.Context, command string) (*Response, error) {
	var result *Response

	err := e.telemetry.InstrumentClientOperation(ctx, "executor", "execute", func(ctx context.Context) error {
		var err error

		result, err = e.executor.Execute(ctx, command)

		return err
	})

	return result, err
}
