package sqlite

import (
	"context"
	"database/sql"

	"github.com/italolelis/spotdl_exporter/internal/telemetry"
)

// InstrumentedSettingsRepository wraps SettingsRepository with telemetry.
type InstrumentedSettingsRepository struct {
	repo      *SettingsRepository
	telemetry *telemetry.Telemetry
}

// NewInstrumentedSettingsRepository creates a new instrumented settings repository.
func NewInstrumentedSettingsRepository(dbConn *sql.DB, tel *telemetry.Telemetry) *InstrumentedSettingsRepository {
	return &InstrumentedSettingsRepository{
		repo:      NewSettingsRepository(dbConn),
		telemetry: tel,
	}
}

// GetSetting retrieves a setting with telemetry.
func (r *InstrumentedSettingsRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var result string

	err := r.telemetry.InstrumentDBOperation(ctx, "get_setting", func(ctx context.Context) error {
		var err error

		result, err = r.repo.GetSetting(ctx, key)

		return err
	})

	return result, err
}

// PutSetting writes a setting with telemetry.
func (r *InstrumentedSettingsRepository) PutSetting(ctx context.Context, key, value string) error {
	return r.telemetry.InstrumentDBOperation(ctx, "put_setting", func(ctx context.Context) error {
		return r.repo.PutSetting(ctx, key, value)
	})
}
