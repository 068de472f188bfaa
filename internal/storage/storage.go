package storage

import (
	"context"
	"errors"
)

// LastDownloadPathKey is the settings key holding the most recently chosen destination.
const LastDownloadPathKey = "spotdlLastDownloadPath"

// ErrNotFound is returned when a setting has never been written.
var ErrNotFound = errors.New("setting not found")

// SettingsReadRepository reads persisted settings.
type SettingsReadRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
}

// SettingsWriteRepository writes persisted settings.
type SettingsWriteRepository interface {
	PutSetting(ctx context.Context, key, value string) error
}

// SettingsRepository is a durable string key/value store.
type SettingsRepository interface {
	SettingsReadRepository
	SettingsWriteRepository
}
