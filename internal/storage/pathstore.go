package storage

import (
	"context"
	"errors"

	"github.com/italolelis/spotdl_exporter/internal/logctx"
)

// PathStore remembers the last destination path across sessions. It is a
// best-effort cache: storage failures are logged and never surface to callers.
type PathStore struct {
	repo SettingsRepository
}

// NewPathStore creates a path store on top of repo. A nil repo behaves as
// unavailable storage.
func NewPathStore(repo SettingsRepository) *PathStore {
	return &PathStore{repo: repo}
}

// Load returns the persisted path, or "" when none is stored or storage fails.
func (s *PathStore) Load(ctx context.Context) string {
	logger := logctx.LoggerFromContext(ctx)

	if s.repo == nil {
		logger.Warn("path store unavailable, using empty path")

		return ""
	}

	path, err := s.repo.GetSetting(ctx, LastDownloadPathKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Error("failed to load last download path", "err", err)
		}

		return ""
	}

	return path
}

// Save persists path, including the empty string. Failures are logged only.
func (s *PathStore) Save(ctx context.Context, path string) {
	logger := logctx.LoggerFromContext(ctx)

	if s.repo == nil {
		logger.Warn("path store unavailable, last download path not saved")

		return
	}

	if err := s.repo.PutSetting(ctx, LastDownloadPathKey, path); err != nil {
		logger.Error("failed to save last download path", "err", err)

		return
	}

	logger.Debug("saved last download path", "path", path)
}
