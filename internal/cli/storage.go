package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	redisstore "github.com/aussiebroadwan/lmsconsole/internal/storage/redis"
	"github.com/aussiebroadwan/lmsconsole/internal/storage/sqlite"
	"github.com/aussiebroadwan/lmsconsole/pkg/lmsclient"
)

// closableStorage is a Storage holding a connection or file handle.
type closableStorage interface {
	lmsclient.Storage
	Close() error
}

type nopCloser struct {
	*lmsclient.MemoryStorage
}

func (nopCloser) Close() error { return nil }

// openStorage opens the session store selected by cfg.StateBackend.
func openStorage(ctx context.Context, cfg Config) (closableStorage, error) {
	switch cfg.StateBackend {
	case BackendMemory:
		return nopCloser{lmsclient.NewMemoryStorage()}, nil

	case BackendRedis:
		st, err := redisstore.Open(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return st, nil

	default:
		if err := os.MkdirAll(filepath.Dir(cfg.StateFile), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
		st, err := sqlite.Open(cfg.StateFile)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
}
