package backend

import (
	"context"
	"fmt"

	"foodrescue/internal/log"
	"foodrescue/internal/sheets/memory"
	"foodrescue/internal/sheets/xlsx"
	"foodrescue/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case XLSXBackend:
		return f.createXLSXBackend(ctx, config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return &BackendResult{Store: memory.New()}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createXLSXBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store := xlsx.New(config.DataDir, f.logger)

	// Deployments that predate the workbooks keep entries.json in the same
	// directory. MigrateJSON is a no-op once the workbook exists. A broken
	// legacy file must not keep the service from starting.
	if _, err := store.MigrateJSON(ctx, config.DataDir); err != nil {
		fields := log.NewFields().WithOperation(log.OpMigrate).WithError(err)
		f.logger.WarnContext(ctx, "Legacy JSON migration skipped", fields.ToSlice()...)
	}

	f.logger.Info("Initialized xlsx backend", log.FieldFile, store.EntriesPath())
	return &BackendResult{Store: store}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Store: repo, Cleanup: repo.Close}, nil
}
