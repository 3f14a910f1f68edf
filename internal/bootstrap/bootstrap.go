// Package bootstrap prepares the data directory and opens a migrated store.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"embassy-inventory/pkg/database"
	"embassy-inventory/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Paths struct {
	DataDir   string
	DBPath    string
	SeedPath  string
	ExportDir string
}

// StoreOrigin says how the live store file came to exist.
type StoreOrigin string

const (
	OriginExisting StoreOrigin = "existing"
	OriginSeed     StoreOrigin = "seed"
	OriginEmpty    StoreOrigin = "empty"
)

// EnsureDirs creates the data and export directories.
func EnsureDirs(p Paths) error {
	for _, dir := range []string{p.DataDir, p.ExportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// EnsureStoreFile leaves an existing store alone. Otherwise it copies the
// seed template, or creates an empty file when there is no seed.
func EnsureStoreFile(p Paths) (StoreOrigin, error) {
	if _, err := os.Stat(p.DBPath); err == nil {
		return OriginExisting, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat store: %w", err)
	}

	if p.SeedPath != "" {
		seed, err := os.Open(p.SeedPath)
		switch {
		case err == nil:
			defer seed.Close()
			if err := copyInto(p.DBPath, seed); err != nil {
				return "", fmt.Errorf("copy seed %s: %w", p.SeedPath, err)
			}
			return OriginSeed, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("open seed: %w", err)
		}
	}

	f, err := os.OpenFile(p.DBPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create store: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return OriginEmpty, nil
}

func copyInto(target string, src io.Reader) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".seed-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = io.Copy(tmp, src); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

// Open prepares the directories and store file, connects and applies migrations.
func Open(ctx context.Context, p Paths, log *zap.Logger) (*gorm.DB, error) {
	if err := EnsureDirs(p); err != nil {
		return nil, err
	}
	origin, err := EnsureStoreFile(p)
	if err != nil {
		return nil, err
	}
	if origin != OriginExisting {
		log.Info("store created", zap.String("path", p.DBPath), zap.String("origin", string(origin)))
	}

	db, err := database.Connect(p.DBPath, logger.StdLog(logger.Named(log, "gorm")))
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db, logger.Named(log, "migrate")); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return db, nil
}
