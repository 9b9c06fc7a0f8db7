package io

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/alitto/pond"
	"go.uber.org/zap"
)

// OutputTo writes `files` under the directory `dest`, replacing existing files. Files are written
// concurrently; every failure is reported.
func OutputTo(files []File, dest string) error {
	pool := pond.New(4, len(files)+1, pond.Strategy(pond.Lazy()))
	defer pool.StopAndWait()

	var (
		mu   sync.Mutex
		errs error
	)
	group := pool.Group()
	for _, f := range files {
		f := f
		group.Submit(func() {
			if err := writeFile(f, dest); err != nil {
				mu.Lock()
				errs = errors.Join(errs, fmt.Errorf("could not write %s: %w", f.Path(), err))
				mu.Unlock()
			}
		})
	}
	group.Wait()
	return errs
}

func writeFile(f File, dest string) error {
	path := filepath.Join(dest, f.Path())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	n, err := f.WriteTo(file)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		zap.S().Named("io").Debugf("wrote %s (%d bytes)", path, n)
	}
	return err
}
