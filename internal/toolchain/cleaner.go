package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// PathCleaner removes database directories the program leaves behind.
// Removal is best-effort and not transactional.
type PathCleaner struct {
	workDir string
	paths   []string
}

func NewPathCleaner(workDir string, paths ...string) *PathCleaner {
	return &PathCleaner{workDir: workDir, paths: paths}
}

// Clean removes every configured path, continuing past failures, and
// returns the joined errors. A path that is already gone is not an error.
func (c *PathCleaner) Clean(ctx context.Context) error {
	var errs []error
	for _, p := range c.paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := p
		if !filepath.IsAbs(target) {
			target = filepath.Join(c.workDir, p)
		}
		if err := os.RemoveAll(target); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", target, err))
		}
	}

	return errors.Join(errs...)
}
