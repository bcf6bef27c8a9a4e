// Package lockfile provides an advisory lock based on exclusive file
// creation. It only coordinates processes that use it.
package lockfile

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
)

var pollInterval = time.Second

type Lock struct {
	path string
}

// PathFor is the lock path guarding the file at path.
func PathFor(path string) string {
	return path + ".lock"
}

// Take creates the lock file at path, polling until it can or ctx is done.
// waiting is called every time the lock is found held.
func Take(ctx context.Context, path string, waiting func()) (*Lock, error) {
	tk := time.NewTicker(pollInterval)
	defer tk.Stop()

	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()

			return &Lock{path: path}, nil
		}

		if !os.IsExist(err) {
			return nil, errors.Wrapf(err, "taking lock %s", path)
		}

		if waiting != nil {
			waiting()
		}

		select {
		case <-tk.C:
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "waiting for lock %s", path)
		}
	}
}

func (l *Lock) Release() error {
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
