// Package watch implements the CLI's --watch flag: re-run a task
// whenever its source file changes on disk. The teacher's runtime
// go.mod declares github.com/fsnotify/fsnotify but never imports it;
// fort77 gives that dependency a real job.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/crypto/blake2b"

	"github.com/fort77/fort77/internal/diag"
)

// Run watches the directory containing path and invokes runOnce every
// time path itself is written, until ctx is cancelled. It calls
// runOnce once immediately before watching begins. Between runs it
// content-hashes the file (blake2b.Sum256, mirroring the teacher's
// keyed-hash-for-dedup pattern in core/sdk/secret/idfactory.go) and
// skips re-running when an editor's redundant WRITE event left the
// bytes unchanged.
func Run(ctx context.Context, path string, w io.Writer, runOnce func(io.Writer) error) error {
	if err := runOnce(w); err != nil {
		fmt.Fprintln(w, err)
	}

	lastHash, err := hashFile(path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: creating fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch: watching %s: %w", dir, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	diag.Logger.Debug("watch started", "path", abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			evAbs, err := filepath.Abs(ev.Name)
			if err != nil || evAbs != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			hash, err := hashFile(path)
			if err != nil {
				fmt.Fprintln(w, err)
				continue
			}
			if hash == lastHash {
				diag.Logger.Debug("watch skipped identical rewrite", "path", abs)
				continue
			}
			lastHash = hash
			fmt.Fprintln(w, "---")
			if err := runOnce(w); err != nil {
				fmt.Fprintln(w, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Fprintln(w, "watch:", err)
		}
	}
}

func hashFile(path string) ([32]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return [32]byte{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return blake2b.Sum256(content), nil
}
