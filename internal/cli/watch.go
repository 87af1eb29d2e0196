package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *RootOptions) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Stamp files as they are written",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve watch dir: %w", err)
			}
			info, err := os.Stat(root)
			if err != nil {
				return fmt.Errorf("%w: %v", errInvalidInput, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%w: %s is not a directory", errInvalidInput, root)
			}

			svc, err := openNode(opts)
			if err != nil {
				return err
			}
			defer func() {
				_ = svc.Close()
			}()

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()

			if err := addWatchDirs(watcher, root, svc.Dir); err != nil {
				return fmt.Errorf("add watch dirs: %w", err)
			}

			logger := opts.log()
			logger.Info("watching for changes", "dir", root, "debounce", debounce)

			timer := time.NewTimer(0)
			if !timer.Stop() {
				<-timer.C
			}
			pending := map[string]struct{}{}

			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if shouldIgnoreEvent(event, svc.Dir) {
						continue
					}
					if event.Op&fsnotify.Create != 0 {
						if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
							if err := addWatchDirs(watcher, event.Name, svc.Dir); err != nil {
								logger.Warn("watch new dir", "dir", event.Name, "error", err)
							}
							continue
						}
					}
					if len(pending) == 0 {
						timer.Reset(debounce)
					}
					pending[event.Name] = struct{}{}
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					logger.Warn("watch error", "error", err)
				case <-timer.C:
					paths := make([]string, 0, len(pending))
					for path := range pending {
						paths = append(paths, path)
					}
					pending = map[string]struct{}{}
					sort.Strings(paths)

					results := make([]stampOutput, 0, len(paths))
					for _, path := range paths {
						result, err := stampFile(cmd, svc, path)
						if err != nil {
							logger.Warn("stamp failed", "path", path, "error", err)
							continue
						}
						results = append(results, newStampOutput(path, result))
					}
					if len(results) == 0 {
						continue
					}
					if err := writeStampResults(cmd, results, opts.JSONOutput); err != nil {
						return err
					}
				}
			}
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce window for batching changes")
	return cmd
}

func addWatchDirs(watcher *fsnotify.Watcher, root, dataDir string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path == dataDir || (strings.HasPrefix(info.Name(), ".") && path != root) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// shouldIgnoreEvent drops events under the data directory, hidden files and
// anything that is not a write or a create.
func shouldIgnoreEvent(event fsnotify.Event, dataDir string) bool {
	if event.Name == dataDir || strings.HasPrefix(event.Name, dataDir+string(filepath.Separator)) {
		return true
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return true
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) == 0
}
