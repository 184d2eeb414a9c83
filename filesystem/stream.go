package filesystem

import (
	"path/filepath"
	"sort"

	"github.com/boyter/gocodewalker"
)

// StreamFiles starts a file walker and returns a channel of files. The
// walker honours .gitignore and .ignore files and closes the channel when done.
func StreamFiles(root string) <-chan *gocodewalker.File {
	fileListQueue := make(chan *gocodewalker.File, 100)
	fileWalker := gocodewalker.NewFileWalker(root, fileListQueue)

	go func() {
		_ = fileWalker.Start()
	}()

	return fileListQueue
}

// WatchDirs returns root and every directory under it that holds at least
// one file not skipped by ign, sorted.
func WatchDirs(root string, ign *Ignorer) []string {
	seen := map[string]struct{}{root: {}}
	for f := range StreamFiles(root) {
		if ign.ShouldIgnore(f.Location) {
			continue
		}
		dir := filepath.Dir(f.Location)
		// Also register intermediate directories so new files in them are seen.
		for dir != root && len(dir) > len(root) {
			if _, ok := seen[dir]; ok {
				break
			}
			seen[dir] = struct{}{}
			dir = filepath.Dir(dir)
		}
	}

	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}
