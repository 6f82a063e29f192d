// Package discover finds `.lv` source files under a package root.
// Adapted from the teacher's core.FileWalker: same doublestar-backed glob
// matching and Include/Exclude/MaxDepth/FollowSymlinks scope shape, but
// walked single-threaded — the driver this feeds is single-threaded per
// spec.md §5, so a worker-pool walk here would just be unused concurrency.
package discover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Scope bounds a directory walk: Path is the root to walk, Include/Exclude
// are doublestar glob patterns (applied against the full path, and against
// the basename for a pattern with no "/"), MaxDepth and MaxFiles each cap
// the walk's size when positive, and FollowSymlinks opts into
// descending into symlinked directories.
type Scope struct {
	Path           string
	Include        []string
	Exclude        []string
	MaxDepth       int
	MaxFiles       int
	FollowSymlinks bool
}

// DefaultScope returns a Scope over root matching every `.lv` file.
func DefaultScope(root string) Scope {
	return Scope{Path: root, Include: []string{"**/*.lv"}}
}

// Walk returns every file under scope.Path matching Include and not
// matching Exclude, in directory-then-name order.
func Walk(ctx context.Context, scope Scope) ([]string, error) {
	if scope.Path == "" {
		return nil, fmt.Errorf("discover: path is required")
	}
	info, err := os.Stat(scope.Path)
	if err != nil {
		return nil, fmt.Errorf("discover: cannot access path %s: %w", scope.Path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("discover: path %s is not a directory", scope.Path)
	}

	var out []string
	visited := map[string]struct{}{}
	if scope.FollowSymlinks {
		if resolved, err := filepath.EvalSymlinks(scope.Path); err == nil {
			visited[resolved] = struct{}{}
		}
	}

	var walk func(dir string, depth int) error
	walk = func(dir string, depth int) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if scope.MaxDepth > 0 && depth > scope.MaxDepth {
			return nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil
		}
		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			if isExcluded(full, scope.Exclude) {
				continue
			}

			if entry.IsDir() {
				real := full
				if resolved, err := filepath.EvalSymlinks(full); err == nil && resolved != "" {
					real = resolved
				}
				isSymlink := entry.Type()&os.ModeSymlink != 0
				if isSymlink && !scope.FollowSymlinks {
					continue
				}
				if _, seen := visited[real]; seen {
					continue
				}
				visited[real] = struct{}{}
				if err := walk(full, depth+1); err != nil {
					return err
				}
				continue
			}

			if !isIncluded(full, scope.Include) {
				continue
			}
			if scope.MaxFiles > 0 && len(out) >= scope.MaxFiles {
				return nil
			}
			out = append(out, full)
		}
		return nil
	}

	if err := walk(scope.Path, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func isIncluded(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if matchPattern(path, p) {
			return true
		}
	}
	return false
}

func isExcluded(path string, patterns []string) bool {
	for _, p := range patterns {
		if matchPattern(path, p) {
			return true
		}
	}
	return false
}

func matchPattern(path, pattern string) bool {
	if matched, err := doublestar.PathMatch(pattern, path); err == nil && matched {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if matched, err := doublestar.PathMatch(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}
	return false
}
