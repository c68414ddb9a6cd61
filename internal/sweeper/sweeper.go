// Package sweeper reclaims disk space from the build repository checkout. It
// never deletes version-controlled content, and it leaves freshly touched
// untracked files alone so an in-progress build cannot lose its byproducts.
package sweeper

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackwell-systems/repogc/internal/artifact"
	"github.com/blackwell-systems/repogc/internal/recipe"
)

// protectionWindow is subtracted from the newest tracked mtime in a
// directory: untracked files younger than the result are presumed to belong
// to a recent or in-progress build.
const protectionWindow = 24 * time.Hour

// Deletion reasons recorded in the audit store and shown in summaries.
const (
	ReasonStale     = "untracked-stale"
	ReasonDeadDir   = "dead-package-dir"
	ReasonStrayRoot = "stray-root-file"
)

// ignoreFile is the one root-level file the sweeper leaves in place.
const ignoreFile = ".gitignore"

// vcsMarkers identify a directory as a version-control working tree of its
// own. Such trees are checkouts of upstream sources and are not ours to
// delete.
var vcsMarkers = []string{".git", ".hg", ".svn", "packed-refs"}

// Removal describes one path the sweeper removed (or would remove).
type Removal struct {
	Path   string
	Reason string
	Size   int64
}

// Result summarizes one sweep of the checkout root.
type Result struct {
	Removed []Removal
}

// Bytes returns the total size of the removed paths.
func (r *Result) Bytes() int64 {
	var total int64
	for _, rm := range r.Removed {
		total += rm.Size
	}
	return total
}

// Child is the metadata the sweep decision needs about one directory entry.
// Keeping it plain data lets the decision be tested without git or a real
// checkout.
type Child struct {
	Rel     string
	Dir     bool
	ModTime time.Time
	VCSTree bool
}

// Keep reports whether the sweeper must leave child alone. tracked holds the
// directory's tracked relative paths; threshold is the directory's protected
// instant.
func Keep(c Child, tracked map[string]bool, threshold time.Time) bool {
	base := filepath.Base(c.Rel)

	if c.Dir && base == "__pycache__" {
		return true
	}
	if !c.Dir && strings.HasSuffix(base, ".log") {
		// Log files are rotated out by an external process on its own
		// schedule.
		return true
	}
	if !c.Dir && artifact.IsArchive(base) {
		// Built packages belong to the retention cleaner.
		return true
	}
	if c.Dir && c.VCSTree {
		return true
	}
	if tracked[c.Rel] {
		return true
	}
	if c.Dir {
		// A directory with tracked content anywhere beneath it cannot
		// be removed wholesale.
		prefix := c.Rel + "/"
		for rel := range tracked {
			if strings.HasPrefix(rel, prefix) {
				return true
			}
		}
	}
	return c.ModTime.After(threshold)
}

// Sweeper walks the top-level package directories of a checkout and deletes
// stale untracked content. DryRun changes only whether the filesystem is
// touched, never which paths are selected.
type Sweeper struct {
	Root    string
	Tracked map[string][]string
	DryRun  bool

	// Logf receives one line per delete decision. Defaults to log.Printf.
	Logf func(format string, args ...interface{})
}

// New returns a Sweeper over the checkout at root using the given
// tracked-file map.
func New(root string, tracked map[string][]string, dryRun bool) *Sweeper {
	return &Sweeper{Root: root, Tracked: tracked, DryRun: dryRun}
}

func (s *Sweeper) logf(format string, args ...interface{}) {
	if s.Logf != nil {
		s.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (s *Sweeper) verb() string {
	if s.DryRun {
		return "would remove"
	}
	return "removing"
}

// Sweep processes every top-level entry of the checkout root.
func (s *Sweeper) Sweep() (*Result, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkout root %s: %w", s.Root, err)
	}

	result := &Result{}
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(s.Root, name)

		if !entry.IsDir() {
			if name == ignoreFile {
				continue
			}
			if err := s.removePath(path, false, ReasonStrayRoot, result); err != nil {
				return result, err
			}
			continue
		}

		if isVCSTree(path) {
			// The checkout's own .git lives at the root.
			continue
		}

		if err := s.sweepPackageDir(name, path, result); err != nil {
			return result, err
		}
	}
	return result, nil
}

// sweepPackageDir applies the per-directory state machine: a directory with
// neither a recipe nor tracked files is dead and goes wholesale; otherwise
// each child is judged individually.
func (s *Sweeper) sweepPackageDir(name, dir string, result *Result) error {
	tracked := s.Tracked[name]

	if len(tracked) == 0 {
		if _, err := os.Stat(filepath.Join(dir, recipe.RecipeFile)); os.IsNotExist(err) {
			return s.removePath(dir, true, ReasonDeadDir, result)
		}
	}

	trackedSet := make(map[string]bool, len(tracked))
	for _, rel := range tracked {
		trackedSet[rel] = true
	}
	threshold := s.protectedThreshold(dir, tracked)

	children, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	for _, childEntry := range children {
		childPath := filepath.Join(dir, childEntry.Name())

		info, err := childEntry.Info()
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to stat %s: %w", childPath, err)
		}

		child := Child{
			Rel:     childEntry.Name(),
			Dir:     childEntry.IsDir(),
			ModTime: info.ModTime(),
			VCSTree: childEntry.IsDir() && isVCSTree(childPath),
		}
		if Keep(child, trackedSet, threshold) {
			continue
		}
		if err := s.removePath(childPath, child.Dir, ReasonStale, result); err != nil {
			return err
		}
	}
	return nil
}

// protectedThreshold is the newest tracked mtime in dir minus the protection
// window. A directory with no tracked files gets "now": nothing beyond the
// explicit skip rules is protected there.
func (s *Sweeper) protectedThreshold(dir string, tracked []string) time.Time {
	var newest time.Time
	for _, rel := range tracked {
		info, err := os.Stat(filepath.Join(dir, rel))
		if err != nil {
			continue
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	if newest.IsZero() {
		return time.Now()
	}
	return newest.Add(-protectionWindow)
}

// removePath deletes one file or directory, best-effort: a path that vanished
// underneath us is fine.
func (s *Sweeper) removePath(path string, isDir bool, reason string, result *Result) error {
	s.logf("%s %s (%s)", s.verb(), path, reason)

	size := pathSize(path, isDir)

	if !s.DryRun {
		var err error
		if isDir {
			err = os.RemoveAll(path)
		} else {
			err = os.Remove(path)
		}
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	result.Removed = append(result.Removed, Removal{Path: path, Reason: reason, Size: size})
	return nil
}

// isVCSTree reports whether dir contains a version-control marker.
func isVCSTree(dir string) bool {
	for _, marker := range vcsMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// pathSize totals the bytes under path, best-effort. Used only for
// reporting; failures count as zero.
func pathSize(path string, isDir bool) int64 {
	if !isDir {
		info, err := os.Stat(path)
		if err != nil {
			return 0
		}
		return info.Size()
	}

	var total int64
	filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
