package artifact

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Deletion reasons recorded in the audit store and shown in summaries.
const (
	ReasonUnknownPackage = "unknown-package"
	ReasonSuperseded     = "superseded"
	ReasonOrphanDebug    = "orphan-debug"
)

// DefaultKeep is the number of most recent builds retained per package name.
const DefaultKeep = 1

// Registry answers whether a package name is currently defined.
type Registry interface {
	Contains(name string) bool
}

// Deletion describes one artifact the cleaner removed (or would remove).
type Deletion struct {
	Path   string
	Name   string
	Reason string
	Size   int64
}

// Result summarizes cleaning one repository directory.
type Result struct {
	Dir     string
	Scanned int
	Deleted []Deletion
}

// Bytes returns the total size of the deleted artifacts.
func (r *Result) Bytes() int64 {
	var total int64
	for _, d := range r.Deleted {
		total += d.Size
	}
	return total
}

// Cleaner bounds the number of retained builds per package and removes builds
// for packages the repository no longer defines. DryRun changes only whether
// the filesystem is touched, never which files are selected.
type Cleaner struct {
	Registry Registry
	Keep     int
	DryRun   bool

	// Logf receives one line per delete decision. Defaults to log.Printf.
	Logf func(format string, args ...interface{})
}

// New returns a Cleaner with the given policy.
func New(reg Registry, keep int, dryRun bool) *Cleaner {
	if keep < 1 {
		keep = DefaultKeep
	}
	return &Cleaner{Registry: reg, Keep: keep, DryRun: dryRun}
}

func (c *Cleaner) logf(format string, args ...interface{}) {
	if c.Logf != nil {
		c.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (c *Cleaner) verb() string {
	if c.DryRun {
		return "would remove"
	}
	return "removing"
}

// CleanDir applies the retention policy to one repository directory:
// artifacts of unknown packages go entirely, known packages keep their newest
// Keep builds, and debug artifacts survive only while their base artifact
// does. Signatures are removed with their artifacts; a missing signature is
// not an error.
func (c *Cleaner) CleanDir(dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read repo directory %s: %w", dir, err)
	}

	var records []Record
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		// Signatures are handled alongside their artifact, never on
		// their own.
		if ArchiveExt(name) == "" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}

		rec := ParseFilename(name)
		rec.Path = filepath.Join(dir, name)
		rec.ModTime = info.ModTime()
		rec.Size = info.Size()
		records = append(records, rec)
	}

	result := &Result{Dir: dir, Scanned: len(records)}

	debug, regular := lo.FilterReject(records, func(r Record, _ int) bool {
		return r.Debug()
	})

	// Filenames selected for removal so far. The orphan check below must
	// see the same world in dry-run mode that a live run would leave
	// behind.
	condemned := make(map[string]bool)

	groups := lo.GroupBy(regular, func(r Record) string { return r.Name })

	// Deterministic directory order regardless of map iteration.
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		group := groups[name]

		if !c.Registry.Contains(name) {
			for _, rec := range group {
				if err := c.remove(rec, ReasonUnknownPackage, result, condemned); err != nil {
					return result, err
				}
			}
			continue
		}

		sort.SliceStable(group, func(i, j int) bool {
			return group[i].ModTime.Before(group[j].ModTime)
		})
		if len(group) <= c.Keep {
			continue
		}
		for _, rec := range group[:len(group)-c.Keep] {
			if err := c.remove(rec, ReasonSuperseded, result, condemned); err != nil {
				return result, err
			}
		}
	}

	for _, rec := range debug {
		base := filepath.Join(dir, rec.BaseFilename())
		if condemned[base] {
			if err := c.remove(rec, ReasonOrphanDebug, result, condemned); err != nil {
				return result, err
			}
			continue
		}
		if _, err := os.Stat(base); os.IsNotExist(err) {
			if err := c.remove(rec, ReasonOrphanDebug, result, condemned); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

// remove deletes one artifact and its detached signature, records the
// decision, and logs it with the dry-run verb.
func (c *Cleaner) remove(rec Record, reason string, result *Result, condemned map[string]bool) error {
	c.logf("%s %s (%s)", c.verb(), rec.Path, reason)

	if !c.DryRun {
		if err := removeFile(rec.Path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", rec.Path, err)
		}
		if err := removeFile(rec.Path + SigExt); err != nil {
			return fmt.Errorf("failed to remove %s: %w", rec.Path+SigExt, err)
		}
	}

	condemned[rec.Path] = true
	result.Deleted = append(result.Deleted, Deletion{
		Path:   rec.Path,
		Name:   rec.Name,
		Reason: reason,
		Size:   rec.Size,
	})
	return nil
}

// removeFile unlinks path, mapping an already-missing file to success. Two
// cleaner instances may race over the same directory; losing the race is not
// an error.
func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
