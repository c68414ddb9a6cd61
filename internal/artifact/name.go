// Package artifact parses built package filenames and applies the retention
// policy to repository output directories.
package artifact

import (
	"strings"
	"time"
)

// Recognized archive extensions, in the order they are probed.
var archiveExts = []string{".pkg.tar.zst", ".pkg.tar.xz"}

const (
	// SigExt is the detached signature suffix riding along with an artifact.
	SigExt = ".sig"

	// debugSuffix marks a debug-symbol package name.
	debugSuffix = "-debug"
)

// Record is one artifact file parsed from the pacman filename grammar
// <name>-<version>-<release>-<arch>.pkg.tar.{xz,zst}.
type Record struct {
	Name    string
	Version string
	Release string
	Arch    string
	Ext     string

	Path    string
	ModTime time.Time
	Size    int64
}

// Debug reports whether the record is a debug-symbol artifact.
func (r Record) Debug() bool {
	return strings.HasSuffix(r.Name, debugSuffix)
}

// BaseName returns the package name a debug artifact shadows. For a non-debug
// record it is the name itself.
func (r Record) BaseName() string {
	return strings.TrimSuffix(r.Name, debugSuffix)
}

// BaseFilename reconstructs the filename of the non-debug artifact this debug
// record corresponds to, in the same directory and with the same extension.
func (r Record) BaseFilename() string {
	return r.BaseName() + "-" + r.Version + "-" + r.Release + "-" + r.Arch + r.Ext
}

// ArchiveExt returns the recognized archive extension of filename, or "" when
// the filename is not a package archive. Detached signatures do not count.
func ArchiveExt(filename string) string {
	for _, ext := range archiveExts {
		if strings.HasSuffix(filename, ext) {
			return ext
		}
	}
	return ""
}

// IsArchive reports whether filename is a package archive, optionally with a
// detached signature suffix.
func IsArchive(filename string) bool {
	return ArchiveExt(strings.TrimSuffix(filename, SigExt)) != ""
}

// ParseFilename recovers name, version, release and arch from an artifact
// filename. The name may itself contain hyphens, so the three fields are
// split off the right-hand side.
//
// A filename that does not follow the grammar yields a record whose Name is
// the whole stem and whose remaining fields are empty. Such a record matches
// the registry only if the stem happens to be a defined package name;
// otherwise it is treated like any other unknown package.
func ParseFilename(filename string) Record {
	ext := ArchiveExt(filename)
	stem := strings.TrimSuffix(filename, ext)

	parts := strings.Split(stem, "-")
	if len(parts) < 4 {
		return Record{Name: stem, Ext: ext}
	}

	n := len(parts)
	return Record{
		Name:    strings.Join(parts[:n-3], "-"),
		Version: parts[n-3],
		Release: parts[n-2],
		Arch:    parts[n-1],
		Ext:     ext,
	}
}
