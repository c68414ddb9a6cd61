// Package recipe derives the authoritative set of currently defined package
// names from the build recipes in a checkout.
package recipe

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// RecipeFile is the build recipe each package directory carries.
	RecipeFile = "PKGBUILD"

	// NameListFile, when present next to the recipe, is the complete
	// whitespace-separated list of package names the recipe produces and
	// overrides whatever the recipe body declares.
	NameListFile = "pkgname.txt"
)

// packageDefRe matches a package-definition statement at the start of a
// trimmed recipe line: `package(` or `package_<name>(`. This is deliberately
// a narrow textual matcher, not a shell parser.
var packageDefRe = regexp.MustCompile(`^package(?:_([^(]+))?\(`)

// Registry is the set of package names the repository currently defines.
// Artifacts whose name is not in the registry are fair game for deletion.
type Registry struct {
	names map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Add inserts a name into the registry.
func (r *Registry) Add(name string) {
	if name != "" {
		r.names[name] = struct{}{}
	}
}

// Contains reports whether name is defined by any recipe.
func (r *Registry) Contains(name string) bool {
	_, ok := r.names[name]
	return ok
}

// Len returns the number of defined names.
func (r *Registry) Len() int {
	return len(r.names)
}

// Scan walks the top-level package directories under root and unions every
// resolved name set into one registry.
func Scan(root string) (*Registry, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkout root %s: %w", root, err)
	}

	reg := NewRegistry()
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		names, err := Names(filepath.Join(root, entry.Name()))
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			reg.Add(name)
		}
	}

	return reg, nil
}

// Names resolves the package names one recipe directory declares:
//
//  1. a sibling name-list file, when present, is authoritative;
//  2. otherwise every package-definition statement in the recipe body
//     contributes its explicit name, or the directory name when unqualified;
//  3. a recipe with no package-definition statements names the directory.
//
// A directory without a recipe contributes nothing. That is not an error: the
// recipe may have been removed upstream while the directory lingers.
func Names(dir string) ([]string, error) {
	if data, err := os.ReadFile(filepath.Join(dir, NameListFile)); err == nil {
		return strings.Fields(string(data)), nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s in %s: %w", NameListFile, dir, err)
	}

	f, err := os.Open(filepath.Join(dir, RecipeFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open recipe in %s: %w", dir, err)
	}
	defer f.Close()

	base := filepath.Base(dir)
	var names []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := packageDefRe.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if name == "" {
			name = base
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan recipe in %s: %w", dir, err)
	}

	if len(names) == 0 {
		names = []string{base}
	}
	return names, nil
}
