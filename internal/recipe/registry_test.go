package recipe

import (
	"os"
	"path/filepath"
	"testing"
)

// writePackageDir lays out one package directory with the given files.
func writePackageDir(t *testing.T, root, name string, files map[string]string) {
	t.Helper()

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create package dir: %v", err)
	}
	for file, content := range files {
		if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", file, err)
		}
	}
}

func TestNamesFromNameListFile(t *testing.T) {
	root := t.TempDir()
	writePackageDir(t, root, "r-ape", map[string]string{
		NameListFile: "r-ape r-ape-docs\nr-ape-data\n",
		RecipeFile:   "package_ignored() {\n}\n",
	})

	names, err := Names(filepath.Join(root, "r-ape"))
	if err != nil {
		t.Fatalf("Names failed: %v", err)
	}

	want := []string{"r-ape", "r-ape-docs", "r-ape-data"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestNamesFromRecipeBody(t *testing.T) {
	recipe := `pkgbase=mypkg
pkgname=(mypkg mypkg-extra)

build() {
	make
}

package_mypkg() {
	make install
}

  package_mypkg-extra() {
	true
}

# package_commented() must not count because the line starts with a comment
echo "package_quoted() {" > /dev/null
`
	root := t.TempDir()
	writePackageDir(t, root, "mypkg", map[string]string{RecipeFile: recipe})

	names, err := Names(filepath.Join(root, "mypkg"))
	if err != nil {
		t.Fatalf("Names failed: %v", err)
	}

	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %v", names)
	}
	if names[0] != "mypkg" || names[1] != "mypkg-extra" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestNamesUnqualifiedPackageUsesDirName(t *testing.T) {
	root := t.TempDir()
	writePackageDir(t, root, "simple", map[string]string{
		RecipeFile: "package() {\n  make install\n}\n",
	})

	names, err := Names(filepath.Join(root, "simple"))
	if err != nil {
		t.Fatalf("Names failed: %v", err)
	}
	if len(names) != 1 || names[0] != "simple" {
		t.Errorf("expected [simple], got %v", names)
	}
}

func TestNamesFallbackToDirName(t *testing.T) {
	root := t.TempDir()
	writePackageDir(t, root, "no-funcs", map[string]string{
		RecipeFile: "pkgver=1.0\npkgrel=1\n",
	})

	names, err := Names(filepath.Join(root, "no-funcs"))
	if err != nil {
		t.Fatalf("Names failed: %v", err)
	}
	if len(names) != 1 || names[0] != "no-funcs" {
		t.Errorf("expected [no-funcs], got %v", names)
	}
}

func TestNamesMissingRecipe(t *testing.T) {
	root := t.TempDir()
	writePackageDir(t, root, "empty", nil)

	names, err := Names(filepath.Join(root, "empty"))
	if err != nil {
		t.Fatalf("Names failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("directory without a recipe should contribute no names, got %v", names)
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writePackageDir(t, root, "r-ape", map[string]string{
		RecipeFile: "package() {\n}\n",
	})
	writePackageDir(t, root, "r-biocgenerics", map[string]string{
		NameListFile: "r-biocgenerics",
	})
	writePackageDir(t, root, "orphan-dir", nil)
	writePackageDir(t, root, ".git", map[string]string{"config": ""})

	reg, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if reg.Len() != 2 {
		t.Fatalf("expected 2 registry names, got %d", reg.Len())
	}
	for _, name := range []string{"r-ape", "r-biocgenerics"} {
		if !reg.Contains(name) {
			t.Errorf("registry missing %q", name)
		}
	}
	if reg.Contains("orphan-dir") {
		t.Error("directory without recipe must not register a name")
	}
}
