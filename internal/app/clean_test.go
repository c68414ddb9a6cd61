package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blackwell-systems/repogc/internal/config"
	"github.com/blackwell-systems/repogc/internal/store"
)

// buildFixture lays out a checkout defining pkgA and a repo directory with
// three pkgA builds and one build of the undefined pkgB.
func buildFixture(t *testing.T) (checkout, repo string) {
	t.Helper()

	checkout = t.TempDir()
	pkgDir := filepath.Join(checkout, "pkgA")
	if err := os.MkdirAll(pkgDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pkgDir, "PKGBUILD"), []byte("package() {\n}\n"), 0644); err != nil {
		t.Fatalf("write PKGBUILD: %v", err)
	}

	repo = t.TempDir()
	now := time.Now()
	builds := []struct {
		name  string
		mtime time.Time
	}{
		{"pkgA-1.0-1-x86_64.pkg.tar.zst", now.Add(-72 * time.Hour)},
		{"pkgA-1.1-1-x86_64.pkg.tar.zst", now.Add(-48 * time.Hour)},
		{"pkgA-1.2-1-x86_64.pkg.tar.zst", now.Add(-time.Hour)},
		{"pkgB-1.0-1-x86_64.pkg.tar.zst", now},
	}
	for _, b := range builds {
		path := filepath.Join(repo, b.name)
		if err := os.WriteFile(path, []byte("artifact"), 0644); err != nil {
			t.Fatalf("write artifact: %v", err)
		}
		if err := os.WriteFile(path+".sig", []byte("sig"), 0644); err != nil {
			t.Fatalf("write signature: %v", err)
		}
		if err := os.Chtimes(path, b.mtime, b.mtime); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
	return checkout, repo
}

func TestCleanReposEndToEnd(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	checkout, repo := buildFixture(t)

	cfg := &config.Config{
		DBPath: filepath.Join(t.TempDir(), "history.db"),
	}

	if err := cleanRepos(cfg, checkout, []string{repo}, 1, false, false); err != nil {
		t.Fatalf("cleanRepos failed: %v", err)
	}

	// Only the newest pkgA build survives; pkgB and its signature are gone.
	survivors, err := os.ReadDir(repo)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	var names []string
	for _, e := range survivors {
		names = append(names, e.Name())
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 surviving files, got %v", names)
	}
	for _, want := range []string{"pkgA-1.2-1-x86_64.pkg.tar.zst", "pkgA-1.2-1-x86_64.pkg.tar.zst.sig"} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
			}
		}
		if !found {
			t.Errorf("%s missing from survivors %v", want, names)
		}
	}

	// The run is in the audit database.
	st, err := store.New(cfg.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()
	runs, err := st.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(runs))
	}
	if runs[0].Command != "clean" || runs[0].FilesRemoved != 3 {
		t.Errorf("unexpected run: %+v", runs[0])
	}

	deletions, err := st.ListDeletions(runs[0].ID)
	if err != nil {
		t.Fatalf("ListDeletions: %v", err)
	}
	if len(deletions) != 3 {
		t.Errorf("expected 3 recorded deletions, got %d", len(deletions))
	}
}

func TestCleanReposDryRunLeavesEverything(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	checkout, repo := buildFixture(t)

	cfg := &config.Config{}
	if err := cleanRepos(cfg, checkout, []string{repo}, 1, true, false); err != nil {
		t.Fatalf("cleanRepos failed: %v", err)
	}

	survivors, err := os.ReadDir(repo)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(survivors) != 8 {
		t.Errorf("dry run must not delete anything, %d files remain", len(survivors))
	}
}

func TestRootCommandRegistration(t *testing.T) {
	for _, name := range []string{"clean", "sweep", "history", "watch"} {
		found := false
		for _, cmd := range RootCmd.Commands() {
			if cmd.Name() == name {
				found = true
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
