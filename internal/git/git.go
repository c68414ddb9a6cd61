// Package git invokes the git binary against the build repository checkout.
//
// It is the only place repogc talks to version control. Everything it learns
// is turned into plain data (a tracked-file map, a pull transcript) so the
// decision logic in sweeper and artifact never has to shell out itself.
package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// ListTracked returns every file path git tracks in the checkout at root,
// grouped by top-level directory. Map values are the remainders relative to
// that directory. Root-level entries (the ignore file, submodule commit
// references) carry nothing for the sweeper to manage and are skipped.
//
// The listing is NUL-terminated (-z). Line-oriented ls-files output C-quotes
// any path with non-ASCII bytes under the default core.quotepath setting,
// which would corrupt the map keys; -z output is always verbatim.
func ListTracked(root string) (map[string][]string, error) {
	cmd := exec.Command("git", "-C", root, "ls-files", "-z")
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("git ls-files failed: %w (stderr: %s)", err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("git ls-files failed: %w", err)
	}

	return GroupByTopDir(string(output)), nil
}

// GroupByTopDir parses NUL-separated tracked paths into a map keyed by
// top-level directory name. Entries without a path separator are skipped.
func GroupByTopDir(output string) map[string][]string {
	tracked := make(map[string][]string)

	for _, path := range strings.Split(output, "\x00") {
		if path == "" {
			continue
		}

		dir, rest, ok := strings.Cut(path, "/")
		if !ok || dir == "" || rest == "" {
			continue
		}
		tracked[dir] = append(tracked[dir], rest)
	}

	return tracked
}

// Pull updates the checkout at root. The combined stdout/stderr transcript is
// returned even when the pull fails so callers can surface what git printed.
func Pull(root string) (string, error) {
	cmd := exec.Command("git", "-C", root, "pull")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("git pull failed: %w", err)
	}
	return string(output), nil
}

// FilterPullNoise drops the routine "Already up to date." status line from a
// pull transcript, leaving anything worth showing the operator.
func FilterPullNoise(output string) string {
	var kept []string
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "Already up to date." {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
