package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// LoadProtected reads the protected-names file at {dir}/protected and returns
// the package names the cleaner must treat as defined even when no recipe
// declares them. If the file does not exist, an empty list is returned
// without an error. Blank lines and comments are skipped.
func LoadProtected(dir string) ([]string, error) {
	path := filepath.Join(dir, "protected")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// One name per line; trailing inline comments are tolerated.
		fields := strings.Fields(line)
		names = append(names, fields[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return names, nil
}
