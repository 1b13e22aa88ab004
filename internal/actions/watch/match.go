package watch

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Match reports whether the slash-separated relative path name matches
// pattern. Patterns use doublestar syntax. A pattern without a slash matches
// the base name at any depth, so "*.go" behaves like "**/*.go".
func Match(pattern, name string) bool {
	pattern = strings.Trim(pattern, "/")
	name = strings.Trim(name, "/")
	if pattern == "" || name == "" {
		return false
	}
	if !strings.Contains(pattern, "/") && pattern != "**" {
		name = path.Base(name)
	}
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

func validatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(strings.Trim(pattern, "/")) {
			return fmt.Errorf("watch: bad path pattern %q", pattern)
		}
	}
	return nil
}

// ignored reports whether any segment of the relative path is in skip.
func ignored(rel string, skip map[string]struct{}) bool {
	for _, segment := range strings.Split(rel, "/") {
		if _, ok := skip[segment]; ok {
			return true
		}
	}
	return false
}
