package pipeline

import (
	"os"
	"path/filepath"
)

// writeFile writes markdown content to path, creating parent directories
// as needed (spec.md §6's blog_root output tree).
func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
