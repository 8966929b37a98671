package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CheckExisting returns an error naming every file Initialize would overwrite.
func CheckExisting(dir string) error {
	var existingFiles []string
	for _, name := range CreatedFiles() {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			existingFiles = append(existingFiles, name)
		}
	}

	if len(existingFiles) == 0 {
		return nil
	}
	return fmt.Errorf("already initialized: found %s\n\nUse 'shoal init --force' to overwrite", strings.Join(existingFiles, ", "))
}
