package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/shoal/internal/config"
	"github.com/dyluth/shoal/pkg/pooling"
	"gopkg.in/yaml.v3"
)

//go:embed templates/*
var templatesFS embed.FS

// Files created by Initialize, relative to the target directory
const (
	ConfigFile  = config.DefaultFile
	DevicesFile = "devices.yml"
)

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize writes a starter configuration and device list into dir.
// If force is true, existing files are overwritten.
func Initialize(dir string, force bool) error {
	if !force {
		if err := CheckExisting(dir); err != nil {
			return err
		}
	}

	files, err := getTemplateFiles()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	for _, file := range files {
		path := filepath.Join(dir, file.Path)
		if err := os.WriteFile(path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	return validateCreatedFiles(dir)
}

func getTemplateFiles() ([]FileInfo, error) {
	templates := []struct {
		name string
		path string
	}{
		{name: "templates/shoal.yml.tmpl", path: ConfigFile},
		{name: "templates/devices.yml.tmpl", path: DevicesFile},
	}

	files := make([]FileInfo, 0, len(templates))
	for _, tmpl := range templates {
		content, err := templatesFS.ReadFile(tmpl.name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s template: %w", tmpl.path, err)
		}
		files = append(files, FileInfo{Path: tmpl.path, Content: content, Permissions: 0644})
	}
	return files, nil
}

// validateCreatedFiles checks the written files load the way shoal reads them
func validateCreatedFiles(dir string) error {
	configPath := filepath.Join(dir, ConfigFile)
	props, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("created %s does not load: %w", ConfigFile, err)
	}
	if unknown := props.UnknownKeys(); len(unknown) > 0 {
		return fmt.Errorf("created %s has unknown keys: %v", ConfigFile, unknown)
	}

	content, err := os.ReadFile(filepath.Join(dir, DevicesFile))
	if err != nil {
		return fmt.Errorf("failed to read created %s: %w", DevicesFile, err)
	}
	var devices []pooling.Device
	if err := yaml.Unmarshal(content, &devices); err != nil {
		return fmt.Errorf("created %s is not a device list: %w", DevicesFile, err)
	}

	return nil
}

// CreatedFiles lists the paths Initialize writes, for reporting.
func CreatedFiles() []string {
	return []string{ConfigFile, DevicesFile}
}
