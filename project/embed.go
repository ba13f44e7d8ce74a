package project

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed demo/project.yaml demo/scripts/*.tengo demo/costumes/*
var demoFS embed.FS

const demoName = "project.yaml"

// Load reads a project file from disk. Costumes and scripts are resolved
// relative to the file's directory.
func Load(filename string) (*Project, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("project: load %s: %w", filename, err)
	}
	p, err := Parse(data, os.DirFS(filepath.Dir(filename)))
	if err != nil {
		return nil, fmt.Errorf("project: load %s: %w", filename, err)
	}
	p.Name = filename
	return p, nil
}

// LoadDemo reads the project embedded in the binary.
func LoadDemo() (*Project, error) {
	sub, err := fs.Sub(demoFS, "demo")
	if err != nil {
		return nil, fmt.Errorf("project: demo: %w", err)
	}
	data, err := fs.ReadFile(sub, demoName)
	if err != nil {
		return nil, fmt.Errorf("project: demo: %w", err)
	}
	p, err := Parse(data, sub)
	if err != nil {
		return nil, fmt.Errorf("project: demo: %w", err)
	}
	p.Name = "demo/" + demoName
	return p, nil
}

// LoadOrDemo loads filename, or the embedded demo when filename is empty.
func LoadOrDemo(filename string) (*Project, error) {
	if filename == "" {
		return LoadDemo()
	}
	return Load(filename)
}
