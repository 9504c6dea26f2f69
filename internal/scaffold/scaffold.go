// Package scaffold lays out the files of a freshly initialized Proxima
// project: the application config, a starter schema and the abi folder.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/spf13/afero"
)

//go:embed templates/*
var templatesFS embed.FS

// file maps a project-relative destination to an embedded template. An empty
// template produces an empty file.
type file struct {
	dest string
	tmpl string
}

var projectFiles = []file{
	{dest: "app-config.yml", tmpl: "templates/app-config.yml.tmpl"},
	{dest: filepath.Join("schema", "schema.graphql"), tmpl: "templates/schema.graphql.tmpl"},
	{dest: filepath.Join("abi", ".gitkeep")},
	{dest: ".gitignore", tmpl: "templates/gitignore.tmpl"},
}

// Result lists what Write did, relative to the project root.
type Result struct {
	Created []string
	Skipped []string
}

// Write scaffolds the project files under root. Existing files are kept and
// reported as skipped.
func Write(fsys afero.Fs, root, projectName string) (*Result, error) {
	data := map[string]any{
		"ProjectName": projectName,
	}

	res := &Result{}
	for _, f := range projectFiles {
		dest := filepath.Join(root, f.dest)

		exists, err := afero.Exists(fsys, dest)
		if err != nil {
			return res, fmt.Errorf("failed to stat %s: %w", dest, err)
		}
		if exists {
			res.Skipped = append(res.Skipped, f.dest)
			continue
		}

		content, err := render(f.tmpl, data)
		if err != nil {
			return res, err
		}

		if err := fsys.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return res, fmt.Errorf("failed to create directory for %s: %w", f.dest, err)
		}
		if err := afero.WriteFile(fsys, dest, content, 0644); err != nil {
			return res, fmt.Errorf("failed to write %s: %w", f.dest, err)
		}
		res.Created = append(res.Created, f.dest)
	}

	return res, nil
}

func render(tmplPath string, data map[string]any) ([]byte, error) {
	if tmplPath == "" {
		return nil, nil
	}

	raw, err := templatesFS.ReadFile(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", tmplPath, err)
	}

	tmpl, err := template.New(filepath.Base(tmplPath)).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", tmplPath, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", tmplPath, err)
	}
	return buf.Bytes(), nil
}
