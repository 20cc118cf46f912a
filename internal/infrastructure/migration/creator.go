package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const upTemplate = `-- {{.Name}}
-- Created: {{.Timestamp}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`

const downTemplate = `-- Rollback of {{.Name}}

`

// versionWidth is the zero padded width of sequential version numbers
const versionWidth = 6

// File is a created migration pair
type File struct {
	Version     uint
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// Entry is one migration found on disk
type Entry struct {
	Version uint
	Name    string
}

// CreateMigration writes an empty up/down pair numbered after the highest existing version
func CreateMigration(dir, name, description string) (*File, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	base := fmt.Sprintf("%0*d_%s", versionWidth, next, slug)
	f := &File{
		Version:     next,
		Name:        slug,
		Description: strings.TrimSpace(description),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		UpPath:      filepath.Join(dir, base+".up.sql"),
		DownPath:    filepath.Join(dir, base+".down.sql"),
	}

	if err := writeTemplate(f.UpPath, upTemplate, f); err != nil {
		return nil, err
	}
	if err := writeTemplate(f.DownPath, downTemplate, f); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, err
	}
	return f, nil
}

// ListMigrations returns the up migrations in dir ordered by version.
// A missing directory yields an empty list.
func ListMigrations(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries)/2)
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".up.sql") {
			continue
		}
		versionPart, name, ok := strings.Cut(strings.TrimSuffix(de.Name(), ".up.sql"), "_")
		if !ok {
			continue
		}
		version, err := strconv.ParseUint(versionPart, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Version: uint(version), Name: name})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Version < entries[j].Version })
	return entries, nil
}

func writeTemplate(path, tmpl string, f *File) error {
	t, err := template.New(filepath.Base(path)).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()
	if err := t.Execute(out, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// sanitizeName lowercases name and collapses separators into single underscores
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}
