package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"
	"time"
)

var migrationTemplate = template.Must(template.New("migration").Parse(`-- Migration: {{.Name}}{{if .Down}} (Rollback){{end}}
-- Created: {{.Timestamp}}
-- Description: {{if .Down}}Rollback for {{end}}{{.Description}}

`))

var (
	nonNameChars   = regexp.MustCompile(`[^a-z0-9_ -]+`)
	separatorRuns  = regexp.MustCompile(`[ _-]+`)
	migrationFiles = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)
)

// MigrationFile is a freshly created up/down pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// Migration describes one migration found on disk
type Migration struct {
	Version string
	Name    string
	HasUp   bool
	HasDown bool
}

// BaseName returns the file name without direction and extension
func (m Migration) BaseName() string {
	return m.Version + "_" + m.Name
}

// Complete reports whether both directions exist
func (m Migration) Complete() bool {
	return m.HasUp && m.HasDown
}

// CreateMigration writes an empty up/down pair versioned by the current time
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	return createMigrationAt(migrationsDir, name, description, time.Now())
}

func createMigrationAt(migrationsDir, name, description string, now time.Time) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	version := now.UTC().Format("20060102150405")
	base := filepath.Join(migrationsDir, version+"_"+slug)
	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   now.UTC().Format(time.RFC3339),
		UpPath:      base + ".up.sql",
		DownPath:    base + ".down.sql",
	}

	if err := writeTemplate(mf.UpPath, mf, false); err != nil {
		return nil, err
	}
	if err := writeTemplate(mf.DownPath, mf, true); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func writeTemplate(path string, mf *MigrationFile, down bool) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	data := struct {
		Name, Description, Timestamp string
		Down                         bool
	}{mf.Name, mf.Description, mf.Timestamp, down}
	if err := migrationTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return nil
}

// sanitizeName lowercases name and collapses separators into underscores
func sanitizeName(name string) string {
	s := nonNameChars.ReplaceAllString(strings.ToLower(name), "")
	s = separatorRuns.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// ListMigrations returns the migrations in dir ordered by version. A missing
// directory yields an empty list.
func ListMigrations(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byBase := map[string]*Migration{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := migrationFiles.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		key := match[1] + "_" + match[2]
		m, ok := byBase[key]
		if !ok {
			m = &Migration{Version: match[1], Name: match[2]}
			byBase[key] = m
		}
		if match[3] == "up" {
			m.HasUp = true
		} else {
			m.HasDown = true
		}
	}

	out := make([]Migration, 0, len(byBase))
	for _, m := range byBase {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BaseName() < out[j].BaseName() })
	return out, nil
}
