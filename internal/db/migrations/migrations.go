// Package migrations embeds the SQL schema migrations and splits them into
// up and down sections.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.sql
var FS embed.FS

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"
)

// Migration is one schema version.
type Migration struct {
	Version string
	Up      string
	Down    string
}

// Load returns the embedded migrations sorted by version.
func Load() ([]Migration, error) {
	return LoadFS(FS)
}

// LoadFS reads every .sql file at the root of fsys as a migration.
func LoadFS(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var out []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		up, down := Split(string(content))
		if up == "" {
			return nil, fmt.Errorf("migration %s has no up section", entry.Name())
		}
		out = append(out, Migration{Version: entry.Name(), Up: up, Down: down})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Split separates a migration file into its up and down statements. A file
// without markers is all up.
func Split(content string) (up, down string) {
	up = content
	if idx := strings.Index(content, downMarker); idx != -1 {
		up = content[:idx]
		down = content[idx+len(downMarker):]
	}
	up = strings.TrimSpace(strings.Replace(up, upMarker, "", 1))
	return up, strings.TrimSpace(down)
}
