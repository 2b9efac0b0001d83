package schemaver

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Create creates a new sql migration file in the migration directory.
//
//   cmd:     migration.Create("create_user_table")
//   created: database/migrations/20190225150455_create_user_table.sql
//   return:  20190225150455_create_user_table.sql
//
// The migration directory will be automatically created if it doesn't exist.
func (m *Migrator) Create(name string) (filename string, err error) {
	now := m.now()
	file := m.formatter(name, now) + ".sql"
	header := fmt.Sprintf("/**\n* Name: %s\n* Date: %s\n*/\n\n%s\n\n%s\n", name, now.Format(time.RFC3339), upMarker, downMarker)

	if err := m.write(file, []byte(header)); err != nil {
		return "", err
	}
	return file, nil
}

// CreateGo creates a new Go migration file in the migration directory. The
// file belongs to package pkg and registers itself with DefaultRegistry.
func (m *Migrator) CreateGo(pkg, name string) (filename string, err error) {
	now := m.now()
	base := m.formatter(name, now)
	version, err := parseVersion(base)
	if err != nil {
		return "", fmt.Errorf("filename formatter produced an unversioned name %q: %v", base, err)
	}

	var buf bytes.Buffer
	err = goStub.Execute(&buf, struct {
		Package string
		Name    string
		Date    string
		File    string
		Version int64
	}{pkg, name, now.Format(time.RFC3339), base + ".go", version})
	if err != nil {
		return "", fmt.Errorf("failed to render Go migration: %v", err)
	}

	if err := m.write(base+".go", buf.Bytes()); err != nil {
		return "", err
	}
	return base + ".go", nil
}

func (m *Migrator) write(file string, content []byte) error {
	if err := os.MkdirAll(m.path, 0755); err != nil {
		return fmt.Errorf("failed to create migrations directory %q: %v", m.path, err)
	}

	path := filepath.Join(m.path, file)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("migration %q already exists", path)
	}
	if err := ioutil.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to create migration at %q: %v", path, err)
	}

	return nil
}

func defaultFilenameFormatter(name string, now time.Time) string {
	return now.UTC().Format(defaultTimestampFormat) + "_" + sanitizeName(name)
}

// sanitizeName lowercases name and replaces every non alphanumeric character with an underscore.
func sanitizeName(name string) string {
	name = strings.TrimSuffix(strings.TrimSuffix(name, ".sql"), ".go")
	return unsafeNameChars.ReplaceAllString(strings.ToLower(name), "_")
}

var goStub = template.Must(template.New("migration").Parse(`package {{.Package}}

import (
	"context"

	"github.com/denisbrodbeck/schemaver"
)

// Name: {{.Name}}
// Date: {{.Date}}

func init() {
	schemaver.Register("{{.File}}", up{{.Version}}, down{{.Version}})
}

// up{{.Version}} migrates up to version {{.Version}}.
func up{{.Version}}(ctx context.Context, s *schemaver.Session) error {
	return nil
}

// down{{.Version}} migrates down from version {{.Version}}.
func down{{.Version}}(ctx context.Context, s *schemaver.Session) error {
	return nil
}
`))
