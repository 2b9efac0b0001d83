package schemaver

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"strings"
)

const (
	upMarker   = "-- schemaver:up"
	downMarker = "-- schemaver:down"
)

// sqlMigration is a migration read from a .sql file.
//
// The file is split by marker lines:
//
//   -- schemaver:up
//   CREATE TABLE users (id BIGINT);
//   -- schemaver:down
//   DROP TABLE users;
//
// Text before the first marker is ignored when the file has an up marker.
// Otherwise that text is the up script, so a file without any marker runs
// completely as up and has an empty down.
type sqlMigration struct {
	source string
	up     string
	down   string
}

func loadSQLMigration(fsys fs.FS, source string) (*sqlMigration, error) {
	buf, err := fs.ReadFile(fsys, source)
	if err != nil {
		return nil, fmt.Errorf("failed to read file contents of %q: %v", source, err)
	}
	up, down := splitSections(buf)
	return &sqlMigration{source: source, up: up, down: down}, nil
}

func (m *sqlMigration) Up(ctx context.Context, s *Session) error {
	return m.exec(ctx, s, m.up)
}

func (m *sqlMigration) Down(ctx context.Context, s *Session) error {
	return m.exec(ctx, s, m.down)
}

func (m *sqlMigration) exec(ctx context.Context, s *Session, script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}
	if _, err := s.Exec(ctx, script); err != nil {
		return &DriverError{"failed to execute SQL script " + m.source, err}
	}
	return nil
}

// splitSections returns the up and down scripts of a migration file.
func splitSections(buf []byte) (up, down string) {
	if !hasMarker(buf) {
		return string(buf), ""
	}

	var preamble, upBuf, downBuf strings.Builder
	current := &preamble
	sawUp := false

	scanner := bufio.NewScanner(bytes.NewReader(buf))
	scanner.Buffer(make([]byte, 0, 64*1024), len(buf)+1)
	for scanner.Scan() {
		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case upMarker:
			current = &upBuf
			sawUp = true
			continue
		case downMarker:
			current = &downBuf
			continue
		}
		current.WriteString(line)
		current.WriteByte('\n')
	}

	if !sawUp {
		return preamble.String(), downBuf.String()
	}
	return upBuf.String(), downBuf.String()
}

func hasMarker(buf []byte) bool {
	for _, line := range bytes.Split(buf, []byte("\n")) {
		switch string(bytes.TrimSpace(line)) {
		case upMarker, downMarker:
			return true
		}
	}
	return false
}
