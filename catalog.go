package schemaver

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

// A Descriptor identifies one available migration.
type Descriptor struct {
	// Version is parsed from the leading digits of the source name.
	Version int64

	// Name is the base name of the source, e.g. 20190305173612_create_users.sql
	Name string

	// Source locates the migration: a slash separated path inside the
	// migrations file system or the name a Go migration was registered with.
	Source string
}

// Catalog is the ordered set of available migrations keyed by version.
type Catalog struct {
	versions    []int64
	descriptors map[int64]Descriptor
}

// NewCatalog parses the version of every source and returns the resulting catalog.
//
// Duplicate versions are a hard failure.
func NewCatalog(sources []string) (*Catalog, error) {
	c := &Catalog{descriptors: make(map[int64]Descriptor, len(sources))}

	for _, src := range sources {
		name := path.Base(src)
		version, err := parseVersion(name)
		if err != nil {
			return nil, &ParseError{Source: src, Reason: err.Error()}
		}
		if prev, exist := c.descriptors[version]; exist {
			return nil, &DuplicateVersionError{Version: version, Source: src, Conflict: prev.Source}
		}
		c.descriptors[version] = Descriptor{Version: version, Name: name, Source: src}
		c.versions = append(c.versions, version)
	}

	sort.Slice(c.versions, func(i, j int) bool { return c.versions[i] < c.versions[j] })

	return c, nil
}

// LoadCatalog enumerates the migration files directly inside dir.
//
// Only regular files beginning with a decimal digit are considered, Go test
// files are skipped. An empty dir is treated as ".".
func LoadCatalog(fsys fs.FS, dir string) (*Catalog, error) {
	if dir == "" {
		dir = "."
	}
	nodes, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get list of migration files from %q: %v", dir, err)
	}

	sources := []string{}
	for _, node := range nodes {
		if !node.Type().IsRegular() {
			continue
		}
		name := node.Name()
		if !startsWithDigit(name) || strings.HasSuffix(name, "_test.go") {
			continue
		}
		sources = append(sources, path.Join(dir, name))
	}

	return NewCatalog(sources)
}

// Len returns the number of available migrations.
func (c *Catalog) Len() int { return len(c.versions) }

// Versions returns all versions in ascending order.
func (c *Catalog) Versions() []int64 {
	versions := make([]int64, len(c.versions))
	copy(versions, c.versions)
	return versions
}

// Descriptor returns the migration registered for version.
func (c *Catalog) Descriptor(version int64) (Descriptor, bool) {
	d, ok := c.descriptors[version]
	return d, ok
}

// MinVersion returns the lowest available version or 0 for an empty catalog.
func (c *Catalog) MinVersion() int64 {
	if len(c.versions) == 0 {
		return 0
	}
	return c.versions[0]
}

// MaxVersion returns the highest available version.
//
// The catalog must not be empty; check Len first. An empty catalog returns 0,
// which is indistinguishable from the sentinel version.
func (c *Catalog) MaxVersion() int64 {
	if len(c.versions) == 0 {
		return 0
	}
	return c.versions[len(c.versions)-1]
}

// parseVersion reads the leading digit run of name.
func parseVersion(name string) (int64, error) {
	end := 0
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("name does not begin with a version number")
	}
	version, err := strconv.ParseInt(name[:end], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("version %q is out of range", name[:end])
	}
	if version == 0 {
		return 0, fmt.Errorf("version 0 is reserved")
	}
	return version, nil
}

func startsWithDigit(name string) bool {
	return name != "" && name[0] >= '0' && name[0] <= '9'
}
