package migrate

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var (
	fileNameRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
	slugRe     = regexp.MustCompile(`[^a-z0-9]+`)
)

// NewFile writes an empty goose migration named <version>_<slug>.sql into dir.
func NewFile(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	full := filepath.Join(dir, now.UTC().Format(versionLayout)+"_"+slug+".sql")
	body := "-- +goose Up\n-- " + slug + "\n\n-- +goose Down\n-- revert " + slug + "\n"

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %q: %w", full, err)
	}
	defer f.Close()
	if _, err := f.WriteString(body); err != nil {
		return "", fmt.Errorf("write %q: %w", full, err)
	}
	return full, nil
}

// Validate checks names, version ordering and the Up/Down markers of every
// .sql file at the root of fsys.
func Validate(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	var last int64
	count := 0
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}
		m := fileNameRe.FindStringSubmatch(e.Name())
		if m == nil {
			return fmt.Errorf("%s: want <YYYYMMDDHHMMSS>_<name>.sql", e.Name())
		}
		version, _ := strconv.ParseInt(m[1], 10, 64)
		if version == last {
			return fmt.Errorf("%s: version %d used twice", e.Name(), version)
		}
		last = version

		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", e.Name(), err)
		}
		up := bytes.Index(data, []byte("-- +goose Up"))
		down := bytes.Index(data, []byte("-- +goose Down"))
		switch {
		case up < 0:
			return fmt.Errorf("%s: no up section", e.Name())
		case down < 0:
			return fmt.Errorf("%s: no down section", e.Name())
		case down < up:
			return fmt.Errorf("%s: down section precedes up", e.Name())
		}
		count++
	}

	if count == 0 {
		return fmt.Errorf("no migrations found")
	}
	return nil
}
