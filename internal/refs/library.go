package refs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"posterforge/internal/domain"
)

var imageExt = regexp.MustCompile(`(?i)\.(png|jpe?g|webp)$`)

// IsImageFile reports whether name has a png, jpg, jpeg or webp extension.
func IsImageFile(name string) bool {
	return imageExt.MatchString(name)
}

// Library is the reference image collection on disk plus its catalog.
type Library struct {
	dir     string
	catalog *Catalog
}

// NewLibrary roots a Library at dir. A nil catalog means the builtin one.
func NewLibrary(dir string, catalog *Catalog) *Library {
	if catalog == nil {
		catalog = BuiltinCatalog()
	}
	return &Library{dir: strings.TrimSpace(dir), catalog: catalog}
}

// Dir returns the configured image directory.
func (l *Library) Dir() string { return l.dir }

// Catalog returns the catalog backing the library.
func (l *Library) Catalog() *Catalog { return l.catalog }

// List returns the sorted image filenames in the directory. When the
// directory is absent the catalog filenames are returned instead, for
// deployments that host the images elsewhere.
func (l *Library) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.dir == "" {
		return l.catalog.Files(), nil
	}
	dirEntries, err := os.ReadDir(l.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return l.catalog.Files(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("refs: read dir: %w", err)
	}
	var files []string
	for _, de := range dirEntries {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		if IsImageFile(de.Name()) {
			files = append(files, de.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Resolve builds the reference for file, served under base.
func (l *Library) Resolve(base, file string) (domain.Reference, error) {
	clean, err := sanitizeName(file)
	if err != nil {
		return domain.Reference{}, err
	}
	return domain.Reference{
		ReferenceEntry: l.catalog.Entry(clean),
		URL:            URL(base, clean),
		InCatalog:      l.catalog.Has(clean),
	}, nil
}

// URL returns the public address of a reference image.
func URL(base, file string) string {
	return strings.TrimRight(base, "/") + "/refs/" + url.PathEscape(file)
}

// sanitizeName accepts a bare image filename and rejects anything that could
// address a file outside the collection.
func sanitizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: file is required", domain.ErrInvalidInput)
	}
	if strings.ContainsAny(name, `/\`) || path.Clean(name) != name || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: invalid file name %q", domain.ErrInvalidInput, name)
	}
	if !IsImageFile(name) {
		return "", fmt.Errorf("%w: %q is not a png, jpg or webp file", domain.ErrInvalidInput, name)
	}
	return name, nil
}
