// Package refs manages the reference poster collection: the catalog of
// replace/keep descriptions, the image directory and random selection.
package refs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"posterforge/internal/domain"
)

// Catalog sources.
const (
	SourceFile    = "file"
	SourceBuiltin = "builtin"
)

// Catalog is an immutable lookup of reference entries keyed by exact,
// case-sensitive filename.
type Catalog struct {
	path    string
	source  string
	entries map[string]domain.ReferenceEntry
	files   []string
}

// The catalog file is either an array of {file, replace, keep} objects or an
// object keyed by filename.
const catalogSchemaJSON = `{
  "oneOf": [
    {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["file", "replace"],
        "properties": {
          "file": {"type": "string", "minLength": 1},
          "replace": {"type": "string", "minLength": 1},
          "keep": {"type": "string"}
        }
      }
    },
    {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["replace"],
        "properties": {
          "replace": {"type": "string", "minLength": 1},
          "keep": {"type": "string"}
        }
      }
    }
  ]
}`

var catalogSchema = func() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(catalogSchemaJSON))
	if err != nil {
		panic(err)
	}
	return s
}()

var builtinEntries = []domain.ReferenceEntry{
	{File: "536000820_18084508084870705_1863751485079456271_n.png", Replace: "metal engine behind skull", Keep: "skull and fire"},
	{File: "532324876_18083609578870705_7786025600770441868_n.png", Replace: "skull", Keep: "purple and red cobra snake"},
	{File: "520941856_18082385257870705_3068542842883755053_n.png", Replace: "cards and chips", Keep: "chrome revolver silhouette and orange glow"},
	{File: "491416516_18073621093870705_1553309421817675182_n.png", Replace: "skulls on floor", Keep: "hooded figure and crossed emblem"},
	{File: "491415021_18072545323870705_8507131698627680283_n.png", Replace: "car", Keep: "city background and border chains"},
	{File: "490757356_18072793927870705_5264794875672410706_n.png", Replace: "golden dragon", Keep: "samurai and energy blade motif"},
	{File: "483086357_18068930341870705_8434049462797539537_n.png", Replace: "skull", Keep: "barbed wire"},
	{File: "477528558_18067213492870705_5202122066376182871_n.png", Replace: "person and guns", Keep: "barbed wire and lightning"},
	{File: "476075948_18066024388870705_4787732589082743204_n.png", Replace: "globe", Keep: "sword-like shape, electric energy, and skeletal form"},
}

// BuiltinCatalog returns the catalog compiled into the binary.
func BuiltinCatalog() *Catalog {
	return newCatalog("", SourceBuiltin, builtinEntries)
}

// LoadCatalog reads the catalog at path. An empty path or a missing file
// yields the builtin catalog; a present but invalid file is an error.
func LoadCatalog(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return BuiltinCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		c := BuiltinCatalog()
		c.path = path
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("refs: read catalog: %w", err)
	}
	entries, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("refs: catalog %s: %w", path, err)
	}
	return newCatalog(path, SourceFile, entries), nil
}

// ParseCatalog validates and decodes a catalog document.
func ParseCatalog(data []byte) ([]domain.ReferenceEntry, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	result, err := catalogSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("catalog validation failed: %v", errs)
	}

	var entries []domain.ReferenceEntry
	switch doc.(type) {
	case []any:
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, err
		}
	default:
		var keyed map[string]domain.ReferenceEntry
		if err := json.Unmarshal(data, &keyed); err != nil {
			return nil, err
		}
		for file, e := range keyed {
			e.File = file
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].File < entries[j].File })
	}
	for i := range entries {
		entries[i].File = strings.TrimSpace(entries[i].File)
		entries[i].Replace = strings.TrimSpace(entries[i].Replace)
		entries[i].Keep = strings.TrimSpace(entries[i].Keep)
		if !IsImageFile(entries[i].File) {
			return nil, fmt.Errorf("entry %d: %q is not a png, jpg or webp file", i, entries[i].File)
		}
	}
	return entries, nil
}

func newCatalog(path, source string, entries []domain.ReferenceEntry) *Catalog {
	c := &Catalog{path: path, source: source, entries: make(map[string]domain.ReferenceEntry, len(entries))}
	for _, e := range entries {
		if _, dup := c.entries[e.File]; !dup {
			c.files = append(c.files, e.File)
		}
		c.entries[e.File] = e
	}
	return c
}

// Path is the configured catalog location, empty for the builtin catalog.
func (c *Catalog) Path() string { return c.path }

// Source reports whether entries came from a file or the builtin list.
func (c *Catalog) Source() string { return c.source }

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.files) }

// Files returns the catalog filenames in catalog order.
func (c *Catalog) Files() []string {
	return append([]string(nil), c.files...)
}

// Has reports whether file has its own entry.
func (c *Catalog) Has(file string) bool {
	_, ok := c.entries[file]
	return ok
}

// Entry returns the entry for file, or the default entry when there is none.
// Missing keep text is filled from the default.
func (c *Catalog) Entry(file string) domain.ReferenceEntry {
	e, ok := c.entries[file]
	if !ok {
		e = domain.DefaultReferenceEntry
	}
	e.File = file
	if e.Replace == "" {
		e.Replace = domain.DefaultReferenceEntry.Replace
	}
	if e.Keep == "" {
		e.Keep = domain.DefaultReferenceEntry.Keep
	}
	return e
}
