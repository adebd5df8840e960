package refs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"posterforge/internal/domain"
)

const previewLimit = 500

// BaseURL returns the public origin for reference URLs: the configured value
// when set, otherwise one derived from forwarding headers and Host.
func BaseURL(configured string, r *http.Request) string {
	if configured = strings.TrimRight(strings.TrimSpace(configured), "/"); configured != "" {
		return configured
	}
	proto := "https"
	host := "localhost:8080"
	if r != nil {
		if p := firstHeaderValue(r.Header.Get("X-Forwarded-Proto")); p == "http" || p == "https" {
			proto = p
		}
		if h := firstHeaderValue(r.Header.Get("X-Forwarded-Host")); h != "" {
			host = h
		} else if r.Host != "" {
			host = r.Host
		}
	}
	return proto + "://" + host
}

func firstHeaderValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.ToLower(strings.TrimSpace(v))
}

// ListingItem describes one image in the collection.
type ListingItem struct {
	File           string `json:"file"`
	URL            string `json:"url"`
	InCatalog      bool   `json:"in_catalog"`
	CatalogSnippet string `json:"catalog_snippet,omitempty"`
}

// Listing reports the collection against the catalog.
type Listing struct {
	Count            int           `json:"count"`
	CatalogKeys      []string      `json:"catalog_keys"`
	MissingInCatalog []string      `json:"missing_in_catalog"`
	MissingOnDisk    []string      `json:"missing_on_disk"`
	Items            []ListingItem `json:"items"`
	Tip              string        `json:"tip"`
}

// Listing builds a Listing for the current directory contents. Files without
// a catalog entry carry a ready-to-paste snippet using the default entry.
func (l *Library) Listing(ctx context.Context, base string) (*Listing, error) {
	files, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &Listing{
		Count:            len(files),
		CatalogKeys:      l.catalog.Files(),
		MissingInCatalog: []string{},
		MissingOnDisk:    []string{},
		Items:            make([]ListingItem, 0, len(files)),
		Tip:              fmt.Sprintf("Add missing filenames to the catalog file (%s) and restart the service.", catalogLabel(l.catalog)),
	}
	for _, f := range files {
		item := ListingItem{File: f, URL: URL(base, f), InCatalog: l.catalog.Has(f)}
		if !item.InCatalog {
			item.CatalogSnippet = Snippet(f)
			out.MissingInCatalog = append(out.MissingInCatalog, f)
		}
		out.Items = append(out.Items, item)
	}
	present := toSet(files)
	for _, f := range out.CatalogKeys {
		if _, ok := present[f]; !ok {
			out.MissingOnDisk = append(out.MissingOnDisk, f)
		}
	}
	return out, nil
}

// Snippet renders a catalog array element for file with the default entry.
func Snippet(file string) string {
	e := domain.DefaultReferenceEntry
	e.File = file
	b, _ := json.Marshal(e)
	return string(b)
}

func catalogLabel(c *Catalog) string {
	if c.Path() != "" {
		return c.Path()
	}
	return "REFS_CATALOG_PATH"
}

// Debug is a snapshot of the catalog file as it is on disk right now.
type Debug struct {
	CatalogPath   string `json:"catalog_path"`
	CatalogSource string `json:"catalog_source"`
	LoadedEntries int    `json:"loaded_entries"`
	RefsDir       string `json:"refs_dir"`
	BaseURL       string `json:"base_url"`
	RefsURL       string `json:"refs_url"`
	FileOK        bool   `json:"file_ok"`
	FileError     string `json:"file_error,omitempty"`
	FilePreview   string `json:"file_preview,omitempty"`
	Count         int    `json:"count"`
	Valid         bool   `json:"valid"`
	ValidityError string `json:"validity_error,omitempty"`
}

// Debug re-reads the catalog file and reports whether it would load.
func (l *Library) Debug(base string) *Debug {
	d := &Debug{
		CatalogPath:   l.catalog.Path(),
		CatalogSource: l.catalog.Source(),
		LoadedEntries: l.catalog.Len(),
		RefsDir:       l.dir,
		BaseURL:       base,
		RefsURL:       strings.TrimRight(base, "/") + "/refs/",
	}
	if d.CatalogPath == "" {
		d.FileError = "no catalog file configured"
		return d
	}
	data, err := os.ReadFile(d.CatalogPath)
	if err != nil {
		d.FileError = err.Error()
		return d
	}
	d.FileOK = true
	preview := string(data)
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
	}
	d.FilePreview = preview
	entries, err := ParseCatalog(data)
	if err != nil {
		d.ValidityError = err.Error()
		return d
	}
	d.Count = len(entries)
	d.Valid = true
	return d
}
