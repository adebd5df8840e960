package domain

// ReferenceEntry maps a reference poster to the element an edit replaces and
// what must be preserved.
type ReferenceEntry struct {
	File    string `json:"file"`
	Replace string `json:"replace"`
	Keep    string `json:"keep,omitempty"`
}

// DefaultReferenceEntry applies to files without a catalog entry.
var DefaultReferenceEntry = ReferenceEntry{
	Replace: "the main graphic",
	Keep:    "the shirt, fabric texture, folds, colours, lighting and background",
}

// Reference is a resolved reference image ready to be sent to the image API.
type Reference struct {
	ReferenceEntry
	URL       string `json:"url"`
	InCatalog bool   `json:"in_catalog"`
}
