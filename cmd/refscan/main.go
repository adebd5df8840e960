package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"posterforge/internal/refs"
)

func main() {
	_ = godotenv.Load()

	var (
		dirFlag     string
		catalogFlag string
		baseFlag    string
		jsonFlag    bool
		strictFlag  bool
	)
	flag.StringVar(&dirFlag, "dir", envOr("REFS_DIR", "public/refs"), "Reference image directory")
	flag.StringVar(&catalogFlag, "catalog", envOr("REFS_CATALOG_PATH", "public/refs-map.json"), "Catalog file to validate")
	flag.StringVar(&baseFlag, "base", envOr("PUBLIC_BASE_URL", "http://localhost:8080"), "Public base URL used for image links")
	flag.BoolVar(&jsonFlag, "json", false, "Print the full listing as JSON")
	flag.BoolVar(&strictFlag, "strict", false, "Exit non-zero when catalog and directory disagree")
	flag.Parse()

	catalog, err := refs.LoadCatalog(catalogFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "refscan: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	lib := refs.NewLibrary(dirFlag, catalog)
	listing, err := lib.Listing(ctx, baseFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "refscan: %v\n", err)
		os.Exit(1)
	}

	if jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(listing)
	} else {
		fmt.Printf("catalog: %s (%s, %d entries)\n", catalogFlag, catalog.Source(), catalog.Len())
		fmt.Printf("images:  %s (%d files)\n", dirFlag, listing.Count)
		if len(listing.MissingInCatalog) > 0 {
			fmt.Println("\nno catalog entry (paste into the catalog array):")
			for _, f := range listing.MissingInCatalog {
				fmt.Printf("  %s\n", refs.Snippet(f))
			}
		}
		if len(listing.MissingOnDisk) > 0 {
			fmt.Println("\ncatalog entries without an image:")
			for _, f := range listing.MissingOnDisk {
				fmt.Printf("  %s\n", f)
			}
		}
	}

	if strictFlag && (len(listing.MissingInCatalog) > 0 || len(listing.MissingOnDisk) > 0) {
		os.Exit(2)
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
