// Package catalog serves the list of suggested subject names.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"
)

// Fallback is served when no catalog file can be read.
var Fallback = []string{
	"Biology",
	"Chemistry",
	"Computer Science",
	"Economics",
	"English",
	"Geography",
	"History",
	"Mathematics",
	"Physics",
	"Psychology",
}

// Parse reads subject names from the first column of a CSV document. Blank
// names are dropped, the rest are trimmed and sorted.
func Parse(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	out := []string{}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse catalog: %w", err)
		}
		if len(rec) == 0 {
			continue
		}
		if name := strings.TrimSpace(rec[0]); name != "" {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Load reads the catalog at path, returning Fallback when path is empty or
// the file cannot be read.
func Load(path string) []string {
	if path == "" {
		return slices.Clone(Fallback)
	}
	f, err := os.Open(path)
	if err != nil {
		log.Printf("catalog: %v, using fallback list", err)
		return slices.Clone(Fallback)
	}
	defer f.Close()

	names, err := Parse(f)
	if err != nil {
		log.Printf("catalog: %v, using fallback list", err)
		return slices.Clone(Fallback)
	}
	return names
}
