// Package provenance resolves an opaque matched filename into a citable
// public URL using a bulk metadata index: a CSV with a header row and a
// title/url column pair, following the Wikimedia Commons convention of
// "File:"-prefixed titles with spaces where filenames use underscores.
package provenance

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
)

// ErrNotFound means the normalized key has no index entry. Callers treat
// it as "no citation available", never as a hard failure.
var ErrNotFound = errors.New("provenance: title not found")

const titlePrefix = "File:"

// Index is an in-memory view of the metadata index. Lookups against the
// same Index are pure and idempotent. When duplicate titles occur the
// first row in index order wins.
type Index struct {
	urls map[string]string
}

// Open reads and parses the index file. An unreadable or malformed index
// is an error here, once, rather than once per lookup.
func Open(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata index: %w", err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) (*Index, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read metadata index header: %w", err)
	}
	titleCol, urlCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "title":
			titleCol = i
		case "url":
			urlCol = i
		}
	}
	if titleCol < 0 || urlCol < 0 {
		return nil, fmt.Errorf("metadata index missing title/url columns: %q", header)
	}

	urls := make(map[string]string)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read metadata index row: %w", err)
		}
		if titleCol >= len(record) || urlCol >= len(record) {
			continue
		}
		title := strings.TrimSpace(record[titleCol])
		if title == "" {
			continue
		}
		if _, ok := urls[title]; !ok {
			urls[title] = strings.TrimSpace(record[urlCol])
		}
	}
	return &Index{urls: urls}, nil
}

// NormalizeKey turns a matched filename into the index's key form:
// URL-decoded, trimmed, underscores replaced with spaces, and namespaced
// with the "File:" prefix.
func NormalizeKey(filename string) string {
	decoded, err := url.QueryUnescape(filename)
	if err != nil {
		// Stray percent signs are left as-is.
		decoded = filename
	}
	key := strings.TrimSpace(decoded)
	key = strings.ReplaceAll(key, "_", " ")
	if !strings.HasPrefix(key, titlePrefix) {
		key = titlePrefix + key
	}
	return key
}

// Resolve returns the public URL for filename, or ErrNotFound.
func (idx *Index) Resolve(filename string) (string, error) {
	u, ok := idx.urls[NormalizeKey(filename)]
	if !ok {
		return "", ErrNotFound
	}
	return u, nil
}
