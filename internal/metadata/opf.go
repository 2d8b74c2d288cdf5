// Package metadata parses per-book OPF descriptor files and derives the
// virtual directory path each book is exposed under.
package metadata

import (
	"encoding/xml"
	"os"
	"strings"
	"unicode"

	"bookfs/internal/logging"
)

var (
	metaLogger = logging.GetLogger().WithPrefix("metadata")
)

// DescriptorName is the file name that marks a directory as a book's
// real storage directory.
const DescriptorName = "metadata.opf"

const (
	// UnknownAuthor is the author used when a descriptor carries none.
	UnknownAuthor = "Unknown Author"
	// UnknownTitle is the title used when a descriptor carries none.
	UnknownTitle = "Unknown Title"
)

// BookMetadata is the sanitized metadata record for one book.
// Author and Title are never empty. Series and SeriesIndex are empty
// when the descriptor carries no series placement.
type BookMetadata struct {
	Author      string
	Title       string
	Series      string
	SeriesIndex string
}

// Fallback returns the record used for descriptors that cannot be parsed.
func Fallback() BookMetadata {
	return BookMetadata{Author: UnknownAuthor, Title: UnknownTitle}
}

// opfPackage mirrors the two-namespace OPF descriptor schema: Dublin Core
// elements for creator/title, and meta elements carrying the series
// placement in their content attribute.
type opfPackage struct {
	Metadata opfMetadata `xml:"metadata"`
}

type opfMetadata struct {
	Creators []string  `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Titles   []string  `xml:"http://purl.org/dc/elements/1.1/ title"`
	Meta     []opfMeta `xml:"meta"`
}

type opfMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

// ParseFile reads and parses one descriptor file. On failure it returns the
// fallback record together with the error, so a malformed descriptor still
// yields a usable book entry.
func ParseFile(path string) (BookMetadata, error) {
	metaLogger.Trace("Parsing descriptor: %q", path)

	data, err := os.ReadFile(path)
	if err != nil {
		metaLogger.Error("Failed to read descriptor %q: %v", path, err)
		return Fallback(), err
	}
	return Parse(data)
}

// Parse parses descriptor markup. Same failure contract as ParseFile.
func Parse(data []byte) (BookMetadata, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		metaLogger.Error("Failed to parse descriptor: %v", err)
		return Fallback(), err
	}

	meta := BookMetadata{Author: UnknownAuthor, Title: UnknownTitle}

	if len(pkg.Metadata.Creators) > 0 {
		if author := Sanitize(pkg.Metadata.Creators[0]); author != "" {
			meta.Author = author
		}
	}
	if len(pkg.Metadata.Titles) > 0 {
		if title := Sanitize(pkg.Metadata.Titles[0]); title != "" {
			meta.Title = title
		}
	}

	for _, m := range pkg.Metadata.Meta {
		switch m.Name {
		case "calibre:series":
			meta.Series = Sanitize(m.Content)
		case "calibre:series_index":
			meta.SeriesIndex = m.Content
		}
	}

	metaLogger.Trace("Parsed metadata: author=%q title=%q series=%q index=%q",
		meta.Author, meta.Title, meta.Series, meta.SeriesIndex)
	return meta, nil
}

// safeChars are the non-alphanumeric characters kept by Sanitize.
const safeChars = "-_.() "

// Sanitize makes a metadata string safe for use as a path segment.
// Alphanumerics and the characters in safeChars pass through, everything
// else becomes '_', and runs of whitespace collapse to single spaces.
// Sanitize is idempotent.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(safeChars, r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
