package metadata

import (
	"fmt"
	"path"
	"strconv"
)

// UnknownBook is the directory name used when a book has no usable title.
const UnknownBook = "Unknown Book"

// BookPath derives the slash-separated virtual directory path for a book.
//
// Books in a series live under "Author/Series/Book N" where N is the series
// index truncated to an integer. A missing or non-numeric series index falls
// back to the book title. Standalone books live under "Author/Title".
// The result is cleaned and never empty.
func BookPath(meta BookMetadata) string {
	if meta.Series != "" {
		return path.Join(meta.Author, meta.Series, seriesBookDir(meta))
	}
	return path.Join(meta.Author, titleDir(meta))
}

func seriesBookDir(meta BookMetadata) string {
	idx, err := strconv.ParseFloat(meta.SeriesIndex, 64)
	if err != nil {
		metaLogger.Warn("Invalid series index %q for series %q, using book title instead",
			meta.SeriesIndex, meta.Series)
		return titleDir(meta)
	}
	return fmt.Sprintf("Book %d", int(idx))
}

func titleDir(meta BookMetadata) string {
	if meta.Title == "" {
		return UnknownBook
	}
	return meta.Title
}
