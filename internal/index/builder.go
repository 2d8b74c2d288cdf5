package index

import (
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"bookfs/internal/logging"
	"bookfs/internal/metadata"
)

var (
	buildLogger = logging.GetLogger().WithPrefix("build")
)

// Build walks the library root and populates a fresh Index. Every directory
// containing a descriptor file is treated as one book: its descriptor is
// parsed, a virtual book path derived, and every file and subdirectory under
// it rebased beneath that virtual path.
//
// Build runs to completion before the index is queryable. A malformed
// descriptor or an unreadable subtree is logged and skipped, never aborting
// the walk; an inaccessible root yields an empty index.
func Build(root string) *Index {
	ix := newIndex()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		buildLogger.Error("Failed to resolve library root %q: %v", root, err)
		absRoot = root
	}

	buildLogger.Info("Scanning library: %s", absRoot)
	for _, bookDir := range findBookDirs(absRoot) {
		addBook(ix, bookDir)
	}

	buildLogger.Info("Indexed %d books: %d files, %d directories",
		ix.Books(), ix.Files(), ix.Dirs())
	return ix
}

// findBookDirs returns every directory under root that contains a
// descriptor file.
func findBookDirs(root string) []string {
	var bookDirs []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			buildLogger.Warn("Skipping unreadable path %q: %v", p, err)
			return nil
		}
		if !d.IsDir() && d.Name() == metadata.DescriptorName {
			bookDirs = append(bookDirs, filepath.Dir(p))
		}
		return nil
	})
	if err != nil {
		buildLogger.Error("Library scan failed: %v", err)
	}
	buildLogger.Debug("Found %d book directories", len(bookDirs))
	return bookDirs
}

// addBook indexes a single book directory under its derived virtual path.
func addBook(ix *Index, bookDir string) {
	meta, err := metadata.ParseFile(filepath.Join(bookDir, metadata.DescriptorName))
	if err != nil {
		// Fallback record still gets indexed so the book stays reachable.
		buildLogger.Warn("Using fallback metadata for %q: %v", bookDir, err)
	}

	vbook := "/" + metadata.BookPath(meta)
	buildLogger.Debug("Registering book %q -> %q", bookDir, vbook)
	addAncestors(ix, vbook)
	ix.books++

	walkErr := filepath.WalkDir(bookDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			buildLogger.Warn("Skipping unreadable path %q: %v", p, err)
			return nil
		}
		if p == bookDir {
			return nil
		}
		rel, relErr := filepath.Rel(bookDir, p)
		if relErr != nil {
			buildLogger.Error("Failed to relativize %q under %q: %v", p, bookDir, relErr)
			return nil
		}
		vpath := path.Join(vbook, filepath.ToSlash(rel))
		if d.IsDir() {
			ix.addDir(vpath)
			return nil
		}
		if previous, collided := ix.addFile(vpath, p); collided && previous != p {
			buildLogger.Warn("Virtual path collision on %q: %q overwrites %q",
				vpath, p, previous)
		}
		return nil
	})
	if walkErr != nil {
		buildLogger.Error("Failed to walk book directory %q: %v", bookDir, walkErr)
	}
}

// addAncestors registers the book path and every ancestor segment of it.
func addAncestors(ix *Index, vbook string) {
	segments := strings.Split(strings.Trim(vbook, "/"), "/")
	for i := 1; i <= len(segments); i++ {
		ix.addDir("/" + path.Join(segments[:i]...))
	}
}
