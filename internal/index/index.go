// Package index holds the virtual-to-real path index and the builder that
// populates it from a book library on disk.
package index

import (
	"path"
	"sort"
)

// Entry is one child of a virtual directory.
type Entry struct {
	Name string
	Dir  bool
}

// Index is the bidirectional projection of a book library: a mapping from
// virtual file paths to real on-disk paths, and the set of virtual
// directories above them. It is populated once by Build and read-only
// afterward, so queries from concurrent callers need no locking.
//
// The root "/" is implicit and never stored.
type Index struct {
	files map[string]string
	dirs  map[string]struct{}
	books int
}

func newIndex() *Index {
	return &Index{
		files: make(map[string]string),
		dirs:  make(map[string]struct{}),
	}
}

// RealPath returns the on-disk path backing a virtual file path.
func (ix *Index) RealPath(vpath string) (string, bool) {
	real, ok := ix.files[vpath]
	return real, ok
}

// IsDir reports whether a virtual path is a directory.
func (ix *Index) IsDir(vpath string) bool {
	if vpath == "/" {
		return true
	}
	_, ok := ix.dirs[vpath]
	return ok
}

// List returns the immediate children of a virtual directory, sorted by
// name. Listing a path that is not a directory returns no entries.
func (ix *Index) List(vpath string) []Entry {
	var entries []Entry
	for dir := range ix.dirs {
		if path.Dir(dir) == vpath {
			entries = append(entries, Entry{Name: path.Base(dir), Dir: true})
		}
	}
	for file := range ix.files {
		if path.Dir(file) == vpath {
			entries = append(entries, Entry{Name: path.Base(file)})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Books returns the number of books registered during the build.
func (ix *Index) Books() int {
	return ix.books
}

// Files returns the number of indexed files.
func (ix *Index) Files() int {
	return len(ix.files)
}

// Dirs returns the number of virtual directories, excluding the root.
func (ix *Index) Dirs() int {
	return len(ix.dirs)
}

// addFile registers a virtual-to-real file mapping. A collision overwrites
// the earlier entry; the caller is expected to have logged it.
func (ix *Index) addFile(vpath, real string) (previous string, collided bool) {
	previous, collided = ix.files[vpath]
	ix.files[vpath] = real
	return previous, collided
}

// addDir registers a virtual directory. The root is never stored.
func (ix *Index) addDir(vpath string) {
	if vpath == "/" {
		return
	}
	ix.dirs[vpath] = struct{}{}
}
