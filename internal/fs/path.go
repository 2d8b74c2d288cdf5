package fs

import (
	"path"
	"strings"
)

// VirtualPath represents a path in the virtual filesystem.
// All paths are absolute, cleaned, slash-separated, and free of
// "." and ".." segments.
type VirtualPath struct {
	path string
}

// NewVirtualPath creates a new VirtualPath instance.
// It cleans the path and ensures it's absolute.
func NewVirtualPath(p string) *VirtualPath {
	cleaned := path.Clean(p)
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	return &VirtualPath{path: cleaned}
}

// String returns the string representation of the path
func (vp *VirtualPath) String() string {
	return vp.path
}

// Child returns the VirtualPath for a directly nested name
func (vp *VirtualPath) Child(name string) *VirtualPath {
	return NewVirtualPath(vp.path + "/" + name)
}

// Parent returns a VirtualPath representing the parent directory
func (vp *VirtualPath) Parent() *VirtualPath {
	return NewVirtualPath(path.Dir(vp.path))
}

// Base returns the last element of the path
func (vp *VirtualPath) Base() string {
	return path.Base(vp.path)
}

// IsRoot returns true if this is the root virtual path "/"
func (vp *VirtualPath) IsRoot() bool {
	return vp.path == "/"
}
