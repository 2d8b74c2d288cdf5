package fs

import (
	"context"
	"os"
	"syscall"

	"bookfs/internal/logging"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	dirLogger = logging.GetLogger().WithPrefix("dir")
)

// Dir represents a directory in the virtual filesystem: the root, an
// author, a series, or a book directory derived from metadata.
type Dir struct {
	fs   *BookFS
	path *VirtualPath
}

// Attr implements the Node interface, returning directory attributes.
func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	dirLogger.Trace("Getting attributes for directory: %q", d.path.String())
	a.Mode = os.ModeDir | 0755
	a.Nlink = 2
	a.Uid = d.fs.uid
	a.Gid = d.fs.gid
	return nil
}

// Lookup implements the NodeStringLookuper interface, finding a child node.
func (d *Dir) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	dirLogger.Trace("Looking up %q in directory %q", name, d.path.String())
	childPath := d.path.Child(name)

	if d.fs.idx.IsDir(childPath.String()) {
		dirLogger.Trace("Found directory: %q", childPath.String())
		return &Dir{fs: d.fs, path: childPath}, nil
	}

	if realPath, ok := d.fs.idx.RealPath(childPath.String()); ok {
		dirLogger.Trace("Found file: %q -> %q", childPath.String(), realPath)
		return &File{
			fs:       d.fs,
			path:     childPath,
			realPath: realPath,
		}, nil
	}

	dirLogger.Debug("Path not found: %q", childPath.String())
	return nil, ToFuseError(NewFSError(OpLookup, childPath.String(), ErrNotFound))
}

// ReadDirAll implements the HandleReadDirAller interface, listing directory
// contents from the index. Listing a path that is not a directory yields
// only the standard entries.
func (d *Dir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	dirLogger.Debug("Reading directory contents: %q", d.path.String())

	entries := []fuse.Dirent{
		{Name: ".", Type: fuse.DT_Dir},
		{Name: "..", Type: fuse.DT_Dir},
	}

	for _, entry := range d.fs.idx.List(d.path.String()) {
		entryType := fuse.DT_File
		if entry.Dir {
			entryType = fuse.DT_Dir
		}
		entries = append(entries, fuse.Dirent{Name: entry.Name, Type: entryType})
	}

	dirLogger.Debug("Directory %q contains %d entries", d.path.String(), len(entries))
	return entries, nil
}

// Create implements the NodeCreater interface. The filesystem is a
// projection of existing storage, so file creation is always denied.
func (d *Dir) Create(_ context.Context, req *fuse.CreateRequest, _ *fuse.CreateResponse) (fusefs.Node, fusefs.Handle, error) {
	childPath := d.path.Child(req.Name)
	dirLogger.Warn("Denied attempt to create file: %q", childPath.String())
	return nil, nil, ToFuseError(NewFSError(OpCreate, childPath.String(), ErrAccessDenied))
}

// Mkdir implements the NodeMkdirer interface. Always denied.
func (d *Dir) Mkdir(_ context.Context, req *fuse.MkdirRequest) (fusefs.Node, error) {
	childPath := d.path.Child(req.Name)
	dirLogger.Warn("Denied attempt to create directory: %q", childPath.String())
	return nil, ToFuseError(NewFSError(OpMkdir, childPath.String(), ErrAccessDenied))
}

// Remove implements the NodeRemover interface, covering both unlink and
// rmdir. Always denied.
func (d *Dir) Remove(_ context.Context, req *fuse.RemoveRequest) error {
	childPath := d.path.Child(req.Name)
	if req.Dir {
		dirLogger.Warn("Denied attempt to remove directory: %q", childPath.String())
	} else {
		dirLogger.Warn("Denied attempt to remove file: %q", childPath.String())
	}
	return ToFuseError(NewFSError(OpRemove, childPath.String(), ErrAccessDenied))
}

// Rename implements the NodeRenamer interface. Always denied.
func (d *Dir) Rename(_ context.Context, req *fuse.RenameRequest, _ fusefs.Node) error {
	oldPath := d.path.Child(req.OldName)
	dirLogger.Warn("Denied attempt to rename: %q", oldPath.String())
	return ToFuseError(NewFSError(OpRename, oldPath.String(), ErrAccessDenied))
}

// Setattr implements the NodeSetattrer interface. Always denied.
func (d *Dir) Setattr(_ context.Context, _ *fuse.SetattrRequest, _ *fuse.SetattrResponse) error {
	dirLogger.Warn("Denied attempt to set attributes on directory: %q", d.path.String())
	return syscall.EACCES
}
