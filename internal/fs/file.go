package fs

import (
	"context"
	"io"
	"os"
	"syscall"

	"bookfs/internal/logging"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	fileLogger = logging.GetLogger().WithPrefix("file")
)

// File represents an indexed file in the virtual filesystem, backed by a
// real file owned by the external storage collection.
type File struct {
	fs       *BookFS
	path     *VirtualPath
	realPath string
}

// Attr implements the Node interface, returning the file's attributes.
// The size comes from a live stat of the real file; if the file has
// vanished since the index was built, the entry is reported as absent
// rather than surfacing an I/O error.
func (f *File) Attr(_ context.Context, a *fuse.Attr) error {
	fileLogger.Trace("Getting attributes for file: %q (real: %q)",
		f.path.String(), f.realPath)

	info, err := os.Stat(f.realPath)
	if err != nil {
		fileLogger.Warn("Stale index entry, real file unavailable: %q (%v)",
			f.realPath, err)
		return ToFuseError(NewFSError(OpGetattr, f.path.String(), ErrNotFound))
	}

	a.Mode = 0644
	a.Nlink = 1
	a.Size = safeInt64ToUint64(info.Size())
	a.Mtime = info.ModTime()
	a.Atime = info.ModTime() // We don't track access time
	a.Ctime = info.ModTime() // We don't track creation time
	a.Uid = f.fs.uid
	a.Gid = f.fs.gid
	a.BlockSize = 4096
	a.Blocks = safeInt64ToUint64((info.Size() + 511) / 512)

	fileLogger.Trace("File attributes: size=%d, mtime=%v", a.Size, a.Mtime)
	return nil
}

// Open implements the NodeOpener interface. It probes the real file with a
// transient open-then-close to confirm accessibility, then returns a handle
// that holds only the real path; no descriptor is kept across calls.
func (f *File) Open(_ context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fusefs.Handle, error) {
	flags := int(req.Flags)
	fileLogger.Debug("Opening file %q with flags %v", f.path.String(), flags)

	if flags&os.O_WRONLY != 0 || flags&os.O_RDWR != 0 {
		fileLogger.Warn("Denied write access to read-only file: %q", f.path.String())
		return nil, ToFuseError(NewFSError(OpOpen, f.path.String(), ErrAccessDenied))
	}

	probe, err := os.Open(f.realPath)
	if err != nil {
		fileLogger.Error("Cannot open real file %q: %v", f.realPath, err)
		return nil, ToFuseError(NewFSError(OpOpen, f.path.String(), ErrAccessDenied))
	}
	if err := probe.Close(); err != nil {
		fileLogger.Warn("Failed to close probe handle for %q: %v", f.realPath, err)
	}

	resp.Flags |= fuse.OpenDirectIO

	fileLogger.Debug("Successfully opened file %q", f.path.String())
	return &FileHandle{
		realPath: f.realPath,
		path:     f.path.String(),
	}, nil
}

// Setattr implements the NodeSetattrer interface. Always denied.
func (f *File) Setattr(_ context.Context, _ *fuse.SetattrRequest, _ *fuse.SetattrResponse) error {
	fileLogger.Warn("Denied attempt to set attributes on file: %q", f.path.String())
	return syscall.EACCES
}

// FileHandle represents an open file handle. It holds the real path only;
// every read acquires and releases its own descriptor.
type FileHandle struct {
	realPath string
	path     string // virtual path, for logging
}

// Read implements the HandleReader interface, reading a byte range from the
// real file. A read at or past end-of-file returns empty data, not an error.
func (fh *FileHandle) Read(_ context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	fileLogger.Trace("Reading %d bytes from file %q at offset %d",
		req.Size, fh.path, req.Offset)

	file, err := os.Open(fh.realPath)
	if err != nil {
		fileLogger.Error("Failed to open real file for read %q: %v", fh.realPath, err)
		return ToFuseError(NewFSError(OpRead, fh.path, ErrIO))
	}
	defer file.Close()

	buf := make([]byte, req.Size)
	n, err := file.ReadAt(buf, req.Offset)
	if err != nil && err != io.EOF {
		fileLogger.Error("Failed to read from file %q: %v", fh.path, err)
		return ToFuseError(NewFSError(OpRead, fh.path, ErrIO))
	}

	resp.Data = buf[:n]
	fileLogger.Trace("Successfully read %d bytes", n)
	return nil
}

// Write implements the HandleWriter interface. Always denied.
func (fh *FileHandle) Write(_ context.Context, _ *fuse.WriteRequest, _ *fuse.WriteResponse) error {
	fileLogger.Warn("Denied attempt to write to file: %q", fh.path)
	return ToFuseError(NewFSError(OpWrite, fh.path, ErrAccessDenied))
}

// Release implements the HandleReleaser interface. No descriptor is held,
// so release only logs.
func (fh *FileHandle) Release(_ context.Context, _ *fuse.ReleaseRequest) error {
	fileLogger.Trace("Releasing handle for %q", fh.path)
	return nil
}

func safeInt64ToUint64(n int64) uint64 {
	if n < 0 {
		return 0
	}
	return uint64(n)
}

func safeIntToUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	return uint32(n)
}
