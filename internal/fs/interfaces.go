package fs

import (
	"bazil.org/fuse/fs"
)

// Directory is the operation set a virtual directory answers. Mutating
// operations are implemented but always denied.
type Directory interface {
	fs.Node
	fs.NodeStringLookuper
	fs.HandleReadDirAller
	fs.NodeCreater
	fs.NodeMkdirer
	fs.NodeRemover
	fs.NodeRenamer
	fs.NodeSetattrer
}

// FileInterface is the operation set a virtual file answers.
type FileInterface interface {
	fs.Node
	fs.NodeOpener
	fs.NodeSetattrer
}

// FileHandleInterface is the operation set of an open file handle.
type FileHandleInterface interface {
	fs.Handle
	fs.HandleReader
	fs.HandleWriter
	fs.HandleReleaser
}

var (
	_ Directory           = (*Dir)(nil)
	_ FileInterface       = (*File)(nil)
	_ FileHandleInterface = (*FileHandle)(nil)
)
