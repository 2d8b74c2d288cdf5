package fs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"bookfs/internal/config"
	"bookfs/internal/index"
	"bookfs/internal/logging"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	vfsLogger = logging.GetLogger().WithPrefix("vfs")
)

// BookFS is the read-only virtual filesystem over a book library. It
// answers every FUSE query from the injected index, which is immutable
// after the build, and rejects every mutation.
type BookFS struct {
	library string       // Root directory of the book library
	idx     *index.Index // Virtual-to-real path index, read-only
	conn    *fuse.Conn   // FUSE connection
	served  chan struct{}
	uid     uint32 // User ID reported for all nodes
	gid     uint32 // Group ID reported for all nodes
}

// NewBookFS creates a filesystem over a built index.
func NewBookFS(library string, idx *index.Index) *BookFS {
	vfsLogger.Info("Creating virtual filesystem over %s", library)

	uid := safeIntToUint32(os.Getuid())
	gid := safeIntToUint32(os.Getgid())

	if puidStr := os.Getenv("PUID"); puidStr != "" {
		if puid, err := strconv.ParseUint(puidStr, 10, 32); err == nil {
			uid = uint32(puid)
			vfsLogger.Debug("Using PUID from environment: %d", uid)
		}
	}
	if pgidStr := os.Getenv("PGID"); pgidStr != "" {
		if pgid, err := strconv.ParseUint(pgidStr, 10, 32); err == nil {
			gid = uint32(pgid)
			vfsLogger.Debug("Using PGID from environment: %d", gid)
		}
	}

	return &BookFS{
		library: library,
		idx:     idx,
		served:  make(chan struct{}),
		uid:     uid,
		gid:     gid,
	}
}

// Root implements the fusefs.FS interface, returning the root directory node.
func (bfs *BookFS) Root() (fusefs.Node, error) {
	vfsLogger.Trace("Getting root directory node")
	return &Dir{
		fs:   bfs,
		path: NewVirtualPath("/"),
	}, nil
}

func waitForMount(mountPoint string) error {
	for i := 0; i < 30; i++ {
		info, err := os.Stat(mountPoint)
		if err == nil && info.IsDir() {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("mount point not available after 3 seconds")
}

// Mount mounts the filesystem and starts serving FUSE requests in the
// background. It returns once the mount point is usable.
func (bfs *BookFS) Mount(mountPoint string, mcfg config.MountConfig) error {
	vfsLogger.Info("Mounting virtual filesystem at %s", mountPoint)
	vfsLogger.Debug("Library: %s, UID: %d, GID: %d", bfs.library, bfs.uid, bfs.gid)

	mountOpts := []fuse.MountOption{
		fuse.FSName(mcfg.FSName),
		fuse.Subtype(mcfg.Subtype),
		fuse.ReadOnly(),
		fuse.DefaultPermissions(),
		fuse.AsyncRead(),
	}
	if mcfg.AllowOther {
		mountOpts = append(mountOpts, fuse.AllowOther())
	}
	if mcfg.AllowNonEmpty {
		mountOpts = append(mountOpts, fuse.AllowNonEmptyMount())
	}

	c, err := fuse.Mount(mountPoint, mountOpts...)
	if err != nil {
		return fmt.Errorf("mount failed: %w", err)
	}
	bfs.conn = c

	go func() {
		defer close(bfs.served)
		if err := fusefs.Serve(c, bfs); err != nil {
			vfsLogger.Error("FUSE server error: %v", err)
		}
		vfsLogger.Debug("FUSE server stopped")
	}()

	if err := waitForMount(mountPoint); err != nil {
		c.Close()
		vfsLogger.Error("Mount point not ready: %v", err)
		return fmt.Errorf("mount point failed to initialize: %w", err)
	}

	vfsLogger.Info("Filesystem mounted successfully")
	return nil
}

// Unmount cleanly unmounts the filesystem.
func (bfs *BookFS) Unmount(mountPoint string) error {
	vfsLogger.Info("Unmounting filesystem from: %s", mountPoint)
	if bfs.conn == nil {
		return nil
	}
	err := fuse.Unmount(mountPoint)
	if err != nil {
		vfsLogger.Error("Unmount failed: %v", err)
	} else {
		vfsLogger.Info("Unmount completed successfully")
	}
	return err
}

// Wait blocks until the FUSE server has stopped serving.
func (bfs *BookFS) Wait() {
	<-bfs.served
}
