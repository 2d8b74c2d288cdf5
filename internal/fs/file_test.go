package fs

import (
	"context"
	"os"
	"syscall"
	"testing"

	"bazil.org/fuse"
)

func lookupFile(t *testing.T, bfs *BookFS, vpath string) *File {
	t.Helper()
	realPath, ok := bfs.idx.RealPath(vpath)
	if !ok {
		t.Fatalf("Expected %q to be an indexed file", vpath)
	}
	return &File{fs: bfs, path: NewVirtualPath(vpath), realPath: realPath}
}

func TestFileAttr(t *testing.T) {
	bfs, _ := setupTestFS(t)
	ctx := context.Background()

	f := lookupFile(t, bfs, "/Isaac Asimov/Foundation/Book 2/book.epub")

	var attr fuse.Attr
	if err := f.Attr(ctx, &attr); err != nil {
		t.Fatalf("Attr failed: %v", err)
	}
	if attr.Mode != 0644 {
		t.Errorf("Expected file mode 0644, got %v", attr.Mode)
	}
	if attr.Nlink != 1 {
		t.Errorf("Expected nlink 1, got %d", attr.Nlink)
	}
	if attr.Size != uint64(len("content of book.epub")) {
		t.Errorf("Expected size %d, got %d", len("content of book.epub"), attr.Size)
	}
}

func TestFileAttrStaleEntry(t *testing.T) {
	bfs, _ := setupTestFS(t)
	ctx := context.Background()

	f := lookupFile(t, bfs, "/Ursula K. Le Guin/The Dispossessed/book.epub")

	// Remove the real file after the index was built
	if err := os.Remove(f.realPath); err != nil {
		t.Fatalf("Failed to remove real file: %v", err)
	}

	var attr fuse.Attr
	if err := f.Attr(ctx, &attr); err != syscall.ENOENT {
		t.Errorf("Expected ENOENT for stale entry, got %v", err)
	}
}

func TestFileOpen(t *testing.T) {
	bfs, _ := setupTestFS(t)
	ctx := context.Background()

	f := lookupFile(t, bfs, "/Isaac Asimov/Foundation/Book 2/book.epub")

	t.Run("ReadOnly", func(t *testing.T) {
		resp := &fuse.OpenResponse{}
		handle, err := f.Open(ctx, &fuse.OpenRequest{Flags: fuse.OpenReadOnly}, resp)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		fh, ok := handle.(*FileHandle)
		if !ok {
			t.Fatalf("Expected a FileHandle, got %T", handle)
		}
		if err := fh.Release(ctx, &fuse.ReleaseRequest{}); err != nil {
			t.Errorf("Release failed: %v", err)
		}
	})

	t.Run("WriteAccessDenied", func(t *testing.T) {
		_, err := f.Open(ctx, &fuse.OpenRequest{Flags: fuse.OpenWriteOnly}, &fuse.OpenResponse{})
		if err != syscall.EACCES {
			t.Errorf("Expected EACCES for write open, got %v", err)
		}
		_, err = f.Open(ctx, &fuse.OpenRequest{Flags: fuse.OpenReadWrite}, &fuse.OpenResponse{})
		if err != syscall.EACCES {
			t.Errorf("Expected EACCES for read-write open, got %v", err)
		}
	})

	t.Run("ProbeFailure", func(t *testing.T) {
		stale := lookupFile(t, bfs, "/Isaac Asimov/Foundation/Book 2/cover.jpg")
		if err := os.Remove(stale.realPath); err != nil {
			t.Fatalf("Failed to remove real file: %v", err)
		}
		_, err := stale.Open(ctx, &fuse.OpenRequest{Flags: fuse.OpenReadOnly}, &fuse.OpenResponse{})
		if err != syscall.EACCES {
			t.Errorf("Expected EACCES when probe fails, got %v", err)
		}
	})
}

func TestFileRead(t *testing.T) {
	bfs, _ := setupTestFS(t)
	ctx := context.Background()

	content := "content of book.epub"
	f := lookupFile(t, bfs, "/Isaac Asimov/Foundation/Book 2/book.epub")
	fh := &FileHandle{realPath: f.realPath, path: f.path.String()}

	t.Run("FullRead", func(t *testing.T) {
		resp := &fuse.ReadResponse{}
		err := fh.Read(ctx, &fuse.ReadRequest{Size: len(content), Offset: 0}, resp)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if string(resp.Data) != content {
			t.Errorf("Expected %q, got %q", content, string(resp.Data))
		}
	})

	t.Run("OffsetRead", func(t *testing.T) {
		resp := &fuse.ReadResponse{}
		err := fh.Read(ctx, &fuse.ReadRequest{Size: 4, Offset: 11}, resp)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if string(resp.Data) != "book" {
			t.Errorf("Expected %q, got %q", "book", string(resp.Data))
		}
	})

	t.Run("ReadPastEOF", func(t *testing.T) {
		resp := &fuse.ReadResponse{}
		err := fh.Read(ctx, &fuse.ReadRequest{Size: 16, Offset: int64(len(content)) + 100}, resp)
		if err != nil {
			t.Fatalf("Read past EOF should not fail: %v", err)
		}
		if len(resp.Data) != 0 {
			t.Errorf("Expected empty data past EOF, got %d bytes", len(resp.Data))
		}
	})

	t.Run("ShortReadAtEnd", func(t *testing.T) {
		resp := &fuse.ReadResponse{}
		err := fh.Read(ctx, &fuse.ReadRequest{Size: 100, Offset: int64(len(content)) - 5}, resp)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if string(resp.Data) != content[len(content)-5:] {
			t.Errorf("Expected %q, got %q", content[len(content)-5:], string(resp.Data))
		}
	})

	t.Run("VanishedFile", func(t *testing.T) {
		if err := os.Remove(fh.realPath); err != nil {
			t.Fatalf("Failed to remove real file: %v", err)
		}
		resp := &fuse.ReadResponse{}
		err := fh.Read(ctx, &fuse.ReadRequest{Size: 4, Offset: 0}, resp)
		if err != syscall.EIO {
			t.Errorf("Expected EIO for vanished file, got %v", err)
		}
	})
}

func TestFileWriteDenied(t *testing.T) {
	bfs, _ := setupTestFS(t)
	ctx := context.Background()

	f := lookupFile(t, bfs, "/Isaac Asimov/Foundation/Book 2/book.epub")
	fh := &FileHandle{realPath: f.realPath, path: f.path.String()}

	err := fh.Write(ctx, &fuse.WriteRequest{Data: []byte("x")}, &fuse.WriteResponse{})
	if err != syscall.EACCES {
		t.Errorf("Expected EACCES, got %v", err)
	}

	err = f.Setattr(ctx, &fuse.SetattrRequest{}, &fuse.SetattrResponse{})
	if err != syscall.EACCES {
		t.Errorf("Expected EACCES, got %v", err)
	}

	// Real file content must be untouched
	data, readErr := os.ReadFile(f.realPath)
	if readErr != nil {
		t.Fatalf("Failed to read real file: %v", readErr)
	}
	if string(data) != "content of book.epub" {
		t.Errorf("Real file changed by denied write: %q", string(data))
	}
}
