package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/LeviCameron1/BufferManager/internal/alias/util"
)

type FileSet interface {
	OpenSegment(segNo int32) (*os.File, error)
}

var _ FileSet = (*LocalFileSet)(nil)

// LocalFileSet represents a local directory + base file name.
// Segments are stored as: Base, Base.1, Base.2, ...
type LocalFileSet struct {
	Dir  string
	Base string
}

func (lfs LocalFileSet) OpenSegment(segNo int32) (*os.File, error) {
	name := lfs.Base
	if segNo > 0 {
		name = fmt.Sprintf("%s.%d", lfs.Base, segNo)
	}
	path := filepath.Join(lfs.Dir, name)
	if err := os.MkdirAll(lfs.Dir, FileMode0755); err != nil {
		return nil, err
	}
	// RDWR | CREATE (no truncate)
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE, FileMode0644)
}

// Path returns the path of a sidecar file next to the segments.
func (lfs LocalFileSet) Path(suffix string) string {
	return filepath.Join(lfs.Dir, lfs.Base+suffix)
}

// StorageManager maps a logical page number -> (segment, offset).
// It knows nothing about which pages are allocated; File owns that.
type StorageManager struct{}

func NewStorageManager() *StorageManager {
	return &StorageManager{}
}

func (sm *StorageManager) locate(pageNo uint32) (segNo int32, offset int64) {
	segNo = int32(pageNo / MaxPagePerSegment)
	offset = int64(pageNo%MaxPagePerSegment) * PageSize
	return segNo, offset
}

// ReadPage reads exactly one page (PageSize bytes) into dst.
// If the underlying file is smaller than the requested offset+PageSize,
// the remainder is zero-filled.
func (sm *StorageManager) ReadPage(fs FileSet, pageNo uint32, dst []byte) error {
	if len(dst) != PageSize {
		return ErrWrongSize
	}
	segNo, off := sm.locate(pageNo)
	f, err := fs.OpenSegment(segNo)
	if err != nil {
		return err
	}
	defer util.CloseFileFunc(f)

	n, err := f.ReadAt(dst, off)
	if err != nil && err != io.EOF {
		return err
	}
	// Zero-fill the rest of the page if we hit EOF early or a short read.
	clear(dst[n:])
	return nil
}

// WritePage writes exactly one page (PageSize bytes) from src to disk
// at the location computed from pageNo.
func (sm *StorageManager) WritePage(fs FileSet, pageNo uint32, src []byte) error {
	if len(src) != PageSize {
		return ErrWrongSize
	}
	segNo, off := sm.locate(pageNo)
	f, err := fs.OpenSegment(segNo)
	if err != nil {
		return err
	}

	n, err := f.WriteAt(src, off)
	if err != nil {
		_ = f.Close()
		return err
	}
	if n != PageSize {
		_ = f.Close()
		return io.ErrShortWrite
	}
	return f.Close()
}

// CountPages computes total pages for a given FileSet by scanning all segments.
func (sm *StorageManager) CountPages(fs LocalFileSet) (uint32, error) {
	var total uint32

	for segNo := int32(0); ; segNo++ {
		name := fs.Base
		if segNo > 0 {
			name = fmt.Sprintf("%s.%d", fs.Base, segNo)
		}
		info, err := os.Stat(filepath.Join(fs.Dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				break
			}
			return 0, err
		}
		total += uint32(info.Size() / PageSize)
	}

	return total, nil
}
