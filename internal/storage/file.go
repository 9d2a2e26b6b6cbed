package storage

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// File is a durable page file: a LocalFileSet of segments plus the
// allocation bookkeeping kept in a "<base>.fsm" sidecar. Each opened File
// gets a fresh key, so two handles on the same path are distinct identities.
type File struct {
	key string
	fs  LocalFileSet
	sm  *StorageManager

	mu     sync.Mutex
	fsm    *freeSpaceMap
	zero   []byte
	closed bool
}

// OpenFile opens (or creates) the page file dir/base.
func OpenFile(dir, base string) (*File, error) {
	fs := LocalFileSet{Dir: dir, Base: base}

	f, err := fs.OpenSegment(0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", base, err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	fsm, found, err := loadFreeSpaceMap(fs.Path(fsmSuffix))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", base, err)
	}

	// No sidecar but existing segments: every page on disk is taken as live.
	// An existing sidecar is authoritative, even when it records no pages.
	sm := NewStorageManager()
	if !found {
		n, err := sm.CountPages(fs)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", base, err)
		}
		fsm.NumPages = n
	}

	return &File{
		key:  uuid.NewString(),
		fs:   fs,
		sm:   sm,
		fsm:  fsm,
		zero: make([]byte, PageSize),
	}, nil
}

// Key identifies this open instance.
func (f *File) Key() string { return f.key }

func (f *File) Name() string { return f.fs.Base }

func (f *File) String() string {
	return fmt.Sprintf("%s(%s)", f.fs.Base, f.key[:8])
}

// NumPages returns how many page numbers have ever been allocated.
func (f *File) NumPages() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fsm.NumPages
}

// LivePages returns the page numbers currently allocated.
func (f *File) LivePages() []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fsm.live()
}

func (f *File) ReadPage(pageNo uint32, dst []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFileClosed
	}
	if err := f.fsm.check(pageNo); err != nil {
		return err
	}
	return f.sm.ReadPage(f.fs, pageNo, dst)
}

func (f *File) WritePage(pageNo uint32, src []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFileClosed
	}
	if err := f.fsm.check(pageNo); err != nil {
		return err
	}
	return f.sm.WritePage(f.fs, pageNo, src)
}

// AllocatePage reserves a page number, zeroes the page on disk and persists
// the bookkeeping. Freed pages are reused before the file grows.
func (f *File) AllocatePage() (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return InvalidPageNo, ErrFileClosed
	}

	pageNo := f.fsm.allocate()
	if err := f.sm.WritePage(f.fs, pageNo, f.zero); err != nil {
		f.fsm.release(pageNo)
		return InvalidPageNo, err
	}
	if err := f.fsm.save(f.fs.Path(fsmSuffix)); err != nil {
		f.fsm.release(pageNo)
		return InvalidPageNo, err
	}
	return pageNo, nil
}

// DisposePage returns pageNo to the free list.
func (f *File) DisposePage(pageNo uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFileClosed
	}
	if err := f.fsm.dispose(pageNo); err != nil {
		return err
	}
	return f.fsm.save(f.fs.Path(fsmSuffix))
}

// Close persists the bookkeeping. The buffer pool must have flushed this
// file before Close; File itself caches no page data.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.fsm.save(f.fs.Path(fsmSuffix))
}
