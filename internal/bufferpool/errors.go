package bufferpool

import (
	"errors"
	"fmt"
)

var (
	ErrBufferExceeded = errors.New("bufferpool: buffer exceeded (all frames pinned)")
	ErrPageNotFound   = errors.New("bufferpool: page not in buffer pool")
	ErrPageNotPinned  = errors.New("bufferpool: page is not pinned")
	ErrPagePinned     = errors.New("bufferpool: page is pinned")
	ErrIO             = errors.New("bufferpool: I/O error")
	ErrClosed         = errors.New("bufferpool: manager is closed")

	ErrDuplicateKey = errors.New("bufferpool: page table already maps this page")
	ErrIndexFull    = errors.New("bufferpool: page table is full")
	errTagNotFound  = errors.New("bufferpool: page table has no entry for this page")
)

// IOError wraps a PageStore failure. errors.Is(err, ErrIO) matches it, and
// Unwrap exposes the store's own error.
type IOError struct {
	Op     string // read, write, allocate, dispose
	File   string // PageStore key
	PageNo uint32
	Err    error
}

func (e *IOError) Error() string {
	if e.Op == "allocate" {
		return fmt.Sprintf("bufferpool: allocate page in %s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("bufferpool: %s page %d of %s: %v", e.Op, e.PageNo, e.File, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }
