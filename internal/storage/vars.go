package storage

import "errors"

const (
	OneKB = 1 << 10
	OneGB = 1 << 30

	SegmentSize       = OneGB                  // 1 GiB per segment file
	PageSize          = 8 * OneKB              // 8 KiB, similar to PostgreSQL
	MaxPagePerSegment = SegmentSize / PageSize // 131,072 pages/segment
)

const (
	FileMode0644 = 0o644 // rw-r--r--
	FileMode0755 = 0o755 // rwxr-xr-x
)

// InvalidPageNo never names an allocated page.
const InvalidPageNo = ^uint32(0)

var (
	ErrBadPageNo   = errors.New("storage: page number is not allocated")
	ErrPageFree    = errors.New("storage: page is on the free list")
	ErrWrongSize   = errors.New("storage: buffer size != PageSize")
	ErrFileClosed  = errors.New("storage: file is closed")
	ErrCorruptMeta = errors.New("storage: corrupt free-space metadata")
)
