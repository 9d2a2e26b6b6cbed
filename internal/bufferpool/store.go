package bufferpool

import "github.com/LeviCameron1/BufferManager/internal/storage"

// PageStore is the file the pool caches pages of. Key identifies the store
// instance and, together with a page number, names a cached page.
type PageStore interface {
	Key() string
	ReadPage(pageNo uint32, dst []byte) error
	WritePage(pageNo uint32, src []byte) error
	AllocatePage() (uint32, error)
	DisposePage(pageNo uint32) error
}

var (
	_ PageStore = (*storage.File)(nil)
	_ PageStore = (*storage.MemFile)(nil)
)

// PageTag uniquely identifies a page in the pool.
type PageTag struct {
	FileKey string
	PageNo  uint32
}

func tagOf(file PageStore, pageNo uint32) PageTag {
	return PageTag{FileKey: file.Key(), PageNo: pageNo}
}
