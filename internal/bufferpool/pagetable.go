package bufferpool

import "github.com/puzpuzpuz/xsync/v3"

// pageTable maps a PageTag to the frame caching it. It is sized once, at
// about 1.2x the frame count, and never holds more entries than that.
type pageTable struct {
	m        *xsync.MapOf[PageTag, int]
	capacity int
}

func tableSize(numFrames int) int {
	return int(float64(numFrames)*1.2) + 1
}

func newPageTable(numFrames int) *pageTable {
	size := tableSize(numFrames)
	return &pageTable{
		m:        xsync.NewMapOf[PageTag, int](xsync.WithPresize(size)),
		capacity: size,
	}
}

func (t *pageTable) lookup(tag PageTag) (int, bool) {
	return t.m.Load(tag)
}

func (t *pageTable) insert(tag PageTag, frameNo int) error {
	if t.m.Size() >= t.capacity {
		return ErrIndexFull
	}
	if _, loaded := t.m.LoadOrStore(tag, frameNo); loaded {
		return ErrDuplicateKey
	}
	return nil
}

func (t *pageTable) remove(tag PageTag) error {
	if _, ok := t.m.LoadAndDelete(tag); !ok {
		return errTagNotFound
	}
	return nil
}

func (t *pageTable) len() int { return t.m.Size() }
