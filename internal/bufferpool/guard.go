package bufferpool

// PageGuard is a pinned, borrowed view of one cached page. The bytes stay
// valid until Release; after that Data returns nil and the frame may hold
// another page.
type PageGuard struct {
	m      *Manager
	file   PageStore
	pageNo uint32
	data   []byte

	dirty    bool
	released bool
}

func newPageGuard(m *Manager, file PageStore, pageNo uint32, data []byte) *PageGuard {
	return &PageGuard{m: m, file: file, pageNo: pageNo, data: data}
}

func (g *PageGuard) PageNo() uint32 { return g.pageNo }

func (g *PageGuard) File() PageStore { return g.file }

func (g *PageGuard) Data() []byte {
	if g.released {
		return nil
	}
	return g.data
}

// MarkDirty makes Release unpin the page as dirty.
func (g *PageGuard) MarkDirty() { g.dirty = true }

// Release unpins the page. Calling it again is a no-op.
func (g *PageGuard) Release() error {
	if g == nil || g.released {
		return nil
	}
	g.released = true
	g.data = nil
	return g.m.UnpinPage(g.file, g.pageNo, g.dirty)
}
