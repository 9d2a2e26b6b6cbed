package bufferpool

// FileView binds a Manager to a single PageStore so callers working on one
// file need not pass it on every call.
type FileView struct {
	m    *Manager
	file PageStore
}

// View returns a file-scoped facade backed by the shared Manager.
func (m *Manager) View(file PageStore) *FileView {
	return &FileView{m: m, file: file}
}

func (v *FileView) File() PageStore { return v.file }

func (v *FileView) Fetch(pageNo uint32) (*PageGuard, error) {
	return v.m.FetchPage(v.file, pageNo)
}

func (v *FileView) Allocate() (uint32, *PageGuard, error) {
	return v.m.AllocatePage(v.file)
}

func (v *FileView) Unpin(pageNo uint32, dirty bool) error {
	return v.m.UnpinPage(v.file, pageNo, dirty)
}

func (v *FileView) Dispose(pageNo uint32) error {
	return v.m.DisposePage(v.file, pageNo)
}

// Flush writes back and evicts the pages of THIS file only.
func (v *FileView) Flush() error {
	return v.m.FlushFile(v.file)
}
