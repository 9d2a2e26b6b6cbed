package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeviCameron1/BufferManager/internal/storage"
)

// spyStore is an in-memory PageStore that records I/O and can be told to fail.
type spyStore struct {
	*storage.MemFile

	failRead    error
	failWrite   error
	failAlloc   error
	failDispose error

	reads  []uint32
	writes []uint32
}

func newSpyStore() *spyStore {
	return &spyStore{MemFile: storage.NewMemFile()}
}

func (s *spyStore) ReadPage(pageNo uint32, dst []byte) error {
	if s.failRead != nil {
		return s.failRead
	}
	s.reads = append(s.reads, pageNo)
	return s.MemFile.ReadPage(pageNo, dst)
}

func (s *spyStore) WritePage(pageNo uint32, src []byte) error {
	if s.failWrite != nil {
		return s.failWrite
	}
	s.writes = append(s.writes, pageNo)
	return s.MemFile.WritePage(pageNo, src)
}

func (s *spyStore) AllocatePage() (uint32, error) {
	if s.failAlloc != nil {
		return storage.InvalidPageNo, s.failAlloc
	}
	return s.MemFile.AllocatePage()
}

func (s *spyStore) DisposePage(pageNo uint32) error {
	if s.failDispose != nil {
		return s.failDispose
	}
	return s.MemFile.DisposePage(pageNo)
}

// seed allocates n pages directly in the store, each starting with its label.
func (s *spyStore) seed(t *testing.T, labels ...string) []uint32 {
	t.Helper()
	pages := make([]uint32, 0, len(labels))
	for _, label := range labels {
		p, err := s.MemFile.AllocatePage()
		require.NoError(t, err)
		buf := make([]byte, storage.PageSize)
		copy(buf, label)
		require.NoError(t, s.MemFile.WritePage(p, buf))
		pages = append(pages, p)
	}
	return pages
}

// onDisk returns the leading bytes of a page as stored, bypassing the pool.
func (s *spyStore) onDisk(t *testing.T, pageNo uint32, n int) string {
	t.Helper()
	buf := make([]byte, storage.PageSize)
	require.NoError(t, s.MemFile.ReadPage(pageNo, buf))
	return string(buf[:n])
}

func newTestManager(t *testing.T, frames int, opts ...Option) *Manager {
	t.Helper()
	m := NewManager(frames, opts...)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// fetchAndRelease touches a page once, leaving it unpinned and referenced.
func fetchAndRelease(t *testing.T, m *Manager, file PageStore, pageNo uint32) {
	t.Helper()
	g, err := m.FetchPage(file, pageNo)
	require.NoError(t, err)
	require.NoError(t, g.Release())
}

func frameOf(t *testing.T, m *Manager, file PageStore, pageNo uint32) (int, bool) {
	t.Helper()
	return m.table.lookup(tagOf(file, pageNo))
}

// checkInvariants verifies that descriptors and the page table agree.
func checkInvariants(t *testing.T, m *Manager) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[PageTag]int)
	for i := range m.descs {
		d := &m.descs[i]
		require.GreaterOrEqual(t, d.pinCount, int32(0), "frame %d", i)
		if !d.valid {
			require.Zero(t, d.pinCount, "invalid frame %d is pinned", i)
			require.False(t, d.dirty, "invalid frame %d is dirty", i)
			continue
		}
		tag := d.tag()
		prev, dup := seen[tag]
		require.False(t, dup, "frames %d and %d both cache %+v", prev, i, tag)
		seen[tag] = i

		frameNo, ok := m.table.lookup(tag)
		require.True(t, ok, "frame %d not indexed", i)
		require.Equal(t, i, frameNo)
	}
	require.Equal(t, len(seen), m.table.len(), "page table has stale entries")
}
