package storage

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/vmihailenco/msgpack"
)

const fsmSuffix = ".fsm"

// freeSpaceMap is the allocation bookkeeping of one page file: how many page
// numbers have ever been handed out and which of them are free again.
type freeSpaceMap struct {
	NumPages uint32   `msgpack:"num_pages"`
	Free     []uint32 `msgpack:"free"`

	freeSet map[uint32]struct{}
}

func newFreeSpaceMap() *freeSpaceMap {
	return &freeSpaceMap{freeSet: make(map[uint32]struct{})}
}

// loadFreeSpaceMap reads the sidecar at path. A missing sidecar is an empty
// map and found reports false.
func loadFreeSpaceMap(path string) (m *freeSpaceMap, found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return newFreeSpaceMap(), false, nil
	}
	if err != nil {
		return nil, false, err
	}

	m = newFreeSpaceMap()
	if err := msgpack.Unmarshal(data, m); err != nil {
		return nil, true, fmt.Errorf("%w: %v", ErrCorruptMeta, err)
	}
	for _, p := range m.Free {
		if p >= m.NumPages {
			return nil, true, fmt.Errorf("%w: free page %d beyond %d pages", ErrCorruptMeta, p, m.NumPages)
		}
		m.freeSet[p] = struct{}{}
	}
	return m, true, nil
}

// save writes the map next to the segments, replacing the old sidecar atomically.
func (m *freeSpaceMap) save(path string) error {
	data, err := msgpack.Marshal(m)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, FileMode0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// allocate hands out the most recently freed page, or extends the file.
func (m *freeSpaceMap) allocate() uint32 {
	if n := len(m.Free); n > 0 {
		p := m.Free[n-1]
		m.Free = m.Free[:n-1]
		delete(m.freeSet, p)
		return p
	}
	p := m.NumPages
	m.NumPages++
	return p
}

// release undoes allocate for a page that was never used.
func (m *freeSpaceMap) release(pageNo uint32) {
	if pageNo+1 == m.NumPages && len(m.Free) == 0 {
		m.NumPages--
		return
	}
	m.Free = append(m.Free, pageNo)
	m.freeSet[pageNo] = struct{}{}
}

// check reports whether pageNo is currently allocated.
func (m *freeSpaceMap) check(pageNo uint32) error {
	if pageNo >= m.NumPages {
		return fmt.Errorf("%w: page %d (file has %d pages)", ErrBadPageNo, pageNo, m.NumPages)
	}
	if _, ok := m.freeSet[pageNo]; ok {
		return fmt.Errorf("%w: page %d", ErrPageFree, pageNo)
	}
	return nil
}

func (m *freeSpaceMap) dispose(pageNo uint32) error {
	if err := m.check(pageNo); err != nil {
		return err
	}
	m.Free = append(m.Free, pageNo)
	m.freeSet[pageNo] = struct{}{}
	return nil
}

// live returns the allocated page numbers in ascending order.
func (m *freeSpaceMap) live() []uint32 {
	out := make([]uint32, 0, int(m.NumPages)-len(m.Free))
	for p := uint32(0); p < m.NumPages; p++ {
		if _, ok := m.freeSet[p]; !ok {
			out = append(out, p)
		}
	}
	return slices.Clip(out)
}
