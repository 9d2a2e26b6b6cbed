package storage

import (
	"sync"

	"github.com/google/uuid"
)

// MemFile is a page file held entirely in memory, with the same allocation
// rules as File. Useful for tests and scratch sessions.
type MemFile struct {
	key string

	mu    sync.Mutex
	fsm   *freeSpaceMap
	pages map[uint32][]byte
}

func NewMemFile() *MemFile {
	return &MemFile{
		key:   uuid.NewString(),
		fsm:   newFreeSpaceMap(),
		pages: make(map[uint32][]byte),
	}
}

func (m *MemFile) Key() string { return m.key }

func (m *MemFile) NumPages() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fsm.NumPages
}

func (m *MemFile) ReadPage(pageNo uint32, dst []byte) error {
	if len(dst) != PageSize {
		return ErrWrongSize
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fsm.check(pageNo); err != nil {
		return err
	}
	copy(dst, m.pages[pageNo])
	return nil
}

func (m *MemFile) WritePage(pageNo uint32, src []byte) error {
	if len(src) != PageSize {
		return ErrWrongSize
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fsm.check(pageNo); err != nil {
		return err
	}
	copy(m.pages[pageNo], src)
	return nil
}

func (m *MemFile) AllocatePage() (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pageNo := m.fsm.allocate()
	m.pages[pageNo] = make([]byte, PageSize)
	return pageNo, nil
}

func (m *MemFile) DisposePage(pageNo uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fsm.dispose(pageNo); err != nil {
		return err
	}
	delete(m.pages, pageNo)
	return nil
}
