package bufferpool

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/LeviCameron1/BufferManager/internal/storage"
	"github.com/LeviCameron1/BufferManager/pkg/clockx"
)

var DefaultCapacity = 128

// Manager caches pages of any number of PageStores in a fixed pool of
// frames, evicting with the clock (second-chance) policy. Every method is
// serialized by one mutex.
type Manager struct {
	mu sync.Mutex

	numFrames int

	arena []byte      // numFrames * PageSize
	descs []frameDesc // one per frame
	table *pageTable  // PageTag -> frame index
	clock *clockx.Clock

	log     *zap.Logger
	metrics *Metrics
	stats   Stats
	closed  bool
}

type Option func(*Manager)

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) {
		if metrics != nil {
			m.metrics = metrics
		}
	}
}

// Stats is a snapshot of pool activity.
type Stats struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	WriteBacks uint64
	Resident   int // valid frames
	Pinned     int // frames with pin count > 0
}

func NewManager(numFrames int, opts ...Option) *Manager {
	if numFrames <= 0 {
		numFrames = DefaultCapacity
	}
	m := &Manager{
		numFrames: numFrames,
		arena:     make([]byte, numFrames*storage.PageSize),
		descs:     newDescriptorTable(numFrames),
		table:     newPageTable(numFrames),
		clock:     clockx.New(numFrames),
		log:       zap.NewNop(),
		metrics:   NewMetrics(nil),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NumFrames is fixed at construction and stays valid after Close.
func (m *Manager) NumFrames() int { return m.numFrames }

func (m *Manager) frame(frameNo int) []byte {
	lo := frameNo * storage.PageSize
	hi := lo + storage.PageSize
	return m.arena[lo:hi:hi]
}

// FetchPage pins (file, pageNo) and returns a guard over its frame, reading
// the page from file on a miss.
func (m *Manager) FetchPage(file PageStore, pageNo uint32) (*PageGuard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	// 1) HIT
	if frameNo, ok := m.table.lookup(tagOf(file, pageNo)); ok {
		d := &m.descs[frameNo]
		d.setReferenced(true)
		d.incrementPin()
		m.stats.Hits++
		m.metrics.Hits.Inc()
		return newPageGuard(m, file, pageNo, m.frame(frameNo)), nil
	}

	// 2) MISS: secure a frame, then read into it
	m.stats.Misses++
	m.metrics.Misses.Inc()

	frameNo, err := m.allocFrame()
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", pageNo, err)
	}
	if err := file.ReadPage(pageNo, m.frame(frameNo)); err != nil {
		return nil, &IOError{Op: "read", File: file.Key(), PageNo: pageNo, Err: err}
	}
	if err := m.install(frameNo, file, pageNo); err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", pageNo, err)
	}
	return newPageGuard(m, file, pageNo, m.frame(frameNo)), nil
}

// install records (file, pageNo) in the descriptor first and the page table
// second, undoing the descriptor if the table refuses the entry.
func (m *Manager) install(frameNo int, file PageStore, pageNo uint32) error {
	d := &m.descs[frameNo]
	d.markLoaded(file, pageNo)
	if err := m.table.insert(d.tag(), frameNo); err != nil {
		d.clear()
		return err
	}
	return nil
}

// UnpinPage drops one pin on (file, pageNo). dirty=true marks the frame
// dirty; it stays dirty until written back.
func (m *Manager) UnpinPage(file PageStore, pageNo uint32, dirty bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	frameNo, ok := m.table.lookup(tagOf(file, pageNo))
	if !ok {
		return fmt.Errorf("unpin page %d of %s: %w", pageNo, file.Key(), ErrPageNotFound)
	}
	d := &m.descs[frameNo]
	if err := d.decrementPin(); err != nil {
		return fmt.Errorf("unpin page %d of %s: %w", pageNo, file.Key(), err)
	}
	if dirty {
		d.setDirty(true)
	}
	return nil
}

// AllocatePage asks file for a new page and pins a zeroed frame for it. If no
// frame can be had, the page number is handed back to file.
func (m *Manager) AllocatePage(file PageStore) (uint32, *PageGuard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return storage.InvalidPageNo, nil, ErrClosed
	}

	pageNo, err := file.AllocatePage()
	if err != nil {
		return storage.InvalidPageNo, nil, &IOError{Op: "allocate", File: file.Key(), PageNo: storage.InvalidPageNo, Err: err}
	}

	frameNo, err := m.allocFrame()
	if err != nil {
		m.returnPage(file, pageNo)
		return storage.InvalidPageNo, nil, fmt.Errorf("allocate page: %w", err)
	}

	buf := m.frame(frameNo)
	clear(buf)
	if err := m.install(frameNo, file, pageNo); err != nil {
		m.returnPage(file, pageNo)
		return storage.InvalidPageNo, nil, fmt.Errorf("allocate page %d: %w", pageNo, err)
	}
	return pageNo, newPageGuard(m, file, pageNo, buf), nil
}

// returnPage hands a page the pool could not take back to its store.
func (m *Manager) returnPage(file PageStore, pageNo uint32) {
	if err := file.DisposePage(pageNo); err != nil {
		m.log.Warn("could not return unused page to store",
			zap.String("file", file.Key()),
			zap.Uint32("page", pageNo),
			zap.Error(err))
	}
}

// DisposePage drops (file, pageNo) from the pool, if cached, and frees it in
// file. A pinned page is not disposed.
func (m *Manager) DisposePage(file PageStore, pageNo uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	tag := tagOf(file, pageNo)
	if frameNo, ok := m.table.lookup(tag); ok {
		d := &m.descs[frameNo]
		if d.pinCount > 0 {
			return fmt.Errorf("dispose page %d of %s: %w", pageNo, tag.FileKey, ErrPagePinned)
		}
		d.clear()
		_ = m.table.remove(tag)
	}

	if err := file.DisposePage(pageNo); err != nil {
		return &IOError{Op: "dispose", File: tag.FileKey, PageNo: pageNo, Err: err}
	}
	return nil
}

// FlushFile writes back and evicts every cached page of file. It stops at the
// first pinned page or I/O error; pages visited before that stay flushed.
func (m *Manager) FlushFile(file PageStore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	key := file.Key()
	for i := range m.descs {
		d := &m.descs[i]
		if !d.valid || d.fileKey != key {
			continue
		}
		if d.pinCount > 0 {
			return fmt.Errorf("flush %s: page %d: %w", key, d.pageNo, ErrPagePinned)
		}
		if d.dirty {
			if err := m.writeBack(d); err != nil {
				return err
			}
		}
		tag := d.tag()
		d.clear()
		_ = m.table.remove(tag)
	}
	return nil
}

// FlushAll writes back every dirty page without evicting anything.
func (m *Manager) FlushAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	for i := range m.descs {
		d := &m.descs[i]
		if !d.valid || !d.dirty {
			continue
		}
		if err := m.writeBack(d); err != nil {
			return err
		}
	}
	return nil
}

// Close writes back every dirty page and releases the pool. Write failures
// are logged; Close itself always succeeds and is idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	for i := range m.descs {
		d := &m.descs[i]
		if !d.valid || !d.dirty {
			continue
		}
		if err := m.writeBack(d); err != nil {
			m.log.Error("teardown write-back failed",
				zap.Int("frame", d.frameNo),
				zap.String("file", d.fileKey),
				zap.Uint32("page", d.pageNo),
				zap.Error(err))
		}
	}

	m.arena = nil
	m.descs = nil
	m.table = newPageTable(0)
	return nil
}

func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.stats
	for i := range m.descs {
		if m.descs[i].valid {
			s.Resident++
		}
		if m.descs[i].pinCount > 0 {
			s.Pinned++
		}
	}
	return s
}
