package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFreeSpaceMap_AllocateReusesFreedPages(t *testing.T) {
	m := newFreeSpaceMap()

	require.Equal(t, uint32(0), m.allocate())
	require.Equal(t, uint32(1), m.allocate())
	require.Equal(t, uint32(2), m.allocate())

	require.NoError(t, m.dispose(1))
	require.ErrorIs(t, m.check(1), ErrPageFree)

	// LIFO reuse before growth
	require.Equal(t, uint32(1), m.allocate())
	require.Equal(t, uint32(3), m.allocate())
	require.Equal(t, []uint32{0, 1, 2, 3}, m.live())
}

func TestFreeSpaceMap_DisposeRejectsBadPages(t *testing.T) {
	m := newFreeSpaceMap()
	m.allocate()

	require.ErrorIs(t, m.dispose(5), ErrBadPageNo)
	require.NoError(t, m.dispose(0))
	require.ErrorIs(t, m.dispose(0), ErrPageFree)
}

func TestFreeSpaceMap_Release(t *testing.T) {
	m := newFreeSpaceMap()
	p := m.allocate()
	m.release(p)
	require.Equal(t, uint32(0), m.NumPages)

	m.allocate()
	m.allocate()
	require.NoError(t, m.dispose(0))
	p = m.allocate()
	require.Equal(t, uint32(0), p)
	m.release(p)
	require.ErrorIs(t, m.check(0), ErrPageFree)
}

func TestFreeSpaceMap_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.fsm")

	m := newFreeSpaceMap()
	for range 4 {
		m.allocate()
	}
	require.NoError(t, m.dispose(2))
	require.NoError(t, m.save(path))

	got, found, err := loadFreeSpaceMap(path)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint32(4), got.NumPages)
	require.Equal(t, []uint32{2}, got.Free)
	require.ErrorIs(t, got.check(2), ErrPageFree)
}

func TestFreeSpaceMap_LoadMissingIsEmpty(t *testing.T) {
	m, found, err := loadFreeSpaceMap(filepath.Join(t.TempDir(), "none.fsm"))
	require.NoError(t, err)
	require.False(t, found)
	require.Zero(t, m.NumPages)
}

func TestFreeSpaceMap_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.fsm")
	require.NoError(t, os.WriteFile(path, []byte{0xc1, 0xc1}, 0o644))

	_, _, err := loadFreeSpaceMap(path)
	require.ErrorIs(t, err, ErrCorruptMeta)
}
