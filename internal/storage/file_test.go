package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_AllocateWriteRead(t *testing.T) {
	f, err := OpenFile(t.TempDir(), "heap")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	p0, err := f.AllocatePage()
	require.NoError(t, err)
	p1, err := f.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, uint32(0), p0)
	require.Equal(t, uint32(1), p1)

	src := make([]byte, PageSize)
	copy(src, "page one")
	require.NoError(t, f.WritePage(p1, src))

	dst := make([]byte, PageSize)
	require.NoError(t, f.ReadPage(p1, dst))
	assert.Equal(t, src, dst)

	// freshly allocated pages are zeroed
	require.NoError(t, f.ReadPage(p0, dst))
	assert.Equal(t, make([]byte, PageSize), dst)
}

func TestFile_RejectsUnallocatedPages(t *testing.T) {
	f, err := OpenFile(t.TempDir(), "heap")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	buf := make([]byte, PageSize)
	require.ErrorIs(t, f.ReadPage(0, buf), ErrBadPageNo)
	require.ErrorIs(t, f.WritePage(0, buf), ErrBadPageNo)
	require.ErrorIs(t, f.DisposePage(0), ErrBadPageNo)

	p, err := f.AllocatePage()
	require.NoError(t, err)
	require.NoError(t, f.DisposePage(p))
	require.ErrorIs(t, f.ReadPage(p, buf), ErrPageFree)
}

func TestFile_BookkeepingSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	f, err := OpenFile(dir, "heap")
	require.NoError(t, err)
	for range 3 {
		_, err := f.AllocatePage()
		require.NoError(t, err)
	}
	require.NoError(t, f.DisposePage(1))

	src := make([]byte, PageSize)
	copy(src, "durable")
	require.NoError(t, f.WritePage(2, src))
	require.NoError(t, f.Close())

	g, err := OpenFile(dir, "heap")
	require.NoError(t, err)
	defer func() { _ = g.Close() }()

	require.NotEqual(t, f.Key(), g.Key())
	require.Equal(t, uint32(3), g.NumPages())
	require.Equal(t, []uint32{0, 2}, g.LivePages())

	dst := make([]byte, PageSize)
	require.NoError(t, g.ReadPage(2, dst))
	assert.Equal(t, src, dst)

	p, err := g.AllocatePage()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), p)
}

func TestFile_ClosedRejectsIO(t *testing.T) {
	f, err := OpenFile(t.TempDir(), "heap")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	_, err = f.AllocatePage()
	require.ErrorIs(t, err, ErrFileClosed)
	require.ErrorIs(t, f.ReadPage(0, make([]byte, PageSize)), ErrFileClosed)
}

func TestFile_MissingSidecarRecoversPageCount(t *testing.T) {
	dir := t.TempDir()

	f, err := OpenFile(dir, "heap")
	require.NoError(t, err)
	for range 2 {
		_, err := f.AllocatePage()
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())
	require.NoError(t, os.Remove(filepath.Join(dir, "heap"+fsmSuffix)))

	g, err := OpenFile(dir, "heap")
	require.NoError(t, err)
	defer func() { _ = g.Close() }()
	require.Equal(t, uint32(2), g.NumPages())
	require.Equal(t, []uint32{0, 1}, g.LivePages())
}

func TestFile_EmptySidecarIsNotOverridden(t *testing.T) {
	dir := t.TempDir()

	f, err := OpenFile(dir, "heap")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// a zeroed page reached the segment but the sidecar still records none
	require.NoError(t, os.WriteFile(filepath.Join(dir, "heap"), make([]byte, PageSize), FileMode0644))

	g, err := OpenFile(dir, "heap")
	require.NoError(t, err)
	defer func() { _ = g.Close() }()
	require.Zero(t, g.NumPages())
	require.Empty(t, g.LivePages())

	p, err := g.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, uint32(0), p)
}
