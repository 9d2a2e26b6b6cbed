package bufferpool

import "github.com/LeviCameron1/BufferManager/internal/storage"

// frameDesc is the metadata of one frame. A frame that is not valid has no
// owner, no pins, is clean, and no page table entry points at it.
type frameDesc struct {
	frameNo int

	file    PageStore
	fileKey string
	pageNo  uint32

	pinCount   int32
	dirty      bool
	referenced bool
	valid      bool
}

func newDescriptorTable(numFrames int) []frameDesc {
	descs := make([]frameDesc, numFrames)
	for i := range descs {
		descs[i].frameNo = i
		descs[i].clear()
	}
	return descs
}

// markLoaded makes the frame hold (file, pageNo), pinned once by the loader.
func (d *frameDesc) markLoaded(file PageStore, pageNo uint32) {
	d.file = file
	d.fileKey = file.Key()
	d.pageNo = pageNo
	d.pinCount = 1
	d.dirty = false
	d.referenced = true
	d.valid = true
}

func (d *frameDesc) clear() {
	d.file = nil
	d.fileKey = ""
	d.pageNo = storage.InvalidPageNo
	d.pinCount = 0
	d.dirty = false
	d.referenced = false
	d.valid = false
}

func (d *frameDesc) tag() PageTag {
	return PageTag{FileKey: d.fileKey, PageNo: d.pageNo}
}

func (d *frameDesc) incrementPin() { d.pinCount++ }

func (d *frameDesc) decrementPin() error {
	if d.pinCount == 0 {
		return ErrPageNotPinned
	}
	d.pinCount--
	return nil
}

func (d *frameDesc) setDirty(dirty bool) { d.dirty = dirty }

func (d *frameDesc) setReferenced(ref bool) { d.referenced = ref }
