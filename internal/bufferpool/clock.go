package bufferpool

import (
	"errors"

	"go.uber.org/zap"

	"github.com/LeviCameron1/BufferManager/pkg/clockx"
)

// allocFrame runs the clock sweep and returns an empty frame. A dirty victim
// is written back first; the victim's descriptor is cleared and its page
// table entry removed before the frame is handed out. Installing new content
// is left to the caller.
func (m *Manager) allocFrame() (int, error) {
	frameNo, err := m.clock.Sweep(m.inspect)
	if errors.Is(err, clockx.ErrExhausted) {
		return -1, ErrBufferExceeded
	}
	return frameNo, err
}

// inspect applies the second-chance rule to the frame under the hand.
func (m *Manager) inspect(frameNo int) (clockx.Verdict, error) {
	d := &m.descs[frameNo]

	switch {
	case !d.valid:
		return clockx.Claim, nil
	case d.referenced:
		d.setReferenced(false)
		return clockx.Skip, nil
	case d.pinCount != 0:
		return clockx.Skip, nil
	case d.dirty:
		if err := m.writeBack(d); err != nil {
			return clockx.Skip, err
		}
	}

	m.evict(d)
	return clockx.Claim, nil
}

// writeBack writes the frame to its owning store and marks it clean.
func (m *Manager) writeBack(d *frameDesc) error {
	if err := d.file.WritePage(d.pageNo, m.frame(d.frameNo)); err != nil {
		return &IOError{Op: "write", File: d.fileKey, PageNo: d.pageNo, Err: err}
	}
	d.setDirty(false)
	m.stats.WriteBacks++
	m.metrics.WriteBacks.Inc()
	m.log.Debug("wrote back page",
		zap.Int("frame", d.frameNo),
		zap.String("file", d.fileKey),
		zap.Uint32("page", d.pageNo))
	return nil
}

// evict drops a clean, unpinned frame's content.
func (m *Manager) evict(d *frameDesc) {
	tag := d.tag()
	d.clear()
	if err := m.table.remove(tag); err != nil {
		m.log.Warn("evicted frame had no page table entry",
			zap.Int("frame", d.frameNo),
			zap.String("file", tag.FileKey),
			zap.Uint32("page", tag.PageNo))
	}
	m.stats.Evictions++
	m.metrics.Evictions.Inc()
	m.log.Debug("evicted page",
		zap.Int("frame", d.frameNo),
		zap.String("file", tag.FileKey),
		zap.Uint32("page", tag.PageNo))
}
