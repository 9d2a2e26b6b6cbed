package bufferpool

import (
	"bytes"
	"fmt"
	"io"
)

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Fprintf(format string, a ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, a...)
}

func flagName(on bool, name string) string {
	if on {
		return name
	}
	return "-"
}

// Dump prints one line per frame: index, pin count, flags and owner.
// For operators only; the format is not stable.
func (m *Manager) Dump(w io.Writer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ew := &errWriter{w: w}
	ew.Fprintf("=== Buffer Pool ===\n")
	if m.closed {
		ew.Fprintf("(closed)\n")
		return ew.err
	}
	ew.Fprintf("frames=%d hand=%d entries=%d\n", len(m.descs), m.clock.Hand(), m.table.len())

	for i := range m.descs {
		d := &m.descs[i]
		if !d.valid {
			ew.Fprintf("[%d] pin=%d invalid\n", i, d.pinCount)
			continue
		}
		ew.Fprintf("[%d] pin=%d valid %s %s file=%s page=%d\n",
			i, d.pinCount, flagName(d.dirty, "dirty"), flagName(d.referenced, "ref"), d.fileKey, d.pageNo)
	}
	ew.Fprintf("=== End Buffer Pool ===\n")
	return ew.err
}

func (m *Manager) String() string {
	var b bytes.Buffer
	if err := m.Dump(&b); err != nil {
		_, _ = b.WriteString("\n<dump write error: " + err.Error() + ">\n")
	}
	return b.String()
}
