package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/LeviCameron1/BufferManager/internal/bufferpool"
	"github.com/LeviCameron1/BufferManager/internal/storage"
)

var (
	errNoFile  = errors.New("no file open (use: open <name>)")
	errUsage   = errors.New("usage")
	errUnknown = errors.New("unknown command")
)

const helpText = `commands:
  open <name>              open or create a page file and make it current
  use <name>               switch to an already open file
  files                    list open files
  alloc                    allocate a page in the current file
  read <page> [n]          print the first n bytes of a page (default 32)
  write <page> <text>      write text at the start of a page
  pin <page>               fetch a page and keep it pinned
  unpin <page> [dirty]     drop one pin, optionally marking the page dirty
  dispose <page>           free a page
  flush                    write back and evict the current file's pages
  flushall                 write back every dirty page
  dump                     print the frame table
  stats                    print pool counters
  help                     show help
  quit | exit              leave`

// Shell runs bufshell commands against one Manager and the page files it
// opened under dir.
type Shell struct {
	mgr *bufferpool.Manager
	dir string
	log *zap.Logger
	out io.Writer

	files map[string]*storage.File
	cur   *bufferpool.FileView
}

func NewShell(mgr *bufferpool.Manager, dir string, log *zap.Logger, out io.Writer) *Shell {
	return &Shell{
		mgr:   mgr,
		dir:   dir,
		log:   log,
		out:   out,
		files: make(map[string]*storage.File),
	}
}

// Exec runs one command line. quit reports whether the shell should exit.
func (s *Shell) Exec(line string) (quit bool, err error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}

	switch cmd, rest := strings.ToLower(args[0]), args[1:]; cmd {
	case "quit", "exit", `\q`:
		return true, nil
	case "help", `\help`:
		_, err = fmt.Fprintln(s.out, helpText)
	case "open":
		err = s.open(rest)
	case "use":
		err = s.use(rest)
	case "files":
		s.listFiles()
	case "alloc":
		err = s.alloc()
	case "read":
		err = s.read(rest)
	case "write":
		err = s.write(rest)
	case "pin":
		err = s.pin(rest)
	case "unpin":
		err = s.unpin(rest)
	case "dispose":
		err = s.dispose(rest)
	case "flush":
		err = s.flush()
	case "flushall":
		err = s.mgr.FlushAll()
	case "dump":
		err = s.mgr.Dump(s.out)
	case "stats":
		s.stats()
	default:
		err = fmt.Errorf("%w: %s", errUnknown, cmd)
	}
	return false, err
}

func (s *Shell) open(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: open <name>", errUsage)
	}
	name := args[0]
	f, ok := s.files[name]
	if !ok {
		var err error
		if f, err = storage.OpenFile(s.dir, name); err != nil {
			return err
		}
		s.files[name] = f
		s.log.Info("opened page file", zap.String("name", name), zap.String("key", f.Key()))
	}
	s.cur = s.mgr.View(f)
	fmt.Fprintf(s.out, "%s: %d live pages\n", f, len(f.LivePages()))
	return nil
}

func (s *Shell) use(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: use <name>", errUsage)
	}
	f, ok := s.files[args[0]]
	if !ok {
		return fmt.Errorf("%s is not open", args[0])
	}
	s.cur = s.mgr.View(f)
	return nil
}

func (s *Shell) listFiles() {
	for _, name := range slices.Sorted(maps.Keys(s.files)) {
		f := s.files[name]
		mark := " "
		if s.cur != nil && s.cur.File() == bufferpool.PageStore(f) {
			mark = "*"
		}
		fmt.Fprintf(s.out, "%s %s pages=%d\n", mark, f, len(f.LivePages()))
	}
}

func (s *Shell) alloc() error {
	if s.cur == nil {
		return errNoFile
	}
	pageNo, g, err := s.cur.Allocate()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "page %d\n", pageNo)
	return g.Release()
}

func (s *Shell) read(args []string) error {
	if s.cur == nil {
		return errNoFile
	}
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: read <page> [n]", errUsage)
	}
	pageNo, err := parsePageNo(args[0])
	if err != nil {
		return err
	}
	n := 32
	if len(args) == 2 {
		if n, err = strconv.Atoi(args[1]); err != nil || n <= 0 || n > storage.PageSize {
			return fmt.Errorf("bad byte count %q", args[1])
		}
	}

	g, err := s.cur.Fetch(pageNo)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%q\n", strings.TrimRight(string(g.Data()[:n]), "\x00"))
	return g.Release()
}

func (s *Shell) write(args []string) error {
	if s.cur == nil {
		return errNoFile
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: write <page> <text>", errUsage)
	}
	pageNo, err := parsePageNo(args[0])
	if err != nil {
		return err
	}
	text := strings.Join(args[1:], " ")
	if len(text) > storage.PageSize {
		return fmt.Errorf("text longer than a page (%d bytes)", storage.PageSize)
	}

	g, err := s.cur.Fetch(pageNo)
	if err != nil {
		return err
	}
	copy(g.Data(), text)
	g.MarkDirty()
	return g.Release()
}

// pin leaves the fetched page pinned; the guard is dropped and the pin is
// released later by page number.
func (s *Shell) pin(args []string) error {
	if s.cur == nil {
		return errNoFile
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: pin <page>", errUsage)
	}
	pageNo, err := parsePageNo(args[0])
	if err != nil {
		return err
	}
	_, err = s.cur.Fetch(pageNo)
	return err
}

func (s *Shell) unpin(args []string) error {
	if s.cur == nil {
		return errNoFile
	}
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: unpin <page> [dirty]", errUsage)
	}
	pageNo, err := parsePageNo(args[0])
	if err != nil {
		return err
	}
	dirty := len(args) == 2 && strings.EqualFold(args[1], "dirty")
	return s.cur.Unpin(pageNo, dirty)
}

func (s *Shell) dispose(args []string) error {
	if s.cur == nil {
		return errNoFile
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: dispose <page>", errUsage)
	}
	pageNo, err := parsePageNo(args[0])
	if err != nil {
		return err
	}
	return s.cur.Dispose(pageNo)
}

func (s *Shell) flush() error {
	if s.cur == nil {
		return errNoFile
	}
	return s.cur.Flush()
}

func (s *Shell) stats() {
	st := s.mgr.Stats()
	fmt.Fprintf(s.out, "frames=%d resident=%d pinned=%d hits=%d misses=%d evictions=%d writebacks=%d\n",
		s.mgr.NumFrames(), st.Resident, st.Pinned, st.Hits, st.Misses, st.Evictions, st.WriteBacks)
}

// Close shuts the manager down, which writes back dirty pages, and then
// closes every page file. The first file error is returned.
func (s *Shell) Close() error {
	if err := s.mgr.Close(); err != nil {
		s.log.Error("close buffer pool", zap.Error(err))
	}

	var first error
	for name, f := range s.files {
		if err := f.Close(); err != nil {
			s.log.Error("close page file", zap.String("name", name), zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func parsePageNo(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad page number %q", s)
	}
	return uint32(n), nil
}
