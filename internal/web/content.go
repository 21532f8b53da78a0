package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/google/uuid"
)

// DefaultSpillThreshold is the in-memory body ceiling
const DefaultSpillThreshold int64 = 500 * 1024

// Content is a response body held in memory or in a spill file
type Content interface {
	// Open returns a fresh reader over the whole body
	Open() (io.ReadCloser, error)
	// Len returns the body size in bytes
	Len() int64
	// InMemory reports whether the body is buffered in memory
	InMemory() bool
	// Release frees the backing storage; the content is unusable afterwards
	Release() error
}

type memoryContent struct {
	data []byte
}

// BytesContent wraps an in-memory body
func BytesContent(data []byte) Content {
	return &memoryContent{data: data}
}

// EmptyContent is a zero-length body
func EmptyContent() Content {
	return &memoryContent{}
}

func (c *memoryContent) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(c.data)), nil
}

func (c *memoryContent) Len() int64     { return int64(len(c.data)) }
func (c *memoryContent) InMemory() bool { return true }
func (c *memoryContent) Release() error { return nil }

type fileContent struct {
	path  string
	size  int64
	owner *Spills
}

// FileContent serves a body straight from an existing file. The file is not
// removed on Release.
func FileContent(path string) (Content, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &fileContent{path: path, size: info.Size()}, nil
}

func (c *fileContent) Open() (io.ReadCloser, error) {
	return os.Open(c.path)
}

func (c *fileContent) Len() int64     { return c.size }
func (c *fileContent) InMemory() bool { return false }

func (c *fileContent) Release() error {
	if c.owner == nil {
		return nil
	}
	c.owner.forget(c.path)
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Path returns the backing file of a file-backed content, or ""
func Path(c Content) string {
	if f, ok := c.(*fileContent); ok {
		return f.path
	}
	return ""
}

// ReadAll returns the whole body
func ReadAll(c Content) ([]byte, error) {
	if m, ok := c.(*memoryContent); ok {
		return m.data, nil
	}
	r, err := c.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Download reads r into memory up to threshold bytes and spills the rest,
// together with what was already buffered, to a temp file in dir tracked by
// the process default set.
func Download(r io.Reader, threshold int64, dir string) (Content, error) {
	return defaultSpills.Download(r, threshold, dir)
}

// Download reads r into memory up to threshold bytes and spills the rest,
// together with what was already buffered, to a temp file in dir tracked by
// s. A connection that closes before EOF yields the bytes read so far.
func (s *Spills) Download(r io.Reader, threshold int64, dir string) (Content, error) {
	if threshold < 0 {
		threshold = DefaultSpillThreshold
	}

	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r, threshold+1)
	if err != nil && !errors.Is(err, io.EOF) {
		if truncated(err) {
			return BytesContent(buf.Bytes()), nil
		}
		return nil, err
	}
	if n <= threshold {
		return BytesContent(buf.Bytes()), nil
	}

	f, err := s.create(dir)
	if err != nil {
		return nil, err
	}
	c := &fileContent{path: f.Name(), owner: s}

	written, err := io.Copy(f, io.MultiReader(&buf, r))
	if err != nil && !truncated(err) {
		f.Close()
		_ = c.Release()
		return nil, fmt.Errorf("spill body: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = c.Release()
		return nil, fmt.Errorf("spill body: %w", err)
	}
	c.size = written
	return c, nil
}

// truncated reports errors from a peer that stopped sending mid-body
func truncated(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// Spills tracks the live spill files of one owner, normally a Transport.
// Every set is also reachable from the process-wide RemoveSpillFiles sweep.
type Spills struct {
	mu    sync.Mutex
	files map[string]struct{}
}

var (
	setsMu sync.Mutex
	sets   = make(map[*Spills]struct{})

	defaultSpills = NewSpills()
)

// NewSpills creates an empty spill set
func NewSpills() *Spills {
	s := &Spills{files: make(map[string]struct{})}
	setsMu.Lock()
	sets[s] = struct{}{}
	setsMu.Unlock()
	return s
}

func (s *Spills) create(dir string) (*os.File, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "webcore-"+uuid.NewString()+".tmp")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create spill file: %w", err)
	}
	s.mu.Lock()
	s.files[path] = struct{}{}
	s.mu.Unlock()
	return f, nil
}

func (s *Spills) forget(path string) {
	s.mu.Lock()
	delete(s.files, path)
	s.mu.Unlock()
}

// Files returns the live spill files of s
func (s *Spills) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	return paths
}

// RemoveAll deletes every live spill file of s. The set stays usable.
func (s *Spills) RemoveAll() error {
	s.mu.Lock()
	paths := s.files
	s.files = make(map[string]struct{})
	s.mu.Unlock()

	var errs []error
	for p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close deletes the files of s and drops it from the process-wide sweep
func (s *Spills) Close() error {
	setsMu.Lock()
	delete(sets, s)
	setsMu.Unlock()
	return s.RemoveAll()
}

func allSets() []*Spills {
	setsMu.Lock()
	defer setsMu.Unlock()
	out := make([]*Spills, 0, len(sets))
	for s := range sets {
		out = append(out, s)
	}
	return out
}

// SpillFiles returns the live spill files of every set in the process
func SpillFiles() []string {
	var paths []string
	for _, s := range allSets() {
		paths = append(paths, s.Files()...)
	}
	return paths
}

// RemoveSpillFiles deletes the live spill files of every set in the
// process. Meant for process exit; owners clean up with Spills.Close.
func RemoveSpillFiles() error {
	var errs []error
	for _, s := range allSets() {
		errs = append(errs, s.RemoveAll())
	}
	return errors.Join(errs...)
}
