// Package id provides typed identifier generation for the engine.
//
// Identifiers are prefixed ULIDs:
//   - Lexicographic sortability: windows opened later sort after earlier ones
//   - Prefixed types: readable logs (win_*, load_*, job_*)
//   - Type safety: a WindowID cannot be passed where a JobID is expected
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// WindowID identifies a browsing context (top-level window or frame)
type WindowID string

// LoadID identifies one logical load through the pipeline
type LoadID string

// JobID identifies a queued background download
type JobID string

const (
	WindowPrefix = "win"
	LoadPrefix   = "load"
	JobPrefix    = "job"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewWindowID generates a new window ID
func NewWindowID() WindowID {
	return WindowID(Default().GenerateWithPrefix(WindowPrefix))
}

// NewLoadID generates a new load ID
func NewLoadID() LoadID {
	return LoadID(Default().GenerateWithPrefix(LoadPrefix))
}

// NewJobID generates a new download job ID
func NewJobID() JobID {
	return JobID(Default().GenerateWithPrefix(JobPrefix))
}

func (id WindowID) String() string { return string(id) }
func (id LoadID) String() string   { return string(id) }
func (id JobID) String() string    { return string(id) }

// IsZero reports whether the window ID is unset
func (id WindowID) IsZero() bool { return id == "" }

// Valid reports whether a prefixed ID carries the expected prefix and a
// parseable ULID
func Valid(prefixed, prefix string) bool {
	rest, ok := strings.CutPrefix(prefixed, prefix+"_")
	if !ok {
		return false
	}
	_, err := ulid.Parse(rest)
	return err == nil
}

// Timestamp extracts the creation time from a prefixed ID
func Timestamp(prefixed string) (time.Time, error) {
	_, raw, found := strings.Cut(prefixed, "_")
	if !found {
		raw = prefixed
	}
	parsed, err := ulid.Parse(raw)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
