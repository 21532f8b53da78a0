package web

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadStaysInMemoryBelowThreshold(t *testing.T) {
	c, err := Download(strings.NewReader("hello"), 10, t.TempDir())
	require.NoError(t, err)

	assert.True(t, c.InMemory())
	assert.Equal(t, int64(5), c.Len())
	data, err := ReadAll(c)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestDownloadSpillsAboveThreshold(t *testing.T) {
	dir := t.TempDir()
	body := bytes.Repeat([]byte("0123456789"), 100)

	c, err := Download(bytes.NewReader(body), 64, dir)
	require.NoError(t, err)

	assert.False(t, c.InMemory())
	assert.Equal(t, int64(len(body)), c.Len())
	path := Path(c)
	assert.Contains(t, SpillFiles(), path)

	data, err := ReadAll(c)
	require.NoError(t, err)
	assert.Equal(t, body, data)

	require.NoError(t, c.Release())
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.NotContains(t, SpillFiles(), path)
}

type truncatingReader struct {
	data []byte
}

func (r *truncatingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestDownloadToleratesTruncation(t *testing.T) {
	c, err := Download(&truncatingReader{data: []byte("partial")}, 1024, t.TempDir())
	require.NoError(t, err)
	data, _ := ReadAll(c)
	assert.Equal(t, "partial", string(data))

	big := bytes.Repeat([]byte("x"), 100)
	c, err = Download(&truncatingReader{data: big}, 10, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, int64(100), c.Len())
	require.NoError(t, c.Release())
}

func TestDownloadSurfacesOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Download(io.MultiReader(strings.NewReader("ab"), &errReader{boom}), 1024, t.TempDir())
	assert.ErrorIs(t, err, boom)
}

type errReader struct{ err error }

func (r *errReader) Read([]byte) (int, error) { return 0, r.err }

func TestRemoveSpillFiles(t *testing.T) {
	dir := t.TempDir()
	c, err := Download(bytes.NewReader(make([]byte, 32)), 8, dir)
	require.NoError(t, err)
	path := Path(c)

	require.NoError(t, RemoveSpillFiles())
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = c.Open()
	assert.Error(t, err)
	assert.NoError(t, c.Release())
}

func TestFileContentIsNotRemoved(t *testing.T) {
	path := t.TempDir() + "/page.html"
	require.NoError(t, os.WriteFile(path, []byte("<p>x</p>"), 0o644))

	c, err := FileContent(path)
	require.NoError(t, err)
	assert.Equal(t, int64(8), c.Len())
	require.NoError(t, c.Release())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSpillSetsAreIndependent(t *testing.T) {
	dir := t.TempDir()
	a, b := NewSpills(), NewSpills()
	defer a.Close()

	ca, err := a.Download(bytes.NewReader(make([]byte, 32)), 8, dir)
	require.NoError(t, err)
	cb, err := b.Download(bytes.NewReader(make([]byte, 32)), 8, dir)
	require.NoError(t, err)

	assert.Equal(t, []string{Path(ca)}, a.Files())
	assert.Contains(t, SpillFiles(), Path(ca))
	assert.Contains(t, SpillFiles(), Path(cb))

	require.NoError(t, b.Close())
	_, err = cb.Open()
	assert.Error(t, err)
	assert.NotContains(t, SpillFiles(), Path(cb))

	data, err := ReadAll(ca)
	require.NoError(t, err)
	assert.Len(t, data, 32)

	require.NoError(t, ca.Release())
	assert.Empty(t, a.Files())
}
