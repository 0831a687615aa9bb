package refdocs

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/tkp/internal/common"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_TextFormats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "instructions.txt", "Верни JSON.")
	writeFile(t, dir, "materials.csv", "name;price\nКабель;150\n")

	l := NewLoader(dir, nil)

	got, err := l.Load("instructions.txt")
	require.NoError(t, err)
	assert.Equal(t, "Верни JSON.", got)

	got, err = l.Load("materials.csv")
	require.NoError(t, err)
	assert.Equal(t, "name;price\nКабель;150\n", got)
}

func TestLoad_UppercaseExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "NOTES.TXT", "x")

	got, err := NewLoader(dir, nil).Load("NOTES.TXT")
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}

func TestLoad_PDFAsBase64(t *testing.T) {
	dir := t.TempDir()
	raw := "%PDF-1.4\x00\x01binary"
	writeFile(t, dir, "catalog.pdf", raw)

	got, err := NewLoader(dir, nil).Load("catalog.pdf")
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte(raw)), got)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "image.png", "x")
	l := NewLoader(dir, nil)

	_, err := l.Load("missing.txt")
	assert.True(t, errors.Is(err, common.ErrNotFound))

	_, err = l.Load("image.png")
	assert.True(t, errors.Is(err, common.ErrUnsupportedFormat))

	_, err = l.Load("noext")
	assert.True(t, errors.Is(err, common.ErrUnsupportedFormat))

	_, err = l.Load("../etc/passwd.txt")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestLoad_CachedUntilReset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "v1")
	l := NewLoader(dir, nil)

	got, err := l.Load("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "v1", got)

	writeFile(t, dir, "a.txt", "v2")
	got, err = l.Load("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "v1", got)

	l.Reset()
	got, err = l.Load("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "v2", got)
}

func TestLoad_ConcurrentReads(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "same")
	l := NewLoader(dir, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := l.Load("a.txt")
			assert.NoError(t, err)
			assert.Equal(t, "same", got)
		}()
	}
	wg.Wait()
}

func TestSystemContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "materials.csv", "MATS\n")
	writeFile(t, dir, "instructions.txt", "INST")
	l := NewLoader(dir, nil)

	got, err := l.SystemContext("materials.csv", "instructions.txt")
	require.NoError(t, err)
	assert.Equal(t, "MATS\nINST", got)

	_, err = l.SystemContext("materials.csv", "absent.txt")
	assert.True(t, errors.Is(err, common.ErrNotFound))
	assert.Contains(t, err.Error(), "load instructions: ")
}
