// Package refdocs loads the read-only reference documents (materials list,
// extraction instructions) that form the model's system context.
package refdocs

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/joseph-ayodele/tkp/constants"
	"github.com/joseph-ayodele/tkp/internal/common"
	"github.com/joseph-ayodele/tkp/internal/llm"
)

// Loader resolves reference documents under Dir. Content is immutable at
// runtime, so each name is read once and cached; concurrent first reads of
// the same name share one disk read.
type Loader struct {
	dir    string
	logger *slog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]string
}

func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dir: dir, logger: logger, cache: make(map[string]string)}
}

// Load returns the content of name: text for .txt/.csv, base64 for .pdf.
// Unknown extensions fail with common.ErrUnsupportedFormat, missing files
// with common.ErrNotFound.
func (l *Loader) Load(name string) (string, error) {
	format := constants.MapExtToFormat(filepath.Ext(name))
	if format == "" {
		return "", common.NewAppError("UNSUPPORTED_FORMAT",
			fmt.Sprintf("unsupported file type: %q", filepath.Ext(name)), common.ErrUnsupportedFormat)
	}

	l.mu.RLock()
	content, ok := l.cache[name]
	l.mu.RUnlock()
	if ok {
		return content, nil
	}

	v, err, _ := l.group.Do(name, func() (any, error) {
		content, err := l.read(name, format)
		if err != nil {
			return "", err
		}
		l.mu.Lock()
		l.cache[name] = content
		l.mu.Unlock()
		return content, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (l *Loader) read(name, format string) (string, error) {
	path, err := l.resolve(name)
	if err != nil {
		return "", err
	}

	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", common.NewAppError("NOT_FOUND", "reference file not found: "+name, common.ErrNotFound)
		}
		return "", fmt.Errorf("stat %s: %w", name, err)
	}
	if st.IsDir() {
		return "", common.NewAppError("NOT_FOUND", "reference file not found: "+name, common.ErrNotFound)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}

	l.logger.Info("refdocs.load.ok", "name", name, "format", format, "bytes", len(b))

	switch format {
	case constants.PDF:
		// kept as an opaque blob; not fed to the model yet
		return base64.StdEncoding.EncodeToString(b), nil
	default:
		return string(b), nil
	}
}

// resolve joins name under dir and refuses paths that escape it.
func (l *Loader) resolve(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", common.NewAppError("NOT_FOUND", "reference file not found: "+name, common.ErrNotFound)
	}
	return filepath.Join(l.dir, clean), nil
}

// Reset drops cached content.
func (l *Loader) Reset() {
	l.mu.Lock()
	l.cache = make(map[string]string)
	l.mu.Unlock()
}

// SystemContext loads the materials and instructions documents and joins
// them into the system message (materials first).
func (l *Loader) SystemContext(materials, instructions string) (string, error) {
	mats, err := l.Load(materials)
	if err != nil {
		return "", common.WrapError(err, "load materials")
	}
	inst, err := l.Load(instructions)
	if err != nil {
		return "", common.WrapError(err, "load instructions")
	}
	return llm.BuildSystemContext(mats, inst), nil
}
