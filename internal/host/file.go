package host

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/amishk599/tailorin/internal/extract"
	"github.com/amishk599/tailorin/internal/model"
)

// Ensure FileHost implements model.Host.
var _ model.Host = (*FileHost)(nil)

// FileHost treats a saved HTML page on disk as the active tab.
type FileHost struct {
	path      string
	extractor *extract.Extractor
	logger    *slog.Logger
}

// NewFileHost returns a host whose only tab is the file at path.
func NewFileHost(path string, ex *extract.Extractor, logger *slog.Logger) *FileHost {
	return &FileHost{path: path, extractor: ex, logger: logger}
}

// ActiveTab returns a file:// tab for the configured path.
func (h *FileHost) ActiveTab(_ context.Context) (model.Tab, error) {
	if h.path == "" {
		return model.Tab{}, ErrNoActiveTab
	}
	abs, err := filepath.Abs(h.path)
	if err != nil {
		return model.Tab{}, fmt.Errorf("resolve %s: %w", h.path, err)
	}
	return model.Tab{ID: abs, URL: "file://" + filepath.ToSlash(abs), Title: filepath.Base(abs)}, nil
}

// Inject opens the file up front, so a missing file fails the injection,
// then parses and extracts in the background.
func (h *FileHost) Inject(_ context.Context, tab model.Tab, requestID string, send model.Sender) error {
	if err := CheckInjectable(tab); err != nil {
		return err
	}
	f, err := os.Open(tab.ID)
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	go func() {
		defer f.Close()
		runExtractor(h.extractor, h.logger, f, tab.URL, requestID, send)
	}()
	return nil
}
