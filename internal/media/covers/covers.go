// Package covers downloads book cover images into the data directory
// and computes BlurHash placeholders for them.
package covers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// maxCoverBytes caps a cover download. Covers are small; anything
// bigger is a misbehaving upstream.
const maxCoverBytes = 10 << 20

// Manager stores cover images on disk, one per book.
type Manager struct {
	dir        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewManager creates a cover manager rooted at dir, creating the
// directory if needed.
func NewManager(dir string, logger *slog.Logger) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create covers dir: %w", err)
	}
	return &Manager{
		dir: dir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// Download fetches a cover image from url, stores it for the book, and
// returns the stored path plus the computed BlurHash.
func (m *Manager) Download(ctx context.Context, bookID, url string) (path, blurHash string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("fetch cover: status %d", resp.StatusCode)
	}

	path = m.Path(bookID)
	tmp := path + ".tmp"

	file, err := os.Create(tmp)
	if err != nil {
		return "", "", fmt.Errorf("create cover file: %w", err)
	}

	_, err = io.Copy(file, io.LimitReader(resp.Body, maxCoverBytes))
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return "", "", fmt.Errorf("write cover file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", "", fmt.Errorf("store cover file: %w", err)
	}

	blurHash, err = ComputeBlurHash(path)
	if err != nil {
		// The cover itself is still usable without a placeholder.
		if m.logger != nil {
			m.logger.Warn("failed to compute cover blurhash", "book_id", bookID, "error", err)
		}
		return path, "", nil
	}

	return path, blurHash, nil
}

// Remove deletes a book's stored cover. Idempotent.
func (m *Manager) Remove(bookID string) error {
	err := os.Remove(m.Path(bookID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cover: %w", err)
	}
	return nil
}

// Path returns where a book's cover lives on disk.
func (m *Manager) Path(bookID string) string {
	return filepath.Join(m.dir, bookID+".img")
}
