package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/codespeak-dev/codespeak/internal/logging"
)

const DefaultBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

var (
	ErrUnknownModel = errors.New("unknown model")
	ErrNotInstalled = errors.New("model not installed")
)

// Progress reports bytes written so far and the expected total.
type Progress func(done, total int64)

// Store is a directory of downloaded models.
type Store struct {
	Dir     string
	BaseURL string
	Client  *http.Client

	logger *log.Logger
}

func NewStore(dir string) *Store {
	return &Store{
		Dir:     dir,
		BaseURL: DefaultBaseURL,
		Client:  http.DefaultClient,
		logger:  logging.For("models"),
	}
}

// DefaultStore opens the store in DefaultDir.
func DefaultStore() (*Store, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return NewStore(dir), nil
}

func (s *Store) Path(m Model) string {
	return filepath.Join(s.Dir, m.File)
}

// Installed returns the model's path when its file exists and is not empty.
func (s *Store) Installed(id string) (string, bool) {
	m, ok := Lookup(id)
	if !ok {
		return "", false
	}
	path := s.Path(m)
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return "", false
	}
	return path, true
}

// Entry is a catalog model together with its local state.
type Entry struct {
	Model
	Path      string
	Installed bool
}

func (s *Store) List() []Entry {
	entries := make([]Entry, 0, len(catalog))
	for _, m := range catalog {
		_, ok := s.Installed(m.ID)
		entries = append(entries, Entry{Model: m, Path: s.Path(m), Installed: ok})
	}
	return entries
}

// Download fetches a model into the store and returns its path. The file
// only appears under its final name once it is complete.
func (s *Store) Download(ctx context.Context, id string, progress Progress) (string, error) {
	m, ok := Lookup(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create models directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/"+m.File, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: %s", id, resp.Status)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = m.Size
	}

	dest := s.Path(m)
	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", tmp, err)
	}

	s.logger.Info("downloading model", "model", id, "size", m.SizeLabel())
	w := &counter{w: f, total: total, progress: progress}
	_, copyErr := io.Copy(w, resp.Body)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("download %s: %w", id, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("install %s: %w", id, err)
	}
	s.logger.Info("model installed", "model", id, "path", dest)
	return dest, nil
}

func (s *Store) Remove(id string) error {
	if _, ok := Lookup(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}
	path, ok := s.Installed(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotInstalled, id)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	return nil
}

func (s *Store) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

type counter struct {
	w        io.Writer
	done     int64
	total    int64
	progress Progress
}

func (c *counter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.done += int64(n)
	if c.progress != nil {
		c.progress(c.done, c.total)
	}
	return n, err
}
