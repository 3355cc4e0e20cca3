package mediastore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/velora-app/velora-backend/internal/platform/envutil"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

type Category string

const (
	CategoryAvatar Category = "avatar"
	CategoryVoice  Category = "voice"
)

// Store is the media blob surface: avatars and voice message payloads.
type Store interface {
	Save(ctx context.Context, category Category, key string, r io.Reader) error
	Open(ctx context.Context, category Category, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, category Category, key string) error
	PublicURL(category Category, key string) string
}

type localStore struct {
	log     *logger.Logger
	root    string
	baseURL string
}

func NewLocalStore(log *logger.Logger) (Store, error) {
	root := envutil.GetEnv("MEDIA_ROOT", "./media", log)
	baseURL := strings.TrimRight(envutil.GetEnv("MEDIA_BASE_URL", "/media", log), "/")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &localStore{
		log:     log.With("service", "LocalMediaStore"),
		root:    root,
		baseURL: baseURL,
	}, nil
}

func (s *localStore) path(category Category, key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("empty media key")
	}
	return filepath.Join(s.root, string(category), clean), nil
}

func (s *localStore) Save(ctx context.Context, category Category, key string, r io.Reader) error {
	p, err := s.path(category, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}
	tmp := p + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, p)
}

func (s *localStore) Open(ctx context.Context, category Category, key string) (io.ReadCloser, error) {
	p, err := s.path(category, key)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func (s *localStore) Delete(ctx context.Context, category Category, key string) error {
	p, err := s.path(category, key)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *localStore) PublicURL(category Category, key string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, category, strings.TrimLeft(key, "/"))
}
