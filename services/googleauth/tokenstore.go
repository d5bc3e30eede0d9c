package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-redis/redis/v8"
	"golang.org/x/oauth2"
)

// ErrTokenNotFound is returned by a TokenStore that holds no token yet.
var ErrTokenNotFound = errors.New("googleauth: token not found")

// TokenStore persists one OAuth token.
type TokenStore interface {
	Load(ctx context.Context) (*oauth2.Token, error)
	Save(ctx context.Context, tok *oauth2.Token) error
}

// FileTokenStore keeps the token as JSON on disk.
type FileTokenStore struct {
	Path string
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{Path: path}
}

func (s *FileTokenStore) Load(_ context.Context) (*oauth2.Token, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("decode token file %s: %w", s.Path, err)
	}
	return &tok, nil
}

func (s *FileTokenStore) Save(_ context.Context, tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	// Replace atomically.
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

// RedisTokenStore keeps the token under a single redis key.
type RedisTokenStore struct {
	Client *redis.Client
	Key    string
}

func NewRedisTokenStore(client *redis.Client, key string) *RedisTokenStore {
	return &RedisTokenStore{Client: client, Key: key}
}

func (s *RedisTokenStore) Load(ctx context.Context) (*oauth2.Token, error) {
	raw, err := s.Client.Get(ctx, s.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.Key, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", s.Key, err)
	}
	return &tok, nil
}

func (s *RedisTokenStore) Save(ctx context.Context, tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, s.Key, b, 0).Err()
}
