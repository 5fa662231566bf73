package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
)

var _ output.ResultStore = (*FileStore)(nil)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FileStore keeps every record in one JSON document of the form
// {"qaResults": [...]}. Append is load-all, append, save-all.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

type fileDocument map[string][]entity.ResultRecord

func (s *FileStore) LoadAll(ctx context.Context) ([]entity.ResultRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) Append(ctx context.Context, rec entity.ResultRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	return s.save(append(records, rec))
}

func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(nil)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) load() ([]entity.ResultRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return doc[entity.ResultStorageKey], nil
}

func (s *FileStore) save(records []entity.ResultRecord) error {
	if records == nil {
		records = []entity.ResultRecord{}
	}
	data, err := json.Marshal(fileDocument{entity.ResultStorageKey: records})
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create results dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace results: %w", err)
	}
	return nil
}
