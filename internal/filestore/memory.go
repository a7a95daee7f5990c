package filestore

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore keeps objects in process memory. Used in tests and as a dev
// fallback when no S3 endpoint is configured.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Save(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectName] = data
	return objectName, nil
}

func (s *MemoryStore) Remove(ctx context.Context, objectPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[objectPath]; !ok {
		return fmt.Errorf("object %s does not exist", objectPath)
	}
	delete(s.objects, objectPath)
	return nil
}

// Has reports whether an object is currently stored.
func (s *MemoryStore) Has(objectPath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[objectPath]
	return ok
}
