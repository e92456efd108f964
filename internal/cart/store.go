package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrCorrupt marks a stored cart that could not be decoded.
var ErrCorrupt = errors.New("stored cart is corrupt")

// Store persists one cart per terminal. Load returns an empty cart when
// nothing is stored.
type Store interface {
	Load(ctx context.Context, terminalID string) (Cart, error)
	Save(ctx context.Context, terminalID string, c Cart) error
	Erase(ctx context.Context, terminalID string) error
}

const payloadVersion = 1

type payload struct {
	Version int    `json:"version"`
	Lines   []Line `json:"lines"`
}

func encode(c Cart) ([]byte, error) {
	return json.Marshal(payload{Version: payloadVersion, Lines: c.Lines()})
}

func decode(raw []byte) (Cart, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Empty(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if p.Version != payloadVersion {
		return Empty(), fmt.Errorf("%w: unsupported version %d", ErrCorrupt, p.Version)
	}
	return FromLines(p.Lines), nil
}

// MemoryStore keeps encoded carts in a map. It goes through the same codec
// as the durable stores.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[string][]byte{}}
}

func (s *MemoryStore) Load(ctx context.Context, terminalID string) (Cart, error) {
	s.mu.Lock()
	raw, ok := s.carts[terminalID]
	s.mu.Unlock()
	if !ok {
		return Empty(), nil
	}
	return decode(raw)
}

func (s *MemoryStore) Save(ctx context.Context, terminalID string, c Cart) error {
	raw, err := encode(c)
	if err != nil {
		return err
	}
	s.Put(terminalID, raw)
	return nil
}

func (s *MemoryStore) Erase(ctx context.Context, terminalID string) error {
	s.mu.Lock()
	delete(s.carts, terminalID)
	s.mu.Unlock()
	return nil
}

// Put stores raw bytes as-is.
func (s *MemoryStore) Put(terminalID string, raw []byte) {
	s.mu.Lock()
	s.carts[terminalID] = raw
	s.mu.Unlock()
}

// Raw returns the stored bytes for terminalID.
func (s *MemoryStore) Raw(terminalID string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.carts[terminalID]
	return raw, ok
}
