package session

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore 单进程内存存储，开发与测试用
type MemoryStore struct {
	mu  sync.Mutex
	m   map[string]memEntry
	ttl time.Duration
	now func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{m: make(map[string]memEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, sid string) (*State, error) {
	if sid == "" {
		return nil, ErrEmptySID
	}
	s.mu.Lock()
	e, ok := s.m[sid]
	if ok && s.ttl > 0 && s.now().After(e.expires) {
		delete(s.m, sid)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return &State{}, nil
	}
	return decode(e.data)
}

func (s *MemoryStore) Save(_ context.Context, sid string, st *State) error {
	if sid == "" {
		return ErrEmptySID
	}
	b, err := encode(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.m[sid] = memEntry{data: b, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	delete(s.m, sid)
	s.mu.Unlock()
	return nil
}
