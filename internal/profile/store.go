package profile

import (
	"sync"
)

// Store is the single owner of a session's profile data. It is passed
// explicitly to every consumer; all writes go through Merge or SetField.
type Store struct {
	mu      sync.RWMutex
	data    Data
	version uint64

	subMu  sync.Mutex
	subs   map[int]func(Data)
	nextID int
}

// NewStore creates a store seeded with initial.
func NewStore(initial Data) *Store {
	return &Store{
		data: initial.Clone(),
		subs: make(map[int]func(Data)),
	}
}

// Get returns a deep copy of the current data.
func (s *Store) Get() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Version increments on every write.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Merge applies every field present in p. Empty partials are ignored.
func (s *Store) Merge(p Partial) {
	if p.IsEmpty() {
		return
	}
	s.write(func(d *Data) { p.Apply(d) })
}

// SetField applies a single typed field write.
func (s *Store) SetField(u Update) {
	s.write(func(d *Data) { u.Partial().Apply(d) })
}

// Replace swaps the whole record, used when a profile is imported.
func (s *Store) Replace(d Data) {
	s.write(func(cur *Data) { *cur = d.Clone() })
}

// Subscribe registers fn to receive a copy of the data after each write.
// Subscribers run synchronously on the writer's goroutine and must not block.
func (s *Store) Subscribe(fn func(Data)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) write(mutate func(*Data)) {
	s.mu.Lock()
	mutate(&s.data)
	s.version++
	snapshot := s.data.Clone()
	s.mu.Unlock()

	s.subMu.Lock()
	fns := make([]func(Data), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snapshot.Clone())
	}
}
