package typets

import (
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/broady/typets/ir"
)

// Built-in bucket names. Plugin output is stored under the plugin's bucket.
const (
	BucketAlias     = "alias"
	BucketTypeVar   = "typevar"
	BucketComposite = "composite"
)

// Key identifies a stored definition. Kinds are part of the key so an alias
// and a record that share a name are distinct entities.
type Key struct {
	Kind ir.DescriptorKind
	ID   ir.Identifier
}

// KeyOf returns the store key for a named descriptor.
func KeyOf(td ir.TypeDescriptor) Key {
	return Key{Kind: td.Kind(), ID: td.TypeName()}
}

// Entry is one stored definition.
type Entry struct {
	Key Key

	// Text is the emitted definition.
	Text string

	// Reference is how other types refer to the definition, e.g. "User" or
	// "typeof greet".
	Reference string
}

// Store holds emitted definitions, one insertion-ordered bucket per
// definition family. Each key is stored at most once across all buckets.
// A Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	buckets *orderedmap.OrderedMap[string, *orderedmap.OrderedMap[Key, Entry]]
	index   map[Key]string
}

// NewStore returns an empty store.
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.buckets = orderedmap.New[string, *orderedmap.OrderedMap[Key, Entry]]()
	for _, name := range []string{BucketAlias, BucketTypeVar, BucketComposite} {
		s.buckets.Set(name, orderedmap.New[Key, Entry]())
	}
	s.index = make(map[Key]string)
}

// Put stores e in the named bucket unless its key is already stored in any
// bucket. An empty Reference defaults to the key's name. It reports whether
// the entry was inserted.
func (s *Store) Put(bucket string, e Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[e.Key]; exists {
		return false
	}
	if e.Reference == "" {
		e.Reference = e.Key.ID.Name
	}
	b, ok := s.buckets.Get(bucket)
	if !ok {
		b = orderedmap.New[Key, Entry]()
		s.buckets.Set(bucket, b)
	}
	b.Set(e.Key, e)
	s.index[e.Key] = bucket
	return true
}

// Has reports whether key is stored.
func (s *Store) Has(key Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[key]
	return ok
}

// Get returns the stored entry for key.
func (s *Store) Get(key Key) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket, ok := s.index[key]
	if !ok {
		return Entry{}, false
	}
	b, _ := s.buckets.Get(bucket)
	return b.Get(key)
}

// Buckets returns the bucket names in emission order: alias, typevar,
// composite, then plugin buckets in first-insert order.
func (s *Store) Buckets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, s.buckets.Len())
	for pair := s.buckets.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Bucket returns the entries of one bucket in insertion order.
func (s *Store) Bucket(name string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buckets.Get(name)
	if !ok {
		return nil
	}
	return entries(b)
}

// Definitions returns every stored definition text in emission order.
func (s *Store) Definitions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var defs []string
	for pair := s.buckets.Oldest(); pair != nil; pair = pair.Next() {
		for _, e := range entries(pair.Value) {
			defs = append(defs, e.Text)
		}
	}
	return defs
}

// Len returns the number of stored definitions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}

// Reset clears every bucket.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func entries(b *orderedmap.OrderedMap[Key, Entry]) []Entry {
	out := make([]Entry, 0, b.Len())
	for pair := b.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}
