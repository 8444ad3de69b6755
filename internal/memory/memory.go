// Package memory implements the scoped, typed key-value store every
// ScriptRuntime owns: allocation, visibility, search, and change
// notification over opaque reference handles.
package memory

import (
	"sync"

	"github.com/google/uuid"
)

// Key identifies a block on the execution stack. It is produced once at
// compile time and never reused; references use it as OwnerID.
type Key string

// RuntimeOwner is the OwnerID of process-global allocations that outlive
// any single block (§3 "or \"runtime\" for process-global").
const RuntimeOwner Key = "runtime"

// NewKey mints a fresh, globally unique BlockKey.
func NewKey() Key {
	return Key(uuid.NewString())
}

// Visibility controls who can discover a reference via Search.
type Visibility int

const (
	Private Visibility = iota
	Public
	Inherited
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Inherited:
		return "inherited"
	default:
		return "private"
	}
}

// Reference is a typed, opaque handle to a memory cell. It is never a
// pointer into the store — every read/write goes back through the Store
// by ID, so a released Reference simply stops resolving.
type Reference[T any] struct {
	ID         string
	Type       string
	OwnerID    Key
	Visibility Visibility
}

// Untyped erases the reference's static type, for APIs (Search) that must
// return a heterogeneous collection of references.
func (r Reference[T]) Untyped() RawReference {
	return RawReference{ID: r.ID, Type: r.Type, OwnerID: r.OwnerID, Visibility: r.Visibility}
}

// RawReference is the type-erased counterpart of Reference[T], returned by
// Search since Go cannot express a slice of mixed Reference[T] instances.
type RawReference struct {
	ID         string
	Type       string
	OwnerID    Key
	Visibility Visibility
}

type cell struct {
	ref   RawReference
	value any
	live  bool
}

// Subscriber is notified synchronously whenever Set changes a live cell.
type Subscriber func(ref RawReference, newValue, oldValue any)

// Store is a process-lifetime arena of typed cells. It is owned by exactly
// one ScriptRuntime and is never shared across goroutines (§5: single
// cooperative thread owns the runtime).
type Store struct {
	mu          sync.Mutex
	cells       map[string]*cell
	order       []string // insertion order, preserved so Search's "latest" = last
	subscribers []Subscriber
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{cells: make(map[string]*cell)}
}

// Allocate creates a new cell of type name, owned by ownerID, with the given
// initial value and visibility. The zero Visibility is Private, matching
// the spec's stated default.
func Allocate[T any](s *Store, typeName string, ownerID Key, initial T, visibility Visibility) Reference[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	ref := RawReference{ID: id, Type: typeName, OwnerID: ownerID, Visibility: visibility}
	s.cells[id] = &cell{ref: ref, value: initial, live: true}
	s.order = append(s.order, id)

	return Reference[T]{ID: id, Type: typeName, OwnerID: ownerID, Visibility: visibility}
}

// Get reads the current value through ref. A released or unknown reference
// returns the zero value and false — it never panics (§7
// MemoryInvalidReferenceError: "Returns none; no throw").
func Get[T any](s *Store, ref Reference[T]) (T, bool) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cells[ref.ID]
	if !ok || !c.live {
		return zero, false
	}
	v, ok := c.value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Set writes value through ref and fires subscribers with (ref, new, old).
// Writing through a released reference is a silent no-op.
func Set[T any](s *Store, ref Reference[T], value T) {
	s.mu.Lock()
	c, ok := s.cells[ref.ID]
	if !ok || !c.live {
		s.mu.Unlock()
		return
	}
	old := c.value
	c.value = value
	subs := make([]Subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, sub := range subs {
		notifySubscriber(sub, c.ref, value, old)
	}
}

// notifySubscriber isolates a panicking subscriber so one bad observer
// cannot break Set for every other caller (mirrors the teacher's
// containment-over-propagation posture for side-effect handlers).
func notifySubscriber(sub Subscriber, ref RawReference, newVal, oldVal any) {
	defer func() { _ = recover() }()
	sub(ref, newVal, oldVal)
}

// Release invalidates ref. Every subsequent Get/Set through it is a no-op.
func Release[T any](s *Store, ref Reference[T]) {
	ReleaseRaw(s, ref.Untyped())
}

// ReleaseRaw releases by type-erased reference, used when disposing a block
// whose owned references were only ever seen via Search.
func ReleaseRaw(s *Store, ref RawReference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cells[ref.ID]; ok {
		c.live = false
		delete(s.cells, ref.ID)
	}
}

// SetRaw writes value through a type-erased reference and fires
// subscribers, used by the Action Pipeline's Memory phase where the
// concrete T is only known to the action's producer.
func (s *Store) SetRaw(ref RawReference, value any) {
	s.mu.Lock()
	c, ok := s.cells[ref.ID]
	if !ok || !c.live {
		s.mu.Unlock()
		return
	}
	old := c.value
	c.value = value
	subs := make([]Subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, sub := range subs {
		notifySubscriber(sub, c.ref, value, old)
	}
}

// Criteria is a Search filter; nil/zero fields match any value.
type Criteria struct {
	Type       *string
	OwnerID    *Key
	ID         *string
	Visibility *Visibility
}

// Search performs a linear scan in insertion order, returning every live
// reference matching every non-nil criterion. It is intentionally not
// scoped by ownership — callers filter via Criteria.OwnerID/Visibility.
func (s *Store) Search(c Criteria) []RawReference {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []RawReference
	for _, id := range s.order {
		cl, ok := s.cells[id]
		if !ok || !cl.live {
			continue
		}
		r := cl.ref
		if c.Type != nil && r.Type != *c.Type {
			continue
		}
		if c.OwnerID != nil && r.OwnerID != *c.OwnerID {
			continue
		}
		if c.ID != nil && r.ID != *c.ID {
			continue
		}
		if c.Visibility != nil && r.Visibility != *c.Visibility {
			continue
		}
		out = append(out, r)
	}
	return out
}

// GetRaw reads the stored value behind a type-erased reference, used by
// Search callers that then type-assert themselves (e.g. metric inheritance
// reading public "metric:reps" cells of unknown concrete type).
func (s *Store) GetRaw(ref RawReference) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cells[ref.ID]
	if !ok || !c.live {
		return nil, false
	}
	return c.value, true
}

// Subscribe registers a global change listener and returns an unsubscribe
// func.
func (s *Store) Subscribe(cb Subscriber) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := len(s.subscribers)
	s.subscribers = append(s.subscribers, cb)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.subscribers) {
			s.subscribers[idx] = nil
		}
	}
}

// ReleaseOwnedBy releases every live reference owned by ownerID. Called by
// a block's dispose to satisfy the invariant "when a block disposes, all
// references it owns are released."
func (s *Store) ReleaseOwnedBy(ownerID Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if c, ok := s.cells[id]; ok && c.live && c.ref.OwnerID == ownerID {
			c.live = false
			delete(s.cells, id)
		}
	}
}
