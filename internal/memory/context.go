package memory

// Context is the per-block facade over a Store — "BlockContext" in the
// spec's glossary. It scopes Allocate to the owning block's key and
// defaults new cells to Private, and it is the only way a Behavior is
// allowed to touch memory (§4.5, §9).
type Context struct {
	store   *Store
	ownerID Key
}

// NewContext builds a Context scoped to ownerID over store.
func NewContext(store *Store, ownerID Key) *Context {
	return &Context{store: store, ownerID: ownerID}
}

// Owner returns the BlockKey this context allocates on behalf of.
func (c *Context) Owner() Key { return c.ownerID }

// Store exposes the underlying store for callers that need raw Search
// (e.g. metric inheritance across block boundaries).
func (c *Context) Store() *Store { return c.store }

// AllocatePrivate allocates a cell owned by this context, private by
// default per spec.
func AllocatePrivate[T any](c *Context, typeName string, initial T) Reference[T] {
	return Allocate(c.store, typeName, c.ownerID, initial, Private)
}

// AllocatePublic allocates a cell owned by this context, discoverable by
// any descendant's Search.
func AllocatePublic[T any](c *Context, typeName string, initial T) Reference[T] {
	return Allocate(c.store, typeName, c.ownerID, initial, Public)
}

// SearchPublicLatest returns the value of the most recently allocated
// (insertion order, "latest" = last per §4.1) public reference of typeName,
// regardless of owner — used for metric inheritance.
func SearchPublicLatest[T any](c *Context, typeName string) (T, bool) {
	var zero T
	vis := Public
	refs := c.store.Search(Criteria{Type: &typeName, Visibility: &vis})
	for i := len(refs) - 1; i >= 0; i-- {
		if v, ok := c.store.GetRaw(refs[i]); ok {
			if tv, ok := v.(T); ok {
				return tv, true
			}
		}
	}
	return zero, false
}

// Dispose releases every reference owned by this context. Idempotent.
func (c *Context) Dispose() {
	c.store.ReleaseOwnedBy(c.ownerID)
}
