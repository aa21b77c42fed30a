package chatsession

// Registry is an append-only table of discovered model descriptors.
// Identifiers are a contiguous run 1..N assigned strictly in append order;
// the counter is global to the registry, not per-server, so merging the
// listings of several servers never collides.
//
// Resolving on top of a live registry is additive: a second resolution of
// the same servers appends new entries with higher identifiers instead of
// replacing the existing ones. Call Reset first if growth is not wanted.
//
// Registry is not safe for concurrent use.
type Registry struct {
	models []ModelDescriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Append adds a descriptor, assigning it the next identifier (Len()+1), and
// returns the stored descriptor with its identifier set. Any ID already on
// the argument is overwritten.
func (r *Registry) Append(d ModelDescriptor) ModelDescriptor {
	d.ID = len(r.models) + 1
	r.models = append(r.models, d)
	return d
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	return len(r.models)
}

// Get returns the descriptor with the given identifier.
func (r *Registry) Get(id int) (ModelDescriptor, bool) {
	if id < 1 || id > len(r.models) {
		return ModelDescriptor{}, false
	}
	return r.models[id-1], true
}

// Lookup returns the first descriptor, in insertion order, matched by ref.
func (r *Registry) Lookup(ref ModelRef) (ModelDescriptor, bool) {
	for _, d := range r.models {
		if ref.Matches(d) {
			return d, true
		}
	}
	return ModelDescriptor{}, false
}

// List returns all descriptors in insertion order. The slice is a copy.
func (r *Registry) List() []ModelDescriptor {
	out := make([]ModelDescriptor, len(r.models))
	copy(out, r.models)
	return out
}

// Reset discards all entries. Identifiers restart at 1 on the next Append.
func (r *Registry) Reset() {
	r.models = nil
}
