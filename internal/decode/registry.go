package decode

// Registry remembers every class descriptor chain parsed in one stream so
// that a TC_REFERENCE in classDesc position can be turned back into a chain.
type Registry struct {
	chains   []Chain
	byHandle map[Handle]Chain
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byHandle: make(map[Handle]Chain)}
}

// Register records a complete chain (descriptor plus ancestors).
func (r *Registry) Register(c Chain) {
	if len(c) == 0 {
		return
	}
	r.chains = append(r.chains, c)
	for i, cd := range c {
		// First registration wins, matching a scan in registration order.
		if _, ok := r.byHandle[cd.Handle]; !ok {
			r.byHandle[cd.Handle] = c[i:]
		}
	}
}

// Resolve returns the sub-chain that starts at the descriptor with handle h:
// the descriptor itself followed by every ancestor recorded with it. This
// lets an object whose descriptor arrives by reference still read its
// classdata from the most-super class down.
func (r *Registry) Resolve(h Handle) (Chain, bool) {
	c, ok := r.byHandle[h]
	return c, ok
}

// Chains returns all registered chains in registration order.
func (r *Registry) Chains() []Chain { return r.chains }

// Len returns the number of registered chains.
func (r *Registry) Len() int { return len(r.chains) }
