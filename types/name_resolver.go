package types

// NameResolver derives the slot name a host child asks to be distributed to.
//
// The owning tree supplies the resolver at construction. Different tree kinds
// may compute names differently: the default policy reads the child's slot
// attribute, while specialized elements route children by type.
//
// Implementations should:
//   - Be deterministic (same child state → same name)
//   - Run quickly (called once per host child on every assignment pass)
//   - Return DefaultSlotName for children that declare nothing
type NameResolver interface {
	// SlotNameFor returns the slot name for a host child.
	//
	// Parameters:
	//   - child: Direct child of the shadow host, in tree order
	//
	// Returns:
	//   - string: Slot name (DefaultSlotName for the default slot)
	SlotNameFor(child Node) string
}

// NameResolverFunc adapts a plain function to NameResolver.
type NameResolverFunc func(child Node) string

// SlotNameFor calls f(child).
func (f NameResolverFunc) SlotNameFor(child Node) string {
	return f(child)
}

// SlotAttributer is implemented by host children that can carry a declared
// slot name (elements). Text nodes do not implement it.
type SlotAttributer interface {
	// SlotAttribute returns the value of the child's slot attribute and
	// whether the attribute is present.
	SlotAttribute() (string, bool)
}
