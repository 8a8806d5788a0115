package strategy

import (
	"maps"

	"github.com/arloliu/shadowslot/types"
)

// Mapped renames the names produced by another policy.
//
// Names missing from the table pass through unchanged.
type Mapped struct {
	inner types.NameResolver
	table map[string]string
}

var _ types.NameResolver = (*Mapped)(nil)

// NewMapped wraps inner with a rename table.
//
// Parameters:
//   - inner: Policy producing the declared names (nil = Attribute)
//   - table: Declared name → slot name
//
// Example:
//
//	// Markup written against the old "title" slot keeps rendering in "heading".
//	policy := strategy.NewMapped(nil, map[string]string{"title": "heading"})
func NewMapped(inner types.NameResolver, table map[string]string) *Mapped {
	if inner == nil {
		inner = NewAttribute()
	}

	return &Mapped{inner: inner, table: maps.Clone(table)}
}

// SlotNameFor returns the mapped name of the child's declared name.
func (m *Mapped) SlotNameFor(child types.Node) string {
	name := m.inner.SlotNameFor(child)
	if mapped, ok := m.table[name]; ok {
		return mapped
	}

	return name
}
