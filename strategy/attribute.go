package strategy

import "github.com/arloliu/shadowslot/types"

// Attribute derives a child's slot name from its own slot attribute.
//
// Children that do not implement types.SlotAttributer (text nodes), and
// elements without the attribute, ask for the default slot. An attribute
// that is present but empty also means the default slot.
type Attribute struct{}

var _ types.NameResolver = (*Attribute)(nil)

// NewAttribute creates the default slot-name policy.
//
// Example:
//
//	sa, err := shadowslot.New(root, nil, shadowslot.WithNameResolver(strategy.NewAttribute()))
func NewAttribute() *Attribute {
	return &Attribute{}
}

// SlotNameFor returns the child's slot attribute, or the default slot name.
func (a *Attribute) SlotNameFor(child types.Node) string {
	attr, ok := child.(types.SlotAttributer)
	if !ok {
		return types.DefaultSlotName
	}
	name, ok := attr.SlotAttribute()
	if !ok {
		return types.DefaultSlotName
	}

	return name
}
