package shadowslot

import "github.com/arloliu/shadowslot/types"

// Re-export types from the types package.
//
// Internal packages depend on types without depending on the root package;
// the aliases give users shadowslot.Node, shadowslot.Logger and so on.
type (
	NodeID       = types.NodeID
	Node         = types.Node
	SlotElement  = types.SlotElement
	Tree         = types.Tree
	Notification = types.Notification
	Stats        = types.Stats
)

// Re-export interfaces from the types package for convenience.
type (
	NameResolver     = types.NameResolver
	NameResolverFunc = types.NameResolverFunc
	Dispatcher       = types.Dispatcher
	DispatcherFunc   = types.DispatcherFunc
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// DefaultSlotName is the name of the default slot.
const DefaultSlotName = types.DefaultSlotName
