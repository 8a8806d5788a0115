// Package strategy provides built-in slot-name policies.
//
// A policy derives, for every host child, the name of the slot it asks for.
// The package includes four built-in policies:
//
//   - Attribute: The child's own slot attribute; text and unnamed children go to the default slot (the default policy)
//   - FirstMatch: The first child matching a predicate goes to a fixed slot, everything else to the default slot (details/summary style)
//   - Mapped: Renames the names produced by another policy through a lookup table
//   - Spread: Children without a slot attribute are spread over a set of slots by consistent hashing
//
// # Policy Selection Guide
//
// Attribute:
//   - Use for ordinary author-defined components
//   - Requires host children to implement types.SlotAttributer
//
// FirstMatch:
//   - Use for built-in elements whose distribution ignores slot attributes
//   - Only one child, the first match in tree order, leaves the default slot
//
// Mapped:
//   - Use when a component renames its slots but must keep old markup working
//
// Spread:
//   - Use for column or masonry layouts where placement only needs to be stable
//   - Adding a column moves only the children that hashed next to it
//
// Custom policies can be implemented by satisfying types.NameResolver, or by
// wrapping a function in types.NameResolverFunc.
package strategy
