// Package types provides core type definitions and interfaces for the shadowslot library.
//
// This package contains the collaborator contracts that the owning tree must
// satisfy, plus the shared ambient interfaces. Keeping them in a separate
// package avoids import cycles between the root shadowslot package and its
// internal implementation.
//
// Key types:
//   - Node, SlotElement: Stable node identity and slot placeholders
//   - Tree: Tree-order access to host children and shadow-tree slot elements
//   - NameResolver: Pluggable slot-name derivation for host children
//   - Notification: One coalesced slotchange signal
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
