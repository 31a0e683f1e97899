/*
Package domain contains the core domain models for the Postman change detector.

It defines the capabilities a host framework must expose for its component tree
(Node, StateHolder, Boundary), the per-request Report produced by an activation,
the lifecycle hook signatures and the error taxonomy. The package is kept pure
and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Node: one element of the host's component tree (kind + ordered children).
  - Snapshot: the key-value state a node exposes through StateHolder.
  - Boundary: a node that is a unit of independent re-render and can be marked dirty.
  - Report: what one request's activation observed, changed and marked.
*/
package domain
