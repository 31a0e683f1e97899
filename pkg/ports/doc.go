/*
Package ports defines the driven ports (interfaces) of the Postman detector.

These interfaces decouple the core from the host framework and from storage,
so the same activation logic works for any component tree and any report sink.

# Key Interfaces

  - StateReader: reads a node's state snapshot (the host capability that replaces
    privileged access to a protected state container).
  - Fingerprinter: turns a snapshot into a comparable digest.
  - ReportStore: persists per-request activation reports (memory, Redis).
*/
package ports
