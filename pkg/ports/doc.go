/*
Package ports defines the driven ports (interfaces) of the UI engine.

These interfaces decouple the app service from external implementations, so
the same show/update flow runs over any storage backend and any model
provider.

# Key Interfaces

  - StateStore: persists the latest component tree per application.
  - DistributedLocker: serializes work on one application across replicas.
  - Orchestrator: produces new trees from nothing (Generate) or from a prior
    tree plus an instruction (Update).
*/
package ports
