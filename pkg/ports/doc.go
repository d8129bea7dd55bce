/*
Package ports defines the driven ports (interfaces) of the simulator.

These interfaces decouple the simulation core from storage backends.

# Key Interfaces

  - SpectrumStore: persists finished spectra by key (memory, Redis).
  - DistributedLocker: coordinates writers of the same key across instances.

RunSpectrumStoreContract is a reusable test suite for SpectrumStore adapters.
*/
package ports
