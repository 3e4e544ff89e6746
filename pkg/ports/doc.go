/*
Package ports defines the driven ports (interfaces) for Forno.

These interfaces decouple the core from external implementations, allowing
the ordering flow to work with different storage backends.

# Key Interfaces

  - HistoryStore: Responsible for persisting the order history consulted by the scheduling stage.
*/
package ports
