/*
Package ports defines the driven ports (interfaces) of the sheetpilot agent.

These interfaces decouple the interpreter and the planner loop from concrete
spreadsheets, planning services and storage backends.

# Key Interfaces

  - Grid / Cell: a live 2-D sheet (in-memory, xlsx workbook, ...).
  - Planner: the remote planning service that turns a message into an action batch.
  - SessionStore: persists per-session state such as the clipboard.
  - DistributedLocker: serializes access to sessions and the grid across replicas.
  - ScenarioLoader: provides canned batches for simulation mode.
*/
package ports
