/*
Package domain contains the core models of the sheetpilot agent.

It defines the action language the planning service speaks, the rectangular
ranges those actions address and the per-session state that survives between
batches. This package is kept pure and free of external dependencies like I/O
or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Action: one instruction of a Batch (Select, Set, Format, ToolAction, SelectAndDrag, Read, TellUser, Terminate).
  - Span: the column/row coordinates an action carries, before resolution against a grid.
  - Range: a resolved, 1-based rectangular region.
  - Clipboard: values captured by the copy tool, kept per session.
  - Outcome: what one batch produced (user message, read results, termination).
*/
package domain
