// Package history maintains the ordered conversation log shared between the
// adapter and any UI observers.
//
// Design decisions:
//   - Single mutator: the adapter is the only writer; observers only read.
//     Concurrent calls on the same log are not coordinated beyond a mutex
//     guarding structural integrity.
//   - Streaming turns: an assistant turn is created as an unfinalized
//     placeholder and mutated in place while its stream is open. At most one
//     unfinalized turn exists at any time.
//   - Synchronous observation: every mutation notifies subscribed listeners
//     before the mutating call returns, so the emitted text and the history
//     text never visibly diverge.
//   - Export-time invariants: role alternation and duplicate suppression are
//     enforced by the wire exporter, not by storage. The UI-visible log may
//     contain turns the exporter elides.
package history
