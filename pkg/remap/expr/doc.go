// Package expr defines the expression nodes a compiled program is built
// from and the two ways to evaluate them.
//
// Scalar evaluation walks one event through the tree: Resolve returns the
// node's value or a fault. Batch evaluation walks many events at once:
// ResolveBatch receives a selection, the indices of the rows still live
// for this node, and writes each row's outcome into the BatchContext.
// Conditionals narrow the selection instead of branching per row, so a
// batch pays for tree traversal once rather than once per event.
//
// A fault is an ordinary error recorded against a single row. It removes
// the row from every later selection but never stops the batch; healthy
// rows are unaffected. Faults are distinct from the construction-time
// diagnostics in package diag, which reject a program before it can run.
//
// Nodes are immutable after construction. All per-batch working memory
// lives in the BatchContext, so one compiled tree can evaluate many
// batches concurrently as long as each goroutine brings its own context.
package expr
