// Package remap compiles and evaluates typed transformation programs
// for structured event records.
//
// A program is a YAML (or JSON) document with a variables section
// declaring the fields it reads and an expr section holding an
// expression tree of literals, variable references, operators and
// conditionals. Compile checks the document against the declarations,
// reports rich diagnostics for anything undefined or mistyped, and
// returns an immutable Program that many goroutines can evaluate at
// once.
//
// Programs run in two modes. Resolve evaluates one event. ResolveBatch
// evaluates many events in a single tree walk: conditionals partition
// the batch by selection instead of branching per event, and an event
// that faults is recorded and skipped without disturbing the rest of
// the batch.
//
// A minimal program:
//
//	variables:
//	  count: integer
//	expr:
//	  if:
//	    predicate: {op: [">", {var: count}, {lit: 100}]}
//	    then: [{lit: "high"}]
//	    else: [{lit: "low"}]
//
// Compiled and evaluated:
//
//	program, diags := remap.Compile(src)
//	if diags.HasErrors() {
//	    diag.Render(os.Stderr, "program.yaml", string(src), diags)
//	    return
//	}
//	out, err := program.Resolve(map[string]value.Value{
//	    "count": value.Integer(150),
//	})
package remap
