package remap

// DefaultMaxDepth is the expression nesting budget applied when
// WithMaxDepth is not given. Ordinary programs nest a handful of levels;
// the budget exists to reject generated or hostile documents early.
const DefaultMaxDepth = 500

// Option configures compilation.
type Option func(*options)

type options struct {
	maxDepth int
}

func defaultOptions() options {
	return options{maxDepth: DefaultMaxDepth}
}

// WithMaxDepth overrides the expression nesting budget. Depths below one
// are ignored.
//
// Example:
//
//	program, diags := remap.Compile(src, remap.WithMaxDepth(50))
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}
