package diag

// Diagnostic codes. Codes are stable identifiers: they appear in rendered
// reports as E-prefixed numbers ("E701") and must not be renumbered.
//
// The 1xx range covers type errors, 2xx covers document structure, and 7xx
// covers name resolution.
const (
	// CodeNonBooleanPredicate reports an if predicate whose static type is
	// not boolean.
	CodeNonBooleanPredicate = 102

	// CodeInvalidDocument reports a program document that cannot be decoded
	// or has an invalid top-level shape.
	CodeInvalidDocument = 201

	// CodeUnknownNodeKind reports an expression node with an unrecognized
	// kind key.
	CodeUnknownNodeKind = 202

	// CodeUnknownOperator reports an op node with an unrecognized operator.
	CodeUnknownOperator = 203

	// CodeUnknownType reports a variable declaration with an unrecognized
	// type name.
	CodeUnknownType = 204

	// CodeDuplicateVariable reports a variable declared more than once.
	CodeDuplicateVariable = 205

	// CodeMismatchedConstant reports a declared constant whose kind is not
	// admitted by the declared type.
	CodeMismatchedConstant = 206

	// CodeDepthLimit reports an expression tree nested deeper than the
	// configured limit.
	CodeDepthLimit = 207

	// CodeUndefinedVariable reports a reference to a variable missing from
	// the environment.
	CodeUndefinedVariable = 701
)
