// Package eval implements the prefix arithmetic used by "@eval(...)"
// placeholders.
//
// # Syntax
//
// An expression is an opcode followed by white space separated arguments,
// all enclosed in parentheses. Arguments are literal tokens or nested
// expressions:
//
//	(add 1 2)
//	(sub 48px (mul 2 4px))
//
// Opcodes are looked up in a [Registry]. An opcode longer than
// [MaxOpcodeLen] is rejected with [ErrOpcodeTooLong] before the registry is
// consulted, so a misspelled long word never reports as merely unknown.
//
// # Argument types
//
// Each operator classifies its arguments by their characters (see
// [Classify]): a [Number] is a plain decimal, a [Measure] is a decimal with a
// unit suffix such as "px" or "em", anything else is a [String].
//
// # Built-in operators
//
//   - add: numbers sum to a decimal that always carries a fraction ("3.0");
//     measures sum with their shared unit ("3.0em"); strings concatenate.
//   - sub, mul, div: arguments must be decimals with an optional unit; the
//     result has at most three fraction digits and no zero fraction ("40px").
//
// Further operators are registry entries. [Registry.RegisterExpr] builds one
// from an expr-lang fold step over the variables acc and x.
package eval
