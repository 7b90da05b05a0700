// Package canon implements the Type Canonicaliser: an in-place
// rewriter that reduces every type descriptor reachable from a CIF to
// a small set of canonical shapes before the rest of the core looks at
// it. After Canonicalise has run over a CIF's return and argument
// types, no reachable type has KindComplex, no KindStruct has fewer
// than two non-void elements unless its size is 0 (rewritten to
// KindVoid), and no return type has KindLongDouble.
package canon
