// Package marshal implements the Argument Lowerer and Argument Raiser:
// the two functions that convert between a typed C value and its flat,
// unaligned wasm-ABI byte representation.
//
// Lower writes a caller-owned value into a wasm-ABI buffer slot; Raise
// is its inverse, producing a pointer a user closure handler can treat
// as a `t*`. Both assume canon.Canonicalise has already run over t;
// an unrecognised Kind reaching either function is fatal, mirroring
// package classify.
package marshal
