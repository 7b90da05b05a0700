// Package classify implements the ABI Classifier: pure functions
// mapping a canonicalised Type to its wasm-ABI size in bytes, the
// number of wasm primitive slots it occupies, the primitive-kind
// sequence those slots hold, and whether a return of that type is
// indirect (returned through a hidden first pointer argument).
//
// Every function here assumes canon.Canonicalise has already run; an
// unrecognised Kind reaching any function here is a canonicalisation
// bug and is fatal, never a declarative error.
package classify
