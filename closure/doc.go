// Package closure is the Closure Engine: it pairs dynamically-typed
// closure descriptors with wasm table slots and installs, through a
// host-provided primitive, a fixed-signature trampoline that forwards
// table-indexed calls back into a user handler.
//
// This package implements the typed-buffer variant for WASI-like
// hosts, where one shared backing function serves every closure and
// argument/result shapes travel out-of-band as primitive-kind arrays.
// The per-closure-signature variant for JS-like hosts lives in
// closure/jshost.
package closure
