// Package call implements the Forward Caller: the ffi_call driver
// that takes a prepared CIF, a callee table index, a return-value
// pointer, and a vector of argument pointers, and drives one call
// through a host dynamic-call primitive.
//
// Call never runs the Type Canonicaliser itself; it assumes cif.PrepMachdep
// (or cif.PrepMachdepVar) has already run. Every failure mode listed in
// its algorithm is fatal: a host primitive error, a variadic call under
// the WASM32 ABI, or an unrecognised ABI tag all abort the process via
// panic(*ffierr.Fatal), never a returned error.
package call
