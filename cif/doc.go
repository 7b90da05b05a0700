// Package cif finalizes the machine-dependent half of Call Interface
// preparation: canonicalising the CIF's type descriptors and checking
// the arity and ABI invariants a call site must satisfy before it may
// be driven through call.Call or bound to a closure.
package cif
