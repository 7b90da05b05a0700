// Package ffi is the machine-dependent wasm32 core of a libffi-style
// foreign-function interface: it bridges the generic libffi contract
// (a Call Interface describing an ABI, a return type, and a vector of
// argument types) to the wasm32 calling convention, where arguments
// lower to a fixed sequence of i32/i64/f32/f64 values and nontrivial
// aggregates pass as pointers to caller-stack copies.
//
// # Architecture
//
// The six components of the core (Canonicaliser, Classifier, Lowerer,
// Raiser, Forward Caller, Closure Engine) live in these packages:
//
//	ffi/             Root package: Config, Memory/Table host contracts
//	├── typedesc/    Type descriptor, CIF, and closure descriptor layout
//	├── canon/       Type Canonicaliser - reduces descriptors to canonical shapes
//	├── classify/    ABI Classifier - size/slot-count/slot-kind/indirect-return
//	├── marshal/     Argument Lowerer and Raiser
//	├── call/        Forward Caller - the ffi_call driver
//	├── closure/     Closure Engine - table-slot allocation and trampolines
//	│   ├── wasihost/  WASI-like host primitives, wired against wazero
//	│   └── jshost/    JS-like host primitives, modeled in Go
//	├── cif/         prep_cif_machdep / prep_cif_machdep_var entry points
//	└── ffierr/      Structured declarative errors and fatal-abort diagnostics
//
// closure/wasihost and closure/jshost implement the two host-primitive
// contracts the core consumes: a stable-trampoline variant for
// WASI-like hosts, whose dispatch table calls guest functions of
// github.com/tetratelabs/wazero, and a per-closure-signature variant
// for JS-like hosts that only offer "convert a host function to a wasm
// table entry", modeled in Go over a byte-slice linear memory.
//
// # Quick start
//
//	c := &typedesc.CIF{ABI: typedesc.WASM32}
//	code := cif.PrepMachdep(c, typedesc.Int32Type(), []*typedesc.Type{typedesc.Int32Type(), typedesc.Int32Type()})
//	if code != ffierr.OK {
//	    // handle BadABI / BadTypedef
//	}
//	var rv int32
//	a, b := int32(3), int32(4)
//	call.Call(caller, c, fn, unsafe.Pointer(&rv), []unsafe.Pointer{unsafe.Pointer(&a), unsafe.Pointer(&b)})
//
// # Thread safety
//
// A single CIF or closure is not safe for concurrent ffi_call calls or
// trampoline invocations that mutate the same caller-owned buffers; the
// free table-slot pool backing the Closure Engine is internally
// synchronized since it is shared process-wide.
package ffi
